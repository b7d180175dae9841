package usecase

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

// handlerで文字列をパースしてから渡す
type ListAuditLogsInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}

	if in.Action != "" {
		a := model.AuditAction(in.Action)
		switch a {
		case model.AuditActionUpdateStock, model.AuditActionUpdateOrderStatus, model.AuditActionUpdateUserStatus:
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		switch rt {
		case model.AuditResourceProduct, model.AuditResourceOrder, model.AuditResourceUser:
		default:
			return nil, NewHTTPError(http.StatusBadRequest, "invalid resourceType")
		}
		f.ResourceType = &rt
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, errDB(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
