package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"
)

const minPasswordLen = 6

type UserUsecase struct {
	tx     repo.TransactionManager
	users  repo.UserRepository
	hasher PasswordHasher
	clock  Clock
}

func NewUserUsecase(tx repo.TransactionManager, users repo.UserRepository, hasher PasswordHasher, clock Clock) *UserUsecase {
	return &UserUsecase{tx: tx, users: users, hasher: hasher, clock: clock}
}

type RegisterUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Address   string
}

type UpdateProfileInput struct {
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	ProfileImage string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type ListUsersInput struct {
	Page   int
	Limit  int
	Search string
	Role   string
	Status string
	Sort   string
	Order  string
}

type UserListOutput struct {
	Users      []model.User `json:"users"`
	Pagination Pagination   `json:"pagination"`
}

// 会員登録
func (u *UserUsecase) Register(ctx context.Context, in RegisterUserInput) (model.User, error) {
	var v validator.Errors
	v.Required("firstName", in.FirstName)
	v.MaxLen("firstName", strings.TrimSpace(in.FirstName), 50)
	v.Required("lastName", in.LastName)
	v.MaxLen("lastName", strings.TrimSpace(in.LastName), 50)
	v.Email("email", in.Email)
	if len(in.Password) < minPasswordLen {
		v.Addf("password", "must be at least %d characters", minPasswordLen)
	}
	if strings.TrimSpace(in.Phone) != "" && !validator.IsPhoneLike(in.Phone) {
		v.Add("phone", "must be a valid phone number")
	}
	v.MaxLen("address", in.Address, 200)
	if !v.OK() {
		return model.User{}, validationError(&v)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	// email重複チェック
	_, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		return model.User{}, NewHTTPError(http.StatusConflict, "user already exists with this email")
	}
	if !isNotFound(err) {
		return model.User{}, errDB(err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, &HTTPError{Status: http.StatusInternalServerError, Kind: KindInternal, Message: "internal error", Err: err}
	}

	user := &model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hashed,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Role:         model.RoleCustomer,
		Status:       model.UserStatusActive,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// 同時登録はunique制約で弾かれる
		if errors.Is(err, repo.ErrDuplicate) {
			return model.User{}, NewHTTPError(http.StatusConflict, "user already exists with this email")
		}
		return model.User{}, errDB(err)
	}
	return *user, nil
}

func (u *UserUsecase) GetProfile(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, wrapRepoErr(err, "user not found")
	}
	return *user, nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (model.User, error) {
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var v validator.Errors
	v.Required("firstName", in.FirstName)
	v.MaxLen("firstName", strings.TrimSpace(in.FirstName), 50)
	v.Required("lastName", in.LastName)
	v.MaxLen("lastName", strings.TrimSpace(in.LastName), 50)
	if strings.TrimSpace(in.Phone) != "" && !validator.IsPhoneLike(in.Phone) {
		v.Add("phone", "must be a valid phone number")
	}
	v.MaxLen("address", in.Address, 200)
	if !v.OK() {
		return model.User{}, validationError(&v)
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, wrapRepoErr(err, "user not found")
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Address = strings.TrimSpace(in.Address)
	user.ProfileImage = strings.TrimSpace(in.ProfileImage)

	if err := u.users.Update(ctx, user); err != nil {
		return model.User{}, errDB(err)
	}
	return *user, nil
}

func (u *UserUsecase) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.CurrentPassword == "" {
		return NewHTTPError(http.StatusBadRequest, "currentPassword is required")
	}
	if len(in.NewPassword) < minPasswordLen {
		return NewHTTPError(http.StatusBadRequest, "newPassword must be at least 6 characters")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return wrapRepoErr(err, "user not found")
	}
	if !u.hasher.Verify(in.CurrentPassword, user.PasswordHash) {
		return NewHTTPError(http.StatusBadRequest, "current password is incorrect")
	}

	hashed, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return &HTTPError{Status: http.StatusInternalServerError, Kind: KindInternal, Message: "internal error", Err: err}
	}
	user.PasswordHash = hashed
	if err := u.users.Update(ctx, user); err != nil {
		return errDB(err)
	}
	return nil
}

func (u *UserUsecase) AdminList(ctx context.Context, in ListUsersInput) (UserListOutput, error) {
	if in.Page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch in.Role {
	case "", string(model.RoleCustomer), string(model.RoleAdmin):
	default:
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}
	switch in.Status {
	case "", string(model.UserStatusActive), string(model.UserStatusInactive):
	default:
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	switch in.Sort {
	case "", "createdAt", "email", "firstName", "lastName":
	default:
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	users, total, err := u.users.List(ctx, repo.UserListQuery{
		Page:   in.Page,
		Limit:  in.Limit,
		Search: strings.TrimSpace(in.Search),
		Role:   in.Role,
		Status: in.Status,
		Sort:   in.Sort,
		Desc:   !strings.EqualFold(in.Order, "asc"),
	})
	if err != nil {
		return UserListOutput{}, errDB(err)
	}
	return UserListOutput{
		Users:      users,
		Pagination: newPagination(in.Page, in.Limit, total),
	}, nil
}

type userStatusSnapshot struct {
	Status model.UserStatus `json:"status"`
}

// 有効/無効の切り替え。自分自身は無効にできない
func (u *UserUsecase) AdminSetStatus(ctx context.Context, adminUserID int64, userID int64, status string) (model.User, error) {
	if adminUserID <= 0 {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if userID <= 0 {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.UserStatus(strings.TrimSpace(status))
	if newStatus != model.UserStatusActive && newStatus != model.UserStatusInactive {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "status must be active or inactive")
	}
	if adminUserID == userID && newStatus == model.UserStatusInactive {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	var out model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err != nil {
			return wrapRepoErr(err, "user not found")
		}
		if user.Status == newStatus {
			out = *user
			return nil
		}

		beforeJSON, _ := json.Marshal(userStatusSnapshot{Status: user.Status})
		user.Status = newStatus
		if err := r.Users().Update(ctx, user); err != nil {
			return errDB(err)
		}
		afterJSON, _ := json.Marshal(userStatusSnapshot{Status: newStatus})

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateUserStatus,
			ResourceType: model.AuditResourceUser,
			ResourceID:   userID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    string(afterJSON),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return errDB(err)
		}

		out = *user
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return out, nil
}
