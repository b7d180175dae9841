package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/validator"
)

type ContactUsecase struct {
	notifier ContactNotifier
	clock    Clock
	info     ContactInfo
}

func NewContactUsecase(notifier ContactNotifier, clock Clock, info ContactInfo) *ContactUsecase {
	return &ContactUsecase{notifier: notifier, clock: clock, info: info}
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type ContactOutput struct {
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Subject string    `json:"subject"`
	SentAt  time.Time `json:"sentAt"`
}

type ContactInfo struct {
	Company       string            `json:"company"`
	Address       string            `json:"address"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	SupportEmail  string            `json:"supportEmail"`
	SalesEmail    string            `json:"salesEmail"`
	BusinessHours map[string]string `json:"businessHours"`
	SocialMedia   map[string]string `json:"socialMedia"`
}

// 店舗の問い合わせ先（固定）
func DefaultContactInfo() ContactInfo {
	return ContactInfo{
		Company:      "Techno Computers",
		Address:      "123 Technology Street, Digital City, DC 12345",
		Phone:        "+1 (555) 123-4567",
		Email:        "info@technocomputers.com",
		SupportEmail: "support@technocomputers.com",
		SalesEmail:   "sales@technocomputers.com",
		BusinessHours: map[string]string{
			"monday":    "9:00 AM - 6:00 PM",
			"tuesday":   "9:00 AM - 6:00 PM",
			"wednesday": "9:00 AM - 6:00 PM",
			"thursday":  "9:00 AM - 6:00 PM",
			"friday":    "9:00 AM - 6:00 PM",
			"saturday":  "10:00 AM - 4:00 PM",
			"sunday":    "Closed",
		},
		SocialMedia: map[string]string{
			"facebook":  "https://facebook.com/technocomputers",
			"twitter":   "https://twitter.com/technocomputers",
			"instagram": "https://instagram.com/technocomputers",
			"linkedin":  "https://linkedin.com/company/technocomputers",
		},
	}
}

// 管理者宛てと本人宛てにメールを送る
func (u *ContactUsecase) Send(ctx context.Context, in ContactInput) (ContactOutput, error) {
	var v validator.Errors
	v.Required("name", in.Name)
	v.Email("email", in.Email)
	v.Required("subject", in.Subject)
	v.MaxLen("subject", in.Subject, 200)
	v.Required("message", in.Message)
	v.MaxLen("message", in.Message, 5000)
	if !v.OK() {
		return ContactOutput{}, validationError(&v)
	}

	msg := ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if err := u.notifier.ContactReceived(ctx, msg); err != nil {
		return ContactOutput{}, &HTTPError{
			Status:  http.StatusInternalServerError,
			Kind:    KindInternal,
			Message: "failed to send message",
			Err:     err,
		}
	}

	return ContactOutput{
		Name:    msg.Name,
		Email:   msg.Email,
		Subject: msg.Subject,
		SentAt:  u.clock.Now(),
	}, nil
}

func (u *ContactUsecase) Info() ContactInfo {
	return u.info
}
