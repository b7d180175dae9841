package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// 数字・空白・+-() のみ、数字は7桁以上
	phoneRe = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// 入力チェックの結果を溜める
type Errors struct {
	list []FieldError
}

func (v *Errors) Add(field, message string) {
	v.list = append(v.list, FieldError{Field: field, Message: message})
}

func (v *Errors) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// 空白のみも未入力扱い
func (v *Errors) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
		return false
	}
	return true
}

func (v *Errors) MaxLen(field, value string, max int) {
	if len([]rune(value)) > max {
		v.Addf(field, "must be at most %d characters", max)
	}
}

func (v *Errors) Email(field, value string) {
	if v.Required(field, value) && !IsEmailLike(value) {
		v.Add(field, "must be a valid email address")
	}
}

func (v *Errors) Phone(field, value string) {
	if v.Required(field, value) && !IsPhoneLike(value) {
		v.Add(field, "must be a valid phone number")
	}
}

func (v *Errors) OK() bool {
	return len(v.list) == 0
}

func (v *Errors) Fields() []FieldError {
	return v.list
}

// "field message; field message" の形
func (v *Errors) Message() string {
	parts := make([]string, 0, len(v.list))
	for _, fe := range v.list {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

func IsEmailLike(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

func IsPhoneLike(s string) bool {
	s = strings.TrimSpace(s)
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}
