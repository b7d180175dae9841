package repository

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	// デッドロック・直列化失敗。リトライで通る可能性がある
	ErrConflict = errors.New("conflict")
)
