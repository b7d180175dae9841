package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/pkg/tracing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/trace"
)

const testSecret = "test-secret"

type mwErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// UserRepository モック（middleware専用）
type MockUserRepoForMiddleware struct {
	mock.Mock
}

func (m *MockUserRepoForMiddleware) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepoForMiddleware) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) FindByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	args := m.Called(ctx, ids)
	u, _ := args.Get(0).([]model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepoForMiddleware) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepoForMiddleware) List(ctx context.Context, q repository.UserListQuery) ([]model.User, int64, error) {
	args := m.Called(ctx, q)
	u, _ := args.Get(0).([]model.User)
	return u, args.Get(1).(int64), args.Error(2)
}

var _ repository.UserRepository = (*MockUserRepoForMiddleware)(nil)

func mustMakeJWT(t *testing.T, secret string, sub interface{}, role string, exp time.Time, signingMethod jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  exp.Unix(),
	}
	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func validJWT(t *testing.T, sub interface{}, role string) string {
	return mustMakeJWT(t, testSecret, sub, role, time.Now().Add(time.Hour), jwt.SigningMethodHS256)
}

func runRequest(t *testing.T, e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func echoContext(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role})
}

func TestMiddleware_AuthJWT_Unauthorized(t *testing.T) {
	cases := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"no header", func(t *testing.T) string { return "" }},
		{"bad scheme", func(t *testing.T) string { return "Token abc.def.ghi" }},
		{"empty token", func(t *testing.T) string { return "Bearer " }},
		{"bad signature", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, "wrong-secret", 1, "customer", time.Now().Add(time.Hour), jwt.SigningMethodHS256)
		}},
		{"wrong alg", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, 1, "customer", time.Now().Add(time.Hour), jwt.SigningMethodHS512)
		}},
		{"expired", func(t *testing.T) string {
			return "Bearer " + mustMakeJWT(t, testSecret, 1, "customer", time.Now().Add(-time.Minute), jwt.SigningMethodHS256)
		}},
		{"missing role", func(t *testing.T) string { return "Bearer " + validJWT(t, 1, "") }},
		{"bad sub", func(t *testing.T) string { return "Bearer " + validJWT(t, "abc", "customer") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", echoContext, middleware.AuthJWT(testSecret))

			rec := runRequest(t, e, tc.header(t))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "UNAUTHORIZED", decodeMWError(t, rec).Error)
		})
	}
}

// 正常：ctxに値が入る（subは文字列でもよい）
func TestMiddleware_AuthJWT_Success_SetsContext(t *testing.T) {
	for _, sub := range []interface{}{123, "123"} {
		e := echo.New()
		e.GET("/protected", echoContext, middleware.AuthJWT(testSecret))

		rec := runRequest(t, e, "Bearer "+validJWT(t, sub, "customer"))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body mwOKResponse
		_ = json.NewDecoder(rec.Body).Decode(&body)
		assert.Equal(t, int64(123), body.UserID)
		assert.Equal(t, "customer", body.Role)
	}
}

func TestMiddleware_AdminRoleGuard(t *testing.T) {
	e := echo.New()
	e.GET("/protected", echoContext, middleware.AuthJWT(testSecret), middleware.AdminRoleGuard())

	rec := runRequest(t, e, "Bearer "+validJWT(t, 1, "customer"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeMWError(t, rec).Error)

	rec = runRequest(t, e, "Bearer "+validJWT(t, 1, "admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// AuthJWT無しでGuardだけ => 401
func TestMiddleware_ActiveUserGuard_MissingContext(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)
	e.GET("/protected", echoContext, middleware.ActiveUserGuard(userRepo))

	rec := runRequest(t, e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestMiddleware_ActiveUserGuard_Inactive(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:     1,
		Role:   model.RoleCustomer,
		Status: model.UserStatusInactive,
	}, nil)

	e.GET("/protected", echoContext, middleware.AuthJWT(testSecret), middleware.ActiveUserGuard(userRepo))

	rec := runRequest(t, e, "Bearer "+validJWT(t, 1, "customer"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestMiddleware_ActiveUserGuard_UnknownUser(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)
	userRepo.On("FindByID", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

	e.GET("/protected", echoContext, middleware.AuthJWT(testSecret), middleware.ActiveUserGuard(userRepo))

	rec := runRequest(t, e, "Bearer "+validJWT(t, 9, "customer"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// DBが落ちているときは401ではなく500
func TestMiddleware_ActiveUserGuard_RepoFailureIsInternal(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)
	userRepo.On("FindByID", mock.Anything, int64(3)).Return(nil, errors.New("db down"))

	reached := false
	e.GET("/protected", func(c echo.Context) error {
		reached = true
		return echoContext(c)
	}, middleware.AuthJWT(testSecret), middleware.ActiveUserGuard(userRepo))

	rec := runRequest(t, e, "Bearer "+validJWT(t, 3, "customer"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeMWError(t, rec)
	assert.Equal(t, "INTERNAL", body.Error)
	assert.Equal(t, "internal error", body.Message)
	assert.False(t, reached)
	userRepo.AssertExpectations(t)
}

// roleはDBの値が優先される
func TestMiddleware_ActiveUserGuard_RoleFromDB(t *testing.T) {
	e := echo.New()
	userRepo := new(MockUserRepoForMiddleware)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:     1,
		Role:   model.RoleCustomer,
		Status: model.UserStatusActive,
	}, nil)

	e.GET("/protected", echoContext,
		middleware.AuthJWT(testSecret), middleware.ActiveUserGuard(userRepo), middleware.AdminRoleGuard())

	rec := runRequest(t, e, "Bearer "+validJWT(t, 1, "admin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	userRepo.AssertExpectations(t)
}

// traceparentを受けたらハンドラのctxは同じトレースを持つ
func TestMiddleware_Tracing_ContinuesIncomingTrace(t *testing.T) {
	tracing.SetupPropagator()
	e := echo.New()

	var got trace.SpanContext
	e.GET("/protected", func(c echo.Context) error {
		got = trace.SpanContextFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}, middleware.Tracing("storefront-http"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.TraceID().String())
	assert.True(t, got.IsSampled())
}
