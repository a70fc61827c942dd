package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/ticketbox/internal/auth/domain"
	"github.com/allisson/ticketbox/internal/auth/http/dto"
	authUsecase "github.com/allisson/ticketbox/internal/auth/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUseCase implements authUsecase.AuthUseCase for handler tests.
type fakeAuthUseCase struct {
	loginResult *authUsecase.LoginResult
	loginErr    error
	session     *authDomain.AdminSession
	authErr     error
	loggedOut   []string
}

func (f *fakeAuthUseCase) Login(_ context.Context, _ string) (*authUsecase.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuthUseCase) Authenticate(_ context.Context, token string) (*authDomain.AdminSession, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if f.session != nil && f.session.Token == token {
		return f.session, nil
	}
	return nil, authDomain.ErrInvalidSession
}

func (f *fakeAuthUseCase) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, recorder
}

func TestAuthHandler_LoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		expiresAt := time.Now().Add(4 * time.Hour).UTC().Truncate(time.Second)
		useCase := &fakeAuthUseCase{
			loginResult: &authUsecase.LoginResult{Token: "session-token", ExpiresAt: expiresAt},
		}
		handler := NewAuthHandler(useCase, testLogger())

		c, recorder := createTestContext(http.MethodPost, "/v1/admin/login", dto.LoginRequest{Password: "CorrectHorse1"})
		handler.LoginHandler(c)

		require.Equal(t, http.StatusOK, recorder.Code)

		var response dto.LoginResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "session-token", response.Token)
		assert.Equal(t, expiresAt, response.ExpiresAt.UTC())
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		useCase := &fakeAuthUseCase{loginErr: authDomain.ErrInvalidCredentials}
		handler := NewAuthHandler(useCase, testLogger())

		c, recorder := createTestContext(http.MethodPost, "/v1/admin/login", dto.LoginRequest{Password: "wrong"})
		handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Error_MissingPassword", func(t *testing.T) {
		handler := NewAuthHandler(&fakeAuthUseCase{}, testLogger())

		c, recorder := createTestContext(http.MethodPost, "/v1/admin/login", dto.LoginRequest{})
		handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})

	t.Run("Error_MalformedBody", func(t *testing.T) {
		handler := NewAuthHandler(&fakeAuthUseCase{}, testLogger())

		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/admin/login", bytes.NewReader([]byte("{")))
		handler.LoginHandler(c)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestAuthHandler_LogoutHandler(t *testing.T) {
	useCase := &fakeAuthUseCase{}
	handler := NewAuthHandler(useCase, testLogger())

	c, recorder := createTestContext(http.MethodPost, "/v1/admin/logout", nil)
	c.Request.Header.Set("Authorization", "Bearer session-token")
	handler.LogoutHandler(c)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, []string{"session-token"}, useCase.loggedOut)
}
