package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	authDomain "github.com/allisson/ticketbox/internal/auth/domain"
)

func newProtectedRouter(useCase *fakeAuthUseCase) *gin.Engine {
	router := gin.New()
	router.Use(SessionMiddleware(useCase, testLogger()))
	router.GET("/protected", func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": session.Token})
	})
	return router
}

func doAuthenticated(router *gin.Engine, header string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestSessionMiddleware(t *testing.T) {
	session := &authDomain.AdminSession{
		Token:       "session-token",
		DataKey:     []byte("0123456789abcdef0123456789abcdef"),
		WrapVersion: 1,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	t.Run("Success_LiveSession", func(t *testing.T) {
		router := newProtectedRouter(&fakeAuthUseCase{session: session})

		recorder := doAuthenticated(router, "Bearer session-token")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "session-token")
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		router := newProtectedRouter(&fakeAuthUseCase{session: session})

		recorder := doAuthenticated(router, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Error_NotBearer", func(t *testing.T) {
		router := newProtectedRouter(&fakeAuthUseCase{session: session})

		recorder := doAuthenticated(router, "Basic c2VjcmV0")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Error_UnknownToken", func(t *testing.T) {
		router := newProtectedRouter(&fakeAuthUseCase{session: session})

		recorder := doAuthenticated(router, "Bearer other-token")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Error_RevokedSession", func(t *testing.T) {
		router := newProtectedRouter(&fakeAuthUseCase{authErr: authDomain.ErrInvalidSession})

		recorder := doAuthenticated(router, "Bearer session-token")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("Bearer abc "))
	assert.Equal(t, "", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken(""))
}
