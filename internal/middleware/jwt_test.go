package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/tracker-api/internal/models"
	"github.com/devpulse/tracker-api/internal/service"
	"github.com/devpulse/tracker-api/pkg/password"
	"github.com/devpulse/tracker-api/pkg/token"
)

type stubUserRepo struct{}

func (stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (stubUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, nil
}
func (stubUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error { return nil }

type stubTokenStore struct{}

func (stubTokenStore) Create(ctx context.Context, t *models.RefreshToken) error { return nil }
func (stubTokenStore) Rotate(ctx context.Context, oldToken string, replacement *models.RefreshToken, now time.Time) (int64, error) {
	return 0, nil
}
func (stubTokenStore) Revoke(ctx context.Context, t string) error { return nil }
func (stubTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error { return nil }

func testRouter(codec *token.Codec) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(stubUserRepo{}, stubTokenStore{}, password.NewHasher(password.Params{}), codec, nil, nil, service.AuthConfig{})

	r := gin.New()
	r.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestJWTAcceptsValidToken(t *testing.T) {
	codec := token.NewCodec("test-secret", "tracker-api", time.Minute)
	r := testRouter(codec)

	signed, err := codec.Issue(42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := testRouter(token.NewCodec("test-secret", "tracker-api", time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	r := testRouter(token.NewCodec("test-secret", "tracker-api", time.Minute))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	codec := token.NewCodec("test-secret", "tracker-api", time.Minute)
	r := testRouter(codec)

	signed, err := token.NewCodec("other-secret", "tracker-api", time.Minute).Issue(42)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
