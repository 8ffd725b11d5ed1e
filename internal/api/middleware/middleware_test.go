package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("segredo")

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, key []byte, roles []string, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "maria",
		"roles":    roles,
		"exp":      exp.Unix(),
	}).SignedString(key)
	require.NoError(t, err)
	return s
}

func protectedRouter(permission string) *gin.Engine {
	r := gin.New()
	r.POST("/x", AuthMiddleware(secret), PermissionMiddleware(permission), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r http.Handler, method, path, auth string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter("upload")
	later := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		auth   string
		status int
	}{
		{"sem token", "", http.StatusUnauthorized},
		{"formato inválido", "Token abc", http.StatusUnauthorized},
		{"assinatura errada", "Bearer " + token(t, []byte("outro"), []string{"upload"}, later), http.StatusUnauthorized},
		{"expirado", "Bearer " + token(t, secret, []string{"upload"}, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"sem permissão", "Bearer " + token(t, secret, []string{"meta"}, later), http.StatusForbidden},
		{"válido", "Bearer " + token(t, secret, []string{"meta", "upload"}, later), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/x", tc.auth)
			assert.Equal(t, tc.status, w.Code)
			if tc.status != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"detail"`)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://painel.local"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, http.MethodOptions, "/x", "", "Origin", "http://painel.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://painel.local", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(r, http.MethodGet, "/x", "", "Origin", "http://outro.local")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	r = gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = doRequest(r, http.MethodGet, "/x", "", "Origin", "http://qualquer.local")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusTeapot, "ok") })

	w := doRequest(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
