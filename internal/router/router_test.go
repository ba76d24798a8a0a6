package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"spendbot/internal/config"
	"spendbot/internal/handler"
	"spendbot/internal/router"
	"spendbot/internal/service"
	"spendbot/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func TestSetup_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(config.AuthConfig{Secret: "s", Issuer: "spendbot"})
	r := router.Setup(
		tokens,
		handler.NewHealthHandler(okPinger{}),
		handler.NewDocumentHandler(new(mocks.MockSessionStarter), new(mocks.MockUserRepo), zap.NewNop()),
		handler.NewExportHandler(new(mocks.MockExportService)),
		zap.NewNop(),
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/42/expenses/export", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
