package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spendbot/internal/domain"
	"spendbot/internal/handler"
	"spendbot/internal/wizard"
	"spendbot/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	h := handler.NewHealthHandler(pinger{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.Liveness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = handler.NewHealthHandler(pinger{err: errors.New("connection refused")})
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func postDocument(h *handler.DocumentHandler, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("subject", "mail-gateway")
	h.Create(c)
	return w
}

func TestDocumentHandler_Create_Accepted(t *testing.T) {
	starter := new(mocks.MockSessionStarter)
	users := new(mocks.MockUserRepo)
	started := make(chan wizard.Trigger, 1)
	starter.On("StartDocument", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { started <- args.Get(1).(wizard.Trigger) }).
		Return(nil)

	h := handler.NewDocumentHandler(starter, users, zap.NewNop())
	w := postDocument(h, map[string]interface{}{"user_id": 42, "chat_id": 4200, "document_id": "doc-1"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	select {
	case trig := <-started:
		assert.Equal(t, int64(42), trig.UserID)
		assert.Equal(t, int64(4200), trig.ChatID)
		assert.Equal(t, "doc-1", trig.Ref.ExternalDocumentID)
		assert.Equal(t, domain.SourceExternal, trig.SourceTag)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not started")
	}
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Create_LooksUpChat(t *testing.T) {
	starter := new(mocks.MockSessionStarter)
	users := new(mocks.MockUserRepo)
	started := make(chan wizard.Trigger, 1)
	starter.On("StartDocument", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { started <- args.Get(1).(wizard.Trigger) }).
		Return(nil)
	users.On("GetByID", mock.Anything, int64(42)).Return(&domain.User{ID: 42, ChatID: 777}, nil)

	h := handler.NewDocumentHandler(starter, users, zap.NewNop())
	w := postDocument(h, map[string]interface{}{"user_id": 42, "document_id": "doc-1"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	select {
	case trig := <-started:
		assert.Equal(t, int64(777), trig.ChatID)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not started")
	}
}

func TestDocumentHandler_Create_UnknownUser(t *testing.T) {
	starter := new(mocks.MockSessionStarter)
	users := new(mocks.MockUserRepo)
	users.On("GetByID", mock.Anything, int64(42)).Return(nil, domain.ErrUserNotFound)

	h := handler.NewDocumentHandler(starter, users, zap.NewNop())
	w := postDocument(h, map[string]interface{}{"user_id": 42, "document_id": "doc-1"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "USER_NOT_FOUND", resp.Error.Code)
	starter.AssertNotCalled(t, "StartDocument", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Create_BadRequest(t *testing.T) {
	h := handler.NewDocumentHandler(new(mocks.MockSessionStarter), new(mocks.MockUserRepo), zap.NewNop())

	for _, body := range []interface{}{
		map[string]interface{}{"document_id": "doc-1"},
		map[string]interface{}{"user_id": 42},
		map[string]interface{}{"user_id": 42, "document_id": "   "},
		"not an object",
	} {
		w := postDocument(h, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}
}

func TestMapDomainError(t *testing.T) {
	status, code, _ := handler.MapDomainError(fmt.Errorf("userRepo.GetByID: %w", domain.ErrUserNotFound))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "USER_NOT_FOUND", code)

	status, _, _ = handler.MapDomainError(domain.ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = handler.MapDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
}
