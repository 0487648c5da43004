package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/config"
	"github.com/btb36/escpos-emulator/internal/session"
)

func newTestSessionHandler(t *testing.T) (*SessionHandler, *session.Manager) {
	manager := session.NewManager(nil, zap.NewNop(), &config.DecoderConfig{TextEncoding: "gbk"})
	loggingCfg := &config.LoggingConfig{Output: filepath.Join(t.TempDir(), "escpos.log")}
	handler := NewSessionHandler(manager, loggingCfg, zap.NewNop())
	return handler, manager
}

func TestSessionHandler_CreateSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestSessionHandler(t)

	router := gin.New()
	router.POST("/api/v1/sessions", handler.CreateSession)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.SessionID)
}

func TestSessionHandler_HandleConnection_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestSessionHandler(t)

	router := gin.New()
	router.GET("/ws/sessions/:session_id", handler.HandleConnection)

	req := httptest.NewRequest(http.MethodGet, "/ws/sessions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_HandleConnection_UnknownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newTestSessionHandler(t)

	router := gin.New()
	router.GET("/ws/sessions/:session_id", handler.HandleConnection)

	req := httptest.NewRequest(http.MethodGet, "/ws/sessions/2e4e4e4e-4e4e-4e4e-4e4e-4e4e4e4e4e4e", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
