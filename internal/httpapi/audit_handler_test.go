package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestAuditHandler_ListRecords_InvalidSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuditHandler(nil, zap.NewNop())

	router := gin.New()
	router.GET("/api/v1/sessions/:session_id/audit", handler.ListRecords)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid/audit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
