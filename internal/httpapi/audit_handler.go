// internal/httpapi/audit_handler.go
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/auditstore"
	"github.com/btb36/escpos-emulator/internal/utils"
)

// AuditHandler serves paginated reads of a session's persisted audit
// trail, modeled on the teacher's read-only list handlers.
type AuditHandler struct {
	store  *auditstore.Repository
	logger *utils.ServiceLogger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store *auditstore.Repository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{store: store, logger: utils.NewServiceLogger(logger, "audit-handler")}
}

// ListRecords returns a page of audit records for a session.
func (h *AuditHandler) ListRecords(c *gin.Context) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid session_id", err)
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	records, err := h.store.ListRecords(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.logger.Error("failed to list audit records", zap.Error(err), zap.String("session_id", id.String()))
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to list audit records", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "audit records", gin.H{
		"session_id": id,
		"limit":      limit,
		"offset":     offset,
		"records":    records,
	})
}
