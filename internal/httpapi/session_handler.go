// internal/httpapi/session_handler.go
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/audit"
	"github.com/btb36/escpos-emulator/internal/config"
	"github.com/btb36/escpos-emulator/internal/session"
	"github.com/btb36/escpos-emulator/internal/utils"
	"github.com/btb36/escpos-emulator/pkg/btb36"
)

// SessionHandler bridges BLE-shaped byte traffic over a WebSocket
// connection to a session.Session, adapted from the teacher's
// handler.WebSocketHandler: same upgrader configuration, same
// read-deadline/pong-handler discipline (the server sends no pings of its
// own), but binary ESC/POS frames in place of
// JSON-typed messages, since the write/notify characteristics this stands
// in for carry opaque bytes, not envelopes.
type SessionHandler struct {
	upgrader   websocket.Upgrader
	manager    *session.Manager
	loggingCfg *config.LoggingConfig
	logger     *utils.ServiceLogger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *session.Manager, loggingCfg *config.LoggingConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		manager:    manager,
		loggingCfg: loggingCfg,
		logger:     utils.NewServiceLogger(logger, "session-handler"),
	}
}

// CreateSession allocates a session and returns its ID, without opening a
// transport connection — a client that wants to drive it over WebSocket
// connects to /ws/sessions/:session_id afterward.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sink, err := audit.NewFileConsoleSink(h.loggingCfg, uuid.New().String())
	if err != nil {
		h.logger.Error("failed to create audit sink", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to create session", err)
		return
	}

	s := h.manager.Create(c.Request.Context(), c.ClientIP(), sink)
	utils.SuccessResponse(c, http.StatusCreated, "session created", gin.H{
		"session_id":       s.ID,
		"write_char_uuid":  btb36.WriteCharacteristicUUID,
		"notify_char_uuid": btb36.NotifyCharacteristicUUID,
		"advertised_name":  btb36.AdvertisedName,
	})
}

// HandleConnection upgrades to a WebSocket and bridges binary frames to the
// named session's decoder, per spec.md's caller contract: every write is
// fed to the decoder; every response is written back in order; an empty
// response list after at least one non-MALFORMED command gets the default
// ACK instead.
func (h *SessionHandler) HandleConnection(c *gin.Context) {
	idParam := c.Param("session_id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid session_id", err)
		return
	}

	s, ok := h.manager.Get(id)
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "session not found", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection", zap.Error(err))
		return
	}
	defer conn.Close()
	defer h.manager.Remove(id)

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	h.logger.Info("session websocket connected", zap.String("session_id", id.String()))

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("session websocket read error", zap.Error(err), zap.String("session_id", id.String()))
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		responses, hadCommand := s.Feed(data)
		if len(responses) == 0 && hadCommand {
			responses = [][]byte{{btb36.DefaultACK}}
		}

		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		for _, resp := range responses {
			if err := conn.WriteMessage(websocket.BinaryMessage, resp); err != nil {
				h.logger.Error("session websocket write error", zap.Error(err), zap.String("session_id", id.String()))
				return
			}
		}
	}
}
