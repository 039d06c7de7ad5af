package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
	ws "github.com/umichkisa/pocha-backend/internal/websocket"
)

// SocketController 대시보드/주문 상태 실시간 채널
type SocketController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewSocketController(hub *ws.Hub, allowedOrigins []string) *SocketController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &SocketController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowed["*"] || allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// Connect WebSocket 연결 처리
// GET /api/v2/pocha/socket?token=...
// 쿼리 파라미터로 토큰을 받지만, 로깅하지 않음 (보안)
func (ctrl *SocketController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// 미들웨어에서 이미 인증 완료
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	role, _ := middleware.GetUserRole(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, ws.NewConn(conn), email, string(role))
	if role != model.RoleAdmin {
		// 일반 사용자는 본인 주문 상태 이벤트만 수신
		client.Restrict(service.StatusChangeEvent(email))
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"email": email,
	})
}
