package handler

import (
	"log"
	"net/http"

	"github.com/Mathumitha-create/grievance-cell/internal/dto"
	"github.com/Mathumitha-create/grievance-cell/internal/live"
	"github.com/Mathumitha-create/grievance-cell/internal/middleware"
	"github.com/Mathumitha-create/grievance-cell/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type LiveHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
}

func NewLiveHandler(hub *live.Hub) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

type snapshotMessage struct {
	Type string                  `json:"type"`
	Data []dto.GrievanceResponse `json:"data"`
}

// HandleWebSocket streams role-scoped snapshots over a WebSocket. The client
// receives the current matching set immediately and a fresh set after every
// change, sorted newest first. The subscription is cancelled when the socket
// closes.
func (h *LiveHandler) HandleWebSocket(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	// One dashboard context per connection: closing the socket signs the
	// viewer out, which cancels every subscription it opened.
	dc := service.NewDashboardContext(h.hub)
	dc.SignIn(user.Role, user.Email)
	defer dc.SignOut()

	sub := dc.Subscribe(c.Request.Context())
	if sub == nil {
		return
	}

	// Detect client disconnect
	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			msg := snapshotMessage{
				Type: "snapshot",
				Data: dto.NewGrievanceList(service.SortByNewest(snapshot)),
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Failed to write snapshot to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
