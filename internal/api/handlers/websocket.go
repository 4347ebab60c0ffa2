package handlers

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/okotkov/chatrelay/internal/token"
	"github.com/okotkov/chatrelay/internal/websocket"
)

var upgrader = gorillaWS.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *websocket.Hub
	tokens *token.Service
}

func NewWebSocketHandler(hub *websocket.Hub, tokens *token.Service) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, tokens: tokens}
}

// Handle is the realtime session gate: the handshake must carry a valid,
// unexpired access token or the connection is rejected before the upgrade.
// The stored refresh-token list is not consulted here, so an access token
// stays good until its own expiry even after a logout.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	accessToken := r.URL.Query().Get("accessToken")
	if accessToken == "" {
		http.Error(w, "Access token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.tokens.VerifyAccess(accessToken)
	if err != nil {
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
