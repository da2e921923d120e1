/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which upgrades the HTTP connection and starts the
client lifecycle. Room membership is established afterwards by the join event on the socket.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"coderoom/internal/app/collab"
	"coderoom/internal/pkg/limiter"
	"coderoom/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The upgrade itself is rate limited by the router.
func HandleWebSocket(hub *collab.Hub, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Warn("Failed to upgrade connection to WebSocket", "error", err.Error())
			return
		}

		client := collab.NewClient(hub, conn)
		hub.Register(client)

		logx.Info("WebSocket connection established", "client_id", client.ID, "ip", logx.AnonymizeIP(limiter.ClientIP(r)))

		go client.WritePump()

		client.ReadPump()
	}
}
