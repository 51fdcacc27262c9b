package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/takumaeat/takumaeat-app/events"
	"github.com/takumaeat/takumaeat-app/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler meng-upgrade koneksi dashboard admin ke websocket dan
// mendaftarkannya ke hub broadcast
func EventsHandler(c *gin.Context) {
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	if roleStr == "" {
		roleStr = "admin"
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to upgrade websocket: %v", err)
		return
	}

	events.RegisterClient(conn, roleStr)
	utils.InfoLogger.Printf("Events client connected (role=%s)", roleStr)

	go func() {
		defer events.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
