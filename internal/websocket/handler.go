package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the push channel at /ws behind the given middleware.
func RegisterRoutes(r fiber.Router, hub *Hub, middleware ...fiber.Handler) {
	handlers := append(middleware, UpgradeRequired, websocket.New(func(c *websocket.Conn) {
		ServeWs(hub, c)
	}))
	r.Get("/ws", handlers...)
}

// UpgradeRequired rejects plain HTTP requests on the websocket route.
func UpgradeRequired(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, c *websocket.Conn) {
	client := &Client{Id: uuid.NewString(), Hub: hub, Conn: c, Send: make(chan []byte, 256)}
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
