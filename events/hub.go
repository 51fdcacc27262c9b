package events

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

// Event types
const (
	EventOrderCreated  = "order_created"
	EventOrderUpdate   = "order_update"
	EventPaymentUpdate = "payment_update"
	EventPromoUpdate   = "promo_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung koneksi dashboard admin untuk broadcast perubahan
// order/pembayaran secara real-time
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderCreated menyiarkan order baru ke semua client
func BroadcastOrderCreated(order models.Order) {
	broadcast(Message{
		Event: EventOrderCreated,
		Data:  order,
	})
}

// BroadcastOrderUpdate menyiarkan perubahan status order
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastPaymentUpdate menyiarkan perubahan status pembayaran
func BroadcastPaymentUpdate(payment models.Payment) {
	broadcast(Message{
		Event: EventPaymentUpdate,
		Data:  payment,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for conn := range hub.clients {
		if err := conn.WriteJSON(msg); err != nil {
			utils.ErrorLogger.Printf("Failed to broadcast to client: %v", err)
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}
