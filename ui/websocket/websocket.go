package websocket

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/novareel/novareel/infrastructure/valkey"
)

type client struct{}

type BroadcastMessage struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	UserID   string `json:"user_id,omitempty"`
	Result   any    `json:"result,omitempty"`
	SenderID string `json:"sender_id,omitempty"`
}

var (
	Clients    = make(map[*websocket.Conn]client)
	Register   = make(chan *websocket.Conn)
	Broadcast  = make(chan BroadcastMessage)
	Unregister = make(chan *websocket.Conn)

	vkClient *valkey.Client
	wsChan   = "novareel:ws_broadcast"
	localID  string
)

// SetValkeyClient enables the distributed broadcast system so events
// reach clients connected to other server instances.
func SetValkeyClient(client *valkey.Client, serverID string) {
	vkClient = client
	localID = serverID
}

// Notifier pushes recommendation refresh events to connected clients.
// It satisfies the recommend domain's Notifier interface.
type Notifier struct{}

func (Notifier) NotifyNewRecommendations(userID string, count int) {
	Broadcast <- BroadcastMessage{
		Code:    "NEW_RECOMMENDATIONS",
		Message: "New recommendations are available",
		UserID:  userID,
		Result:  map[string]any{"user_id": userID, "count": count},
	}
}

func handleRegister(conn *websocket.Conn) {
	Clients[conn] = client{}
	logrus.Debug("[WS] Connection registered")
}

func handleUnregister(conn *websocket.Conn) {
	delete(Clients, conn)
	logrus.Debug("[WS] Connection unregistered")
}

func broadcastToLocal(message BroadcastMessage) {
	marshalMessage, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn := range Clients {
		if err := conn.WriteMessage(websocket.TextMessage, marshalMessage); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			closeConnection(conn)
		}
	}
}

func publishToValkey(message BroadcastMessage) {
	if vkClient == nil {
		return
	}

	// Attach local ID as sender
	message.SenderID = localID

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	ctx := context.Background()
	cmd := vkClient.Inner().B().Publish().Channel(wsChan).Message(string(data)).Build()
	if err := vkClient.Inner().Do(ctx, cmd).Error(); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

// handleValkeyMessage forwards a remote broadcast into the hub channel
// so the Clients map is only ever touched by the hub goroutine.
func handleValkeyMessage(payload string) {
	var broadcastMsg BroadcastMessage
	if err := json.Unmarshal([]byte(payload), &broadcastMsg); err != nil {
		logrus.Errorf("[WS] Unmarshal error on Valkey message: %v", err)
		return
	}
	// Avoid loops: ignore messages sent by this same instance
	if broadcastMsg.SenderID == localID {
		return
	}
	Broadcast <- broadcastMsg
}

func startValkeySubscriber() {
	if vkClient == nil {
		return
	}

	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber for distributed events")
	go func() {
		err := vkClient.Inner().Receive(context.Background(), vkClient.Inner().B().Subscribe().Channel(wsChan).Build(), func(msg valkeylib.PubSubMessage) {
			handleValkeyMessage(msg.Message)
		})
		if err != nil {
			logrus.Errorf("[WS] Valkey subscriber failed: %v", err)
		}
	}()
}

func closeConnection(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	delete(Clients, conn)
}

func RunHub() {
	// If Valkey is enabled, start the subscriber
	if vkClient != nil {
		startValkeySubscriber()
	}

	for {
		select {
		case conn := <-Register:
			handleRegister(conn)

		case conn := <-Unregister:
			handleUnregister(conn)

		case message := <-Broadcast:
			// 1. Send to local clients immediately
			broadcastToLocal(message)

			// 2. Propagate locally originated messages to other servers.
			// A set SenderID means the message already travelled once.
			if vkClient != nil && message.SenderID == "" {
				publishToValkey(message)
			}
		}
	}
}

func RegisterRoutes(app fiber.Router) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			Unregister <- conn
			_ = conn.Close()
		}()

		Register <- conn

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Println("read error:", err)
				}
				return
			}

			if messageType == websocket.TextMessage {
				var messageData BroadcastMessage
				if err := json.Unmarshal(message, &messageData); err != nil {
					logrus.Println("unmarshal error:", err)
					return
				}

				if messageData.Code == "PING" {
					Broadcast <- BroadcastMessage{
						Code:    "PONG",
						Message: "Hub is alive",
					}
				}
			} else {
				logrus.Println("unsupported message type:", messageType)
			}
		}
	}))
}
