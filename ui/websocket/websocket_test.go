package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRemoteMessagesRouteThroughHubChannel(t *testing.T) {
	SetValkeyClient(nil, "self")

	payload, _ := json.Marshal(BroadcastMessage{
		Code:     "NEW_RECOMMENDATIONS",
		UserID:   "user1",
		SenderID: "other-instance",
	})
	go handleValkeyMessage(string(payload))

	select {
	case got := <-Broadcast:
		if got.Code != "NEW_RECOMMENDATIONS" || got.SenderID != "other-instance" {
			t.Errorf("unexpected message on hub channel: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("remote message must be forwarded to the hub channel")
	}
}

func TestOwnMessagesFromValkeyAreDropped(t *testing.T) {
	SetValkeyClient(nil, "self")

	payload, _ := json.Marshal(BroadcastMessage{
		Code:     "NEW_RECOMMENDATIONS",
		SenderID: "self",
	})
	handleValkeyMessage(string(payload))

	select {
	case got := <-Broadcast:
		t.Fatalf("own message must not loop back into the hub, got %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}
