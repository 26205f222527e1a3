package bidlive

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
		Room: "p1",
	}

	hub.register <- client

	evt := Event{Type: "bid_placed", ProductID: "p1", BidID: "b1", Amount: 120}
	data, _ := json.Marshal(evt)
	hub.broadcast <- broadcastMsg{Room: "p1", Data: data}

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	hub.unregister <- client
}

func TestHubPublishRoutesToRoomOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	watcher := &Client{Send: make(chan []byte, 10), Room: "p1"}
	other := &Client{Send: make(chan []byte, 10), Room: "p2"}
	hub.register <- watcher
	hub.register <- other

	hub.Publish(Event{Type: "bid_accepted", ProductID: "p1", BidID: "b9", Amount: 300})

	select {
	case raw := <-watcher.Send:
		var got Event
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if got.BidID != "b9" || got.Type != "bid_accepted" {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case raw := <-other.Send:
		t.Fatalf("event leaked to wrong room: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}
