package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/nikhil/tsview/internal/models"
)

func recvFrame(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case frame := <-ch:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func decodeInfo(t *testing.T, frame []byte) models.ServerInfo {
	t.Helper()
	var info models.ServerInfo
	if err := json.Unmarshal(frame, &info); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return info
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := &wsClient{hub: hub, send: make(chan []byte, 8)}
	hub.Register <- c1

	hub.BroadcastStatus(&models.ServerInfo{Name: "v1"})

	info := decodeInfo(t, recvFrame(t, c1.send))
	if info.Name != "v1" {
		t.Errorf("expected v1 frame, got %+v", info)
	}
}

func TestHubReplaysLatestSnapshotToNewSubscriber(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := &wsClient{hub: hub, send: make(chan []byte, 8)}
	hub.Register <- c1
	hub.BroadcastStatus(&models.ServerInfo{Name: "v1"})
	recvFrame(t, c1.send)

	late := &wsClient{hub: hub, send: make(chan []byte, 8)}
	hub.Register <- late

	info := decodeInfo(t, recvFrame(t, late.send))
	if info.Name != "v1" {
		t.Errorf("late subscriber should get the latest snapshot, got %+v", info)
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &wsClient{hub: hub, send: make(chan []byte, 8)}
	hub.Register <- c
	hub.Unregister <- c

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected the send channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHandleWebSocketDeliversSnapshots(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	h := NewWebSocketHandler(hub)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hub.BroadcastStatus(&models.ServerInfo{Name: "live"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	info := decodeInfo(t, frame)
	if info.Name != "live" {
		t.Errorf("expected live snapshot, got %+v", info)
	}
}
