package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"roomchat/internal/config"
	"roomchat/internal/core"
	"roomchat/internal/log"
	"roomchat/internal/proto"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := log.Nop()
	hub := core.NewHub(core.NewRegistry(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
	}, logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, eventType string) proto.Outbound {
	t.Helper()

	for {
		var out proto.Outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read waiting for %s: %v", eventType, err)
		}
		if out.Type == eventType {
			return out
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketJoinAndBroadcast(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	join := func(conn *websocket.Conn, user string) {
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeJoin, Username: user}); err != nil {
			t.Fatalf("write join: %v", err)
		}
	}

	join(connA, "alice")
	listA := readUntil(t, ctx, connA, proto.TypeUserList)
	if len(listA.Users) != 1 || listA.Users[0] != "alice" {
		t.Fatalf("unexpected user list for alice: %+v", listA.Users)
	}

	welcome := readUntil(t, ctx, connA, proto.TypeMessage)
	if welcome.Kind != "system" {
		t.Fatalf("expected system welcome, got %+v", welcome)
	}

	join(connB, "bob")
	listB := readUntil(t, ctx, connB, proto.TypeUserList)
	if len(listB.Users) != 2 {
		t.Fatalf("unexpected user list for bob: %+v", listB.Users)
	}

	joined := readUntil(t, ctx, connA, proto.TypeUserJoined)
	if joined.Username != "bob" {
		t.Fatalf("unexpected user-joined: %+v", joined)
	}

	if err := wsjson.Write(ctx, connB, proto.Inbound{Type: proto.TypeMessage, Message: "hi there"}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	// Delivered to every open connection, the sender included.
	for name, conn := range map[string]*websocket.Conn{"alice": connA, "bob": connB} {
		msg := readUntil(t, ctx, conn, proto.TypeMessage)
		for msg.Kind == "system" {
			msg = readUntil(t, ctx, conn, proto.TypeMessage)
		}
		if msg.Username != "bob" || msg.Message != "hi there" || msg.Kind != "user" {
			t.Fatalf("unexpected message for %s: %+v", name, msg)
		}
		if msg.Timestamp == 0 {
			t.Fatalf("message for %s missing timestamp", name)
		}
	}
}

func TestWebSocketJoinRequiredBeforeMessage(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeMessage, Message: "hi"}); err != nil {
		t.Fatalf("write message: %v", err)
	}

	errEv := readUntil(t, ctx, conn, proto.TypeError)
	if errEv.Code != core.ErrCodeNotJoined || errEv.Message != "join required" {
		t.Fatalf("unexpected error event: %+v", errEv)
	}
}

func TestWebSocketUnknownTypeRejected(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: "frobnicate"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	errEv := readUntil(t, ctx, conn, proto.TypeError)
	if errEv.Code != core.ErrCodeInvalidMessage {
		t.Fatalf("unexpected error event: %+v", errEv)
	}
}

func TestWebSocketDisconnectAnnouncesLeave(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	for conn, user := range map[*websocket.Conn]string{connA: "alice", connB: "bob"} {
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeJoin, Username: user}); err != nil {
			t.Fatalf("write join: %v", err)
		}
		readUntil(t, ctx, conn, proto.TypeUserList)
	}

	_ = connB.Close(websocket.StatusNormalClosure, "logout")

	left := readUntil(t, ctx, connA, proto.TypeUserLeft)
	if left.Username != "bob" {
		t.Fatalf("unexpected user-left: %+v", left)
	}
}
