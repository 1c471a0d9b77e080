package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tokenvault/config"
	"tokenvault/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHubBroadcastToUser(t *testing.T) {
	hub := NewHub()
	a1, a2, b := NewClient("alice"), NewClient("alice"), NewClient("bob")
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)

	assert.Equal(t, 2, hub.BroadcastToUser("alice", map[string]string{"type": "ping"}))
	assert.JSONEq(t, `{"type":"ping"}`, string(<-a1.Send))
	assert.JSONEq(t, `{"type":"ping"}`, string(<-a2.Send))
	assert.Empty(t, b.Send)

	a1.Close()
	a1.Close()
	assert.Equal(t, 1, hub.ClientCount("alice"))
	_, open := <-a1.Send
	assert.False(t, open)

	a2.Close()
	assert.Equal(t, 0, hub.ClientCount("alice"))
	assert.Equal(t, 0, hub.BroadcastToUser("alice", "nobody listening"))
}

func TestHubSkipsFullClients(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: "alice", Send: make(chan []byte, 1)}
	hub.Register(c)

	assert.Equal(t, 1, hub.BroadcastToUser("alice", 1))
	assert.Equal(t, 0, hub.BroadcastToUser("alice", 2))
}

func TestUpgradeNotificationsWS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "tokenvault"}
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", UpgradeNotificationsWS(cfg, hub, zaptest.NewLogger(t)))
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := auth.GenerateAccessToken(cfg, "alice", "alice@example.com")
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount("alice") == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, hub.BroadcastToUser("alice", map[string]string{"type": "TRANSFER_RECEIVED"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TRANSFER_RECEIVED"}`, string(msg))

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount("alice") == 0 }, 2*time.Second, 10*time.Millisecond)
}
