package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "ws-secret"

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(ServeWS(hub, testSecret, NewUpgrader(nil)))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
}

func waitForClients(t *testing.T, hub *Hub, topic string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount(topic) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestValidTopic(t *testing.T) {
	assert.True(t, ValidTopic("dashboard"))
	assert.True(t, ValidTopic("post:abc"))
	assert.False(t, ValidTopic("post:"))
	assert.False(t, ValidTopic("chat"))
	assert.False(t, ValidTopic(""))
}

func TestPostTopicReceivesPublicProjection(t *testing.T) {
	hub, srv := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "topic=post:p1"), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, hub, "post:p1", 1)

	hub.BroadcastActivity(model.Activity{
		Type:     model.ActivityInteraction,
		UserID:   "u1",
		User:     "Alice",
		Action:   "liked",
		PostID:   "p1",
		Counters: &model.Counters{Likes: 1},
	})

	var msg struct {
		Topic   string                 `json:"topic"`
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "post:p1", msg.Topic)
	assert.Equal(t, model.ActivityInteraction, msg.Type)
	assert.Equal(t, "liked", msg.Payload["action"])
	assert.NotContains(t, msg.Payload, "userId")
	counters := msg.Payload["counters"].(map[string]interface{})
	assert.Equal(t, float64(1), counters["likes"])
}

func TestDashboardRequiresAdmin(t *testing.T) {
	_, srv := startHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "topic=dashboard"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userToken, err := util.GenerateToken("u1", "u@example.com", model.RoleUser, testSecret, time.Hour)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "topic=dashboard&token="+userToken), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken, err := util.GenerateToken("a1", "a@example.com", model.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "topic=dashboard&token="+adminToken), nil)
	require.NoError(t, err)
	conn.Close()
}

func TestInvalidTopicRejected(t *testing.T) {
	_, srv := startHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "topic=chat"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
