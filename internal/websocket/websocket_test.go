package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
	"github.com/ytsafecheck/backend/internal/safety"
	"github.com/ytsafecheck/backend/internal/session"
)

type connCounter struct {
	open atomic.Int32
}

func (c *connCounter) IncWSConnections() { c.open.Add(1) }
func (c *connCounter) DecWSConnections() { c.open.Add(-1) }

func setup(t *testing.T) (*Hub, *session.Store, *httptest.Server, *connCounter) {
	t.Helper()

	counter := &connCounter{}
	hub := NewHub(counter)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	checker := safety.NewMockChecker(safety.MockConfig{Seed: 1})
	store := session.NewStore(checker, session.StoreConfig{Notifier: NewNotifier(hub)})

	h := NewHandler(hub, store, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/sessions/{id}/ws", apperrors.HandleFunc(h.ServeWS))
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, store, srv, counter
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + sessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServeWS_StreamsNotices(t *testing.T) {
	hub, store, srv, counter := setup(t)
	s := store.Create()

	conn := dial(t, srv, s.ID())

	first := readMessage(t, conn)
	assert.Equal(t, TypeState, first.Type)
	require.NotNil(t, first.State)
	assert.Equal(t, s.ID(), first.State.ID)

	require.Eventually(t, func() bool { return hub.ClientCount(s.ID()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), counter.open.Load())
	assert.True(t, NewNotifier(hub).HasConnectedClients(s.ID()))

	store.Submit(context.Background(), s, "not a url")

	msg := readMessage(t, conn)
	assert.Equal(t, TypeNotice, msg.Type)
	require.NotNil(t, msg.Notice)
	assert.Equal(t, session.LevelError, msg.Notice.Level)
	assert.Equal(t, session.TitleInvalidFormat, msg.Notice.Title)
}

func TestServeWS_RoutesBySession(t *testing.T) {
	hub, store, srv, _ := setup(t)
	a, b := store.Create(), store.Create()

	connA := dial(t, srv, a.ID())
	readMessage(t, connA)
	require.Eventually(t, func() bool { return hub.ClientCount(a.ID()) == 1 }, time.Second, 10*time.Millisecond)

	NewNotifier(hub).Notify(b.ID(), session.Notice{Level: session.LevelInfo, Title: "for b"})
	NewNotifier(hub).Notify(a.ID(), session.Notice{Level: session.LevelInfo, Title: "for a"})

	msg := readMessage(t, connA)
	require.NotNil(t, msg.Notice)
	assert.Equal(t, "for a", msg.Notice.Title)
}

func TestServeWS_UnknownSession(t *testing.T) {
	_, _, srv, _ := setup(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub, store, srv, counter := setup(t)
	s := store.Create()

	conn := dial(t, srv, s.ID())
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.TotalClients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.TotalClients() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), counter.open.Load())
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
