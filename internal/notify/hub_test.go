package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/slotswap-api/internal/domain"
	"github.com/phrazzld/slotswap-api/internal/events"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		_ = hub.Serve(w, r, userID)
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID.String()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		n, err := hub.ConnectionCount(context.Background())
		return err == nil && n == want
	}, 2*time.Second, 10*time.Millisecond)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func testEvent(requester, receiver uuid.UUID) *events.SwapEvent {
	req := &domain.SwapRequest{
		ID:            uuid.New(),
		RequesterID:   requester,
		ReceiverID:    receiver,
		OfferedSlotID: uuid.New(),
		TargetSlotID:  uuid.New(),
		Status:        domain.SwapStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	return events.NewSwapEvent(events.TypeSwapProposed, req)
}

func TestHub_DeliversToBothParties(t *testing.T) {
	hub, srv := startHub(t)
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	aliceConn := dial(t, srv, alice)
	bobPhone := dial(t, srv, bob)
	bobLaptop := dial(t, srv, bob)
	carolConn := dial(t, srv, carol)
	waitForConnections(t, hub, 4)

	event := testEvent(alice, bob)
	require.NoError(t, hub.HandleEvent(context.Background(), event))

	for _, conn := range []*websocket.Conn{aliceConn, bobPhone, bobLaptop} {
		msg := readMessage(t, conn)
		assert.Equal(t, events.TypeSwapProposed, msg.Type)
		require.NotNil(t, msg.Payload)
		assert.Equal(t, event.RequestID, msg.Payload.RequestID)
		assert.Equal(t, bob, msg.Payload.ReceiverID)
	}

	require.NoError(t, carolConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := carolConn.ReadMessage()
	assert.Error(t, err, "uninvolved users receive nothing")
}

func TestHub_UnregistersClosedConnections(t *testing.T) {
	hub, srv := startHub(t)
	alice := uuid.New()

	conn := dial(t, srv, alice)
	waitForConnections(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForConnections(t, hub, 0)

	// Delivering to a user with no connections is a no-op.
	assert.NoError(t, hub.HandleEvent(context.Background(), testEvent(alice, uuid.New())))
}

func TestHub_HandleEventRespectsContext(t *testing.T) {
	// Run is never started, so delivery cannot proceed.
	hub := NewHub(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := hub.HandleEvent(ctx, testEvent(uuid.New(), uuid.New()))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
