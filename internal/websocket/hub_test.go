package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-advisor-be/internal/pkg/logger"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func newClient(hub *Hub, sessionID string) *Client {
	return &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 4)}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected message %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SendReachesEveryConnectionOfSession(t *testing.T) {
	hub, _ := startHub(t)

	tabA := newClient(hub, "s1")
	tabB := newClient(hub, "s1")
	other := newClient(hub, "s2")
	for _, c := range []*Client{tabA, tabB, other} {
		require.True(t, hub.join(c))
	}
	assert.Equal(t, 2, hub.Connections("s1"))

	hub.Send("s1", []byte(`{"type":"next"}`))

	assert.Equal(t, `{"type":"next"}`, string(receive(t, tabA)))
	assert.Equal(t, `{"type":"next"}`, string(receive(t, tabB)))
	assertNothing(t, other)
}

func TestHub_DeliverOnlyReachesSender(t *testing.T) {
	hub, _ := startHub(t)

	tabA := newClient(hub, "s1")
	tabB := newClient(hub, "s1")
	require.True(t, hub.join(tabA))
	require.True(t, hub.join(tabB))

	hub.deliver(tabA, []byte(`{"type":"error"}`))

	assert.Equal(t, `{"type":"error"}`, string(receive(t, tabA)))
	assertNothing(t, tabB)
}

func TestHub_LeaveClosesSend(t *testing.T) {
	hub, _ := startHub(t)

	c := newClient(hub, "s1")
	require.True(t, hub.join(c))
	hub.leave(c)

	assert.Equal(t, 0, hub.Connections("s1"))
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestHub_StoppedHubRejectsClients(t *testing.T) {
	hub, cancel := startHub(t)
	cancel()
	<-hub.done

	assert.False(t, hub.join(newClient(hub, "s1")))
	assert.Equal(t, 0, hub.Connections("s1"))
}
