package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptopulse/backend/internal/models"
)

func recvEvent(t *testing.T, ch chan models.SocketEvent) models.SocketEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("expected an event")
		return models.SocketEvent{}
	}
}

func assertNoEvent(t *testing.T, ch chan models.SocketEvent) {
	t.Helper()
	select {
	case event := <-ch:
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSpotBroadcastRespectsSubscriptions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	subscribed := hub.RegisterClient(nil)
	subscribed.Subscribe("bitcoin")
	other := hub.RegisterClient(nil)
	other.Subscribe("ethereum")

	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.BroadcastSpot(models.NewSpotUpdate("bitcoin", "usd", 50000))

	event := recvEvent(t, subscribed.Send)
	assert.Equal(t, "spot", event.Type)
	assertNoEvent(t, other.Send)
}

func TestTriggerBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := hub.RegisterClient(nil)
	second := hub.RegisterClient(nil)
	second.Subscribe("ethereum")

	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.BroadcastTrigger(&models.TriggerEvent{RuleID: "r1", AssetID: "bitcoin"})

	assert.Equal(t, "alert_triggered", recvEvent(t, first.Send).Type)
	assert.Equal(t, "alert_triggered", recvEvent(t, second.Send).Type)
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := hub.RegisterClient(nil)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.UnregisterClient(client)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
