package sse

import (
	"context"
	"sync"

	"campus-events/internal/models"
)

// CheckinEventEmitter fans successful check-ins out to live dashboards, keyed by event.
type CheckinEventEmitter struct {
	// key: eventID, value: subscriber channels
	eventClients     map[string][]chan models.CheckinEvent
	eventClientMutex sync.RWMutex
}

func NewCheckinEventEmitter() *CheckinEventEmitter {
	return &CheckinEventEmitter{
		eventClients: make(map[string][]chan models.CheckinEvent),
	}
}

// SubscribeToEvent registers a listener until ctx is done, after which the channel is closed.
func (e *CheckinEventEmitter) SubscribeToEvent(ctx context.Context, eventID string) <-chan models.CheckinEvent {
	clientChan := make(chan models.CheckinEvent, 16)

	e.eventClientMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventClientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeEventClient(eventID, clientChan)
	}()

	return clientChan
}

// EmitCheckin never blocks: a subscriber with a full buffer misses the event.
func (e *CheckinEventEmitter) EmitCheckin(evt models.CheckinEvent) {
	e.eventClientMutex.RLock()
	defer e.eventClientMutex.RUnlock()

	for _, clientChan := range e.eventClients[evt.EventID] {
		select {
		case clientChan <- evt:
		default:
		}
	}
}

func (e *CheckinEventEmitter) removeEventClient(eventID string, clientChan chan models.CheckinEvent) {
	e.eventClientMutex.Lock()
	defer e.eventClientMutex.Unlock()

	clients := e.eventClients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			e.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.eventClients[eventID]) == 0 {
		delete(e.eventClients, eventID)
	}
}

// GetEventClientCount returns the number of clients currently subscribed to an event
func (e *CheckinEventEmitter) GetEventClientCount(eventID string) int {
	e.eventClientMutex.RLock()
	defer e.eventClientMutex.RUnlock()
	return len(e.eventClients[eventID])
}
