// Package events is the in-process event pipeline between the synchronous
// write path and the asynchronous push delivery worker. The write path
// publishes after its transaction commits; subscribers run on their own
// goroutines and can never fail the triggering write.
package events

import (
	"github.com/asaskevich/EventBus"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

const topicNotificationCreated = "notification:created"

// Bus wraps the process-wide event bus with typed publish/subscribe helpers.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// PublishNotificationCreated emits a notification-created event. Fire and
// forget: the caller's write has already committed.
func (b *Bus) PublishNotificationCreated(n domain.Notification) {
	b.bus.Publish(topicNotificationCreated, n)
}

// SubscribeNotificationCreated registers an asynchronous consumer. Handlers
// for distinct events run concurrently.
func (b *Bus) SubscribeNotificationCreated(fn func(domain.Notification)) error {
	return b.bus.SubscribeAsync(topicNotificationCreated, fn, false)
}

// Wait blocks until all in-flight async handlers have returned. Used during
// shutdown and in tests.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}
