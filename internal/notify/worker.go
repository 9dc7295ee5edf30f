package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
	"github.com/cyberpapiii/yipyap-sub000/internal/metrics"
)

// Worker fans a notification out to every enabled subscription of its
// recipient. Deliveries run concurrently with a bounded worker count; each
// attempt is logged to the delivery log and dead subscriptions are removed
// on the spot.
type Worker struct {
	subs        domain.SubscriptionRepository
	sender      PushSender
	concurrency int
	timeout     time.Duration
}

func NewWorker(subs domain.SubscriptionRepository, sender PushSender, concurrency int, timeout time.Duration) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		subs:        subs,
		sender:      sender,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// HandleNotificationCreated is the event bus subscriber. It never returns an
// error: push delivery is best-effort and must not affect the write path.
func (w *Worker) HandleNotificationCreated(n domain.Notification) {
	result := w.Deliver(context.Background(), n)
	if result.Failed > 0 {
		slog.Warn("Push fan-out finished with failures",
			"notification_id", n.ID.String(),
			"sent", result.Sent,
			"failed", result.Failed,
		)
	}
}

// Deliver sends the notification to all enabled subscriptions of the
// recipient and returns the per-device tally.
func (w *Worker) Deliver(ctx context.Context, n domain.Notification) domain.DeliveryResult {
	start := time.Now()
	defer func() {
		metrics.PushFanoutDuration.Observe(time.Since(start).Seconds())
	}()

	subs, err := w.subs.ListEnabled(ctx, n.RecipientID)
	if err != nil {
		slog.Error("Failed to list push subscriptions",
			"recipient_id", n.RecipientID.String(), "error", err)
		return domain.DeliveryResult{}
	}
	if len(subs) == 0 {
		return domain.DeliveryResult{}
	}

	payload, err := BuildPayload(n)
	if err != nil {
		slog.Error("Failed to build push payload",
			"notification_id", n.ID.String(), "error", err)
		return domain.DeliveryResult{Failed: len(subs), Total: len(subs)}
	}

	var mu sync.Mutex
	result := domain.DeliveryResult{Total: len(subs)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			ok := w.deliverOne(gctx, n, sub, payload)
			mu.Lock()
			if ok {
				result.Sent++
			} else {
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (w *Worker) deliverOne(ctx context.Context, n domain.Notification, sub domain.PushSubscription, payload []byte) bool {
	sendCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.sender.Send(sendCtx, sub, payload)

	entry := domain.DeliveryLogEntry{
		NotificationID: n.ID,
		SubscriptionID: sub.ID,
		Success:        err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if logErr := w.subs.AppendDeliveryLog(ctx, entry); logErr != nil {
		slog.Error("Failed to append delivery log",
			"subscription_id", sub.ID.String(), "error", logErr)
	}

	switch {
	case err == nil:
		metrics.PushDeliveries.WithLabelValues("sent").Inc()
		return true
	case errors.Is(err, ErrSubscriptionGone):
		metrics.PushDeliveries.WithLabelValues("gone").Inc()
		if delErr := w.subs.Delete(ctx, sub.ID); delErr != nil && !errors.Is(delErr, domain.ErrSubscriptionNotFound) {
			slog.Error("Failed to delete dead subscription",
				"subscription_id", sub.ID.String(), "error", delErr)
		} else {
			metrics.SubscriptionsCleaned.Inc()
		}
		return false
	default:
		metrics.PushDeliveries.WithLabelValues("failed").Inc()
		slog.Warn("Push delivery failed",
			"subscription_id", sub.ID.String(), "error", err)
		return false
	}
}
