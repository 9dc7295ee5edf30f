package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/cyberpapiii/yipyap-sub000/internal/domain"
)

// ErrSubscriptionGone means the push provider reports the subscription as
// permanently dead. The caller should delete it rather than retry.
var ErrSubscriptionGone = errors.New("push subscription gone")

// PushSender delivers one rendered payload to one subscription.
type PushSender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error
}

// VAPIDConfig holds the Web Push signing identity.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
}

// WebPushSender implements PushSender over the Web Push protocol.
type WebPushSender struct {
	vapid VAPIDConfig
	ttl   int
}

var _ PushSender = (*WebPushSender)(nil)

func NewWebPushSender(vapid VAPIDConfig) *WebPushSender {
	return &WebPushSender{vapid: vapid, ttl: 60}
}

func (s *WebPushSender) Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.vapid.Subscriber,
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	// The push provider signals a dead subscription with a 4xx status
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrSubscriptionGone
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
