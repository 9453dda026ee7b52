// Package notify pushes dispute status changes to users' devices through FCM.
// Device registration tokens live in Realtime Database under /device_tokens/{uid}.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"farmlink/internal/modules/dispute"
)

// ErrNoDevice means the user has not registered a device token.
var ErrNoDevice = errors.New("no device token registered")

// TokenSource resolves a user's FCM registration token.
type TokenSource interface {
	DeviceToken(ctx context.Context, uid string) (string, error)
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

type FCMNotifier struct {
	tokens TokenSource
	sender Sender
	log    *zap.Logger
}

func NewFCMNotifier(tokens TokenSource, sender Sender, log *zap.Logger) *FCMNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &FCMNotifier{tokens: tokens, sender: sender, log: log}
}

// NewFirebaseNotifier wires RTDB token lookup and FCM delivery from one app.
func NewFirebaseNotifier(ctx context.Context, app *firebase.App, log *zap.Logger) (*FCMNotifier, error) {
	dbClient, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising firebase RTDB client: %w", err)
	}
	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising firebase messaging client: %w", err)
	}
	return NewFCMNotifier(RTDBTokens{client: dbClient}, msgClient, log), nil
}

// NotifyDispute implements dispute.Notifier. Users without a device are skipped silently.
func (n *FCMNotifier) NotifyDispute(ctx context.Context, notice dispute.Notice) error {
	token, err := n.tokens.DeviceToken(ctx, string(notice.UserID))
	if errors.Is(err, ErrNoDevice) {
		n.log.Debug("no device for dispute notice", zap.String("user_id", string(notice.UserID)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup device token: %w", err)
	}

	messageID, err := n.sender.Send(ctx, disputeMessage(token, notice))
	if err != nil {
		return fmt.Errorf("sending FCM for dispute %s: %w", string(notice.DisputeID), err)
	}
	n.log.Debug("dispute notice sent",
		zap.String("dispute_id", string(notice.DisputeID)),
		zap.String("message_id", messageID),
	)
	return nil
}

func disputeMessage(token string, notice dispute.Notice) *messaging.Message {
	data := map[string]string{
		"type":       "dispute_update",
		"dispute_id": string(notice.DisputeID),
		"status":     string(notice.Status),
	}
	body := "Your dispute is now " + statusText(notice.Status) + "."
	if notice.CompensationPercent != nil {
		pct := strconv.FormatFloat(*notice.CompensationPercent, 'f', -1, 64)
		data["compensation_percent"] = pct
		body = fmt.Sprintf("Your dispute was resolved with a %s%% refund.", pct)
	}
	return &messaging.Message{
		Token: token,
		Data:  data,
		Notification: &messaging.Notification{
			Title: "Dispute update",
			Body:  body,
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
	}
}

func statusText(s dispute.Status) string {
	switch s {
	case dispute.StatusPending:
		return "awaiting review"
	case dispute.StatusInReview:
		return "under review"
	case dispute.StatusAutoResolved, dispute.StatusResolved:
		return "resolved"
	case dispute.StatusRejected:
		return "closed without compensation"
	}
	return string(s)
}

// RTDBTokens reads /device_tokens/{uid} from Realtime Database.
type RTDBTokens struct {
	client *db.Client
}

func (t RTDBTokens) DeviceToken(ctx context.Context, uid string) (string, error) {
	var token string
	if err := t.client.NewRef("device_tokens/"+uid).Get(ctx, &token); err != nil {
		return "", fmt.Errorf("reading device token: %w", err)
	}
	if token == "" {
		return "", ErrNoDevice
	}
	return token, nil
}
