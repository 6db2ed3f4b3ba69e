package notificationhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"mailpilot-backend/db"
	spacesettingsstore "mailpilot-backend/lib/space/settings/store"
	"mailpilot-backend/lib/smtp"
	"mailpilot-backend/models"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Provider delivers notification descriptors to their channels. Delivery is
// fire-and-forget: failures are logged and never fed back into the approval
// state machine.
type Provider interface {
	Send(spaceID, requestID string, items []models.Notification)
}

var Instance Provider

func NewHandler(sendTimeout time.Duration) {
	Instance = impl{
		settingsStore: spacesettingsstore.NewInstance(db.DB),
		sendTimeout:   sendTimeout,
	}
}

func NewInstanceWithStore(settingsStore spacesettingsstore.Provider, sendTimeout time.Duration) Provider {
	return impl{
		settingsStore: settingsStore,
		sendTimeout:   sendTimeout,
	}
}

type impl struct {
	settingsStore spacesettingsstore.Provider
	sendTimeout   time.Duration
}

func (i impl) GetLogger(spaceID, requestID string) *log.Entry {
	return log.
		WithField("space_id", spaceID).
		WithField("request_id", requestID)
}

func (i impl) Send(spaceID, requestID string, items []models.Notification) {
	if len(items) == 0 {
		return
	}
	go i.deliver(spaceID, requestID, items)
}

func (i impl) deliver(spaceID, requestID string, items []models.Notification) {
	logger := i.GetLogger(spaceID, requestID)
	ctx, cancel := context.WithTimeout(context.Background(), i.sendTimeout)
	defer cancel()
	for _, item := range items {
		switch item.Type {
		case models.NotificationTypeEmail:
			if err := smtp.Instance.SendEMail(item.Recipient, item.Subject, item.Message); err != nil {
				logger.WithError(err).WithField("recipient", item.Recipient).Error("failed to deliver an approval email")
			}
		case models.NotificationTypeWebhook:
			i.sendWebhook(ctx, logger, spaceID, item)
		default:
			logger.WithField("notification_type", item.Type).Warn("unknown notification channel")
		}
	}
	// a copy of every descriptor also goes to the space webhook if one is set
	i.mirrorToWebhook(ctx, logger, spaceID, requestID, items)
}

func (i impl) sendWebhook(ctx context.Context, logger *log.Entry, spaceID string, item models.Notification) {
	url := item.Recipient
	if url == "" {
		return
	}
	body, err := json.Marshal(item)
	if err != nil {
		logger.WithError(err).Error("failed to encode a webhook notification")
		return
	}
	i.postJSON(ctx, logger, url, body)
}

func (i impl) mirrorToWebhook(ctx context.Context, logger *log.Entry, spaceID, requestID string, items []models.Notification) {
	url, err := i.settingsStore.GetValueByCode(spaceID, models.NotifyWebhookSetting)
	if err != nil {
		logger.WithError(err).Error("failed to read the notification webhook setting")
		return
	}
	if url == "" {
		return
	}
	// the delivery id lets the receiver deduplicate retried posts
	payload := struct {
		DeliveryID    string                `json:"delivery_id"`
		RequestID     string                `json:"request_id"`
		Notifications []models.Notification `json:"notifications"`
	}{
		DeliveryID:    uuid.NewString(),
		RequestID:     requestID,
		Notifications: items,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("failed to encode the webhook payload")
		return
	}
	i.postJSON(ctx, logger, url, body)
}

func (i impl) postJSON(ctx context.Context, logger *log.Entry, url string, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		logger.WithError(err).Error("failed to build the webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.WithError(err).Errorf("error sending notification to webhook, resp %+v", resp)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.WithField("status_code", resp.StatusCode).Warn("webhook responded with an error status")
	}
}
