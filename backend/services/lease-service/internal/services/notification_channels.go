package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/config"
	"github.com/arrienda/mono-repo/backend/services/lease-service/internal/constants"
	"github.com/arrienda/mono-repo/backend/shared/go-models"
	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// DeliveryChannel pushes an outbox row to one external medium. The inbox
// itself needs no channel; the row is already readable once committed.
type DeliveryChannel interface {
	Name() string
	Deliver(ctx context.Context, user *models.User, n *models.Notification) error
}

// BuildDeliveryChannels enables every channel whose credentials are
// present. The returned func releases their connections.
func BuildDeliveryChannels(cfg *config.Config) ([]DeliveryChannel, func()) {
	var channels []DeliveryChannel
	closers := []func(){}

	if cfg.SendGridAPIKey != "" {
		channels = append(channels, NewEmailChannel(cfg))
	} else {
		utils.Logger.Warn("SENDGRID_API_KEY not set, email notifications disabled")
	}

	if cfg.LDFlag_SMSNotifications && cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		channels = append(channels, NewSMSChannel(cfg))
	}

	if cfg.NATSUrl != "" {
		ev, err := NewEventChannel(cfg.NATSUrl, cfg.AppName)
		if err != nil {
			utils.Logger.WithError(err).Warn("NATS unavailable, lease events will not be published")
		} else {
			channels = append(channels, ev)
			closers = append(closers, ev.Close)
		}
	}

	return channels, func() {
		for _, c := range closers {
			c()
		}
	}
}

// ----------------------------------------------------------------
// Email (SendGrid)
// ----------------------------------------------------------------

type EmailChannel struct {
	client      *sendgrid.Client
	fromEmail   string
	fromName    string
	sandboxMode bool
}

func NewEmailChannel(cfg *config.Config) *EmailChannel {
	return &EmailChannel{
		client:      sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail:   cfg.LDFlag_SendgridFromEmail,
		fromName:    cfg.OrganizationName,
		sandboxMode: cfg.LDFlag_SendgridSandboxMode,
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, user *models.User, n *models.Notification) error {
	if user.Email == "" {
		return nil
	}
	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail(user.Name, user.Email)
	htmlContent := fmt.Sprintf(notificationEmailHTML, html.EscapeString(n.Title), html.EscapeString(n.Message))

	msg := mail.NewSingleEmail(from, n.Title, to, n.Message, htmlContent)
	if c.sandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := c.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

const notificationEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#222">
  <h2>%s</h2>
  <p>%s</p>
  <p style="color:#888;font-size:12px">Arrienda</p>
</body>
</html>`

// ----------------------------------------------------------------
// SMS (Twilio)
// ----------------------------------------------------------------

type SMSChannel struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewSMSChannel(cfg *config.Config) *SMSChannel {
	return &SMSChannel{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		fromPhone: cfg.LDFlag_TwilioFromPhone,
	}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Deliver(ctx context.Context, user *models.User, n *models.Notification) error {
	if user.PhoneNumber == nil || *user.PhoneNumber == "" {
		return nil
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(*user.PhoneNumber)
	params.SetFrom(c.fromPhone)
	params.SetBody(fmt.Sprintf("%s: %s", n.Title, n.Message))

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}

// ----------------------------------------------------------------
// Lifecycle events (NATS JetStream)
// ----------------------------------------------------------------

// LeaseEvent is the payload published for every delivered notification.
type LeaseEvent struct {
	NotificationID string          `json:"notification_id"`
	Type           string          `json:"type"`
	UserID         string          `json:"user_id"`
	Title          string          `json:"title"`
	Data           json.RawMessage `json:"data,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

type EventChannel struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func NewEventChannel(url string, clientName string) (*EventChannel, error) {
	opts := []nats.Option{
		nats.Name(clientName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			utils.Logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			utils.Logger.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:        constants.NotificationEventsStream,
		Description: "Rental lifecycle notifications",
		Subjects:    []string{constants.NotificationSubjectRoot + ".>"},
		Storage:     nats.FileStorage,
		Retention:   nats.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Discard:     nats.DiscardOld,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		utils.Logger.WithError(err).Warn("Could not create lease events stream")
	}

	utils.Logger.Infof("Connected to NATS at %s", url)
	return &EventChannel{conn: conn, js: js}, nil
}

func (c *EventChannel) Name() string { return "events" }

func (c *EventChannel) Deliver(ctx context.Context, _ *models.User, n *models.Notification) error {
	payload, err := json.Marshal(LeaseEvent{
		NotificationID: n.ID.String(),
		Type:           string(n.Type),
		UserID:         n.UserID.String(),
		Title:          n.Title,
		Data:           n.Data,
		OccurredAt:     n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal lease event: %w", err)
	}

	// The notification id doubles as the JetStream dedup key, so a redelivered
	// outbox row is not published twice.
	_, err = c.js.Publish(EventSubject(n.Type), payload, nats.Context(ctx), nats.MsgId(n.ID.String()))
	if err != nil {
		return fmt.Errorf("publish lease event: %w", err)
	}
	return nil
}

func (c *EventChannel) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// EventSubject is the JetStream subject for a notification type.
func EventSubject(t models.NotificationType) string {
	return constants.NotificationSubjectRoot + "." + string(t)
}
