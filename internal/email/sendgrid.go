package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridMailSendPath = "/v3/mail/send"

// sendGridClient is the concrete Sender backed by the SendGrid v3 API.
type sendGridClient struct {
	client   *sendgrid.Client
	fromAddr string
	fromName string
}

// NewSendGridClient returns a Sender that delivers email via SendGrid. host
// overrides the API host (e.g. for a regional endpoint); empty keeps the
// library default.
func NewSendGridClient(apiKey, fromAddr, fromName, host string) Sender {
	client := sendgrid.NewSendClient(apiKey)
	if host != "" {
		client.Request.BaseURL = strings.TrimRight(host, "/") + sendGridMailSendPath
	}
	return &sendGridClient{
		client:   client,
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

// Send builds a v3 mail with one personalization and posts it once.
func (c *sendGridClient) Send(ctx context.Context, m Message) error {
	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(c.fromName, c.fromAddr))
	msg.Subject = m.Subject

	enable := false
	msg.SetTrackingSettings(&mail.TrackingSettings{SubscriptionTracking: &mail.SubscriptionTrackingSetting{Enable: &enable}})

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", m.To))
	msg.AddPersonalizations(personalization)
	msg.AddContent(mail.NewContent("text/plain", m.Text))

	for _, a := range m.Attachments {
		att := mail.NewAttachment()
		att.SetContent(a.Encoded())
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		msg.AddAttachment(att)
	}

	resp, err := c.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("email: sendgrid request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email: sendgrid unexpected status %d: %.200s", resp.StatusCode, resp.Body)
	}
	return nil
}
