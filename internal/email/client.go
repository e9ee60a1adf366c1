// Package email defines the interface for transactional email delivery and
// provides Resend- and SendGrid-backed implementations.
package email

import (
	"context"
	"encoding/base64"
)

// Attachment is a single file attached to a Message.
type Attachment struct {
	Filename    string
	ContentType string // e.g. "application/pdf"

	// Content is the raw file, or its base64 text when Base64 is true.
	Content []byte
	Base64  bool
}

// Encoded returns the attachment content as base64 text, encoding it only if
// it is not encoded already.
func (a Attachment) Encoded() string {
	if a.Base64 {
		return string(a.Content)
	}
	return base64.StdEncoding.EncodeToString(a.Content)
}

// Message is one outbound email to a single recipient. The sender address is
// owned by the transport's configuration.
type Message struct {
	To          string
	Subject     string
	Text        string
	Attachments []Attachment
}

// Sender is the interface the dispatcher uses to deliver invoices.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// Send delivers m once. A non-nil error means the transport rejected or
	// failed to deliver the message; callers must not assume partial delivery.
	Send(ctx context.Context, m Message) error
}
