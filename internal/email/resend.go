package email

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultResendEndpoint is the Resend send-email API.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// resendClient is the concrete Sender backed by the Resend API.
type resendClient struct {
	fromAddr string // e.g. "invoices@example.com"
	fromName string // e.g. "Buy Me A Gradient"
	endpoint string
	http     *resty.Client
}

// NewResendClient returns a Sender that delivers email via Resend. An empty
// endpoint selects DefaultResendEndpoint.
func NewResendClient(apiKey, fromAddr, fromName, endpoint string) Sender {
	if endpoint == "" {
		endpoint = DefaultResendEndpoint
	}
	return &resendClient{
		fromAddr: fromAddr,
		fromName: fromName,
		endpoint: endpoint,
		http: resty.New().
			SetTimeout(30 * time.Second). // attachments make requests larger than plain notifications
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	Text        string             `json:"text"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"` // base64
	ContentType string `json:"content_type,omitempty"`
}

type resendError struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

type resendResponse struct {
	ID    string       `json:"id"`
	Error *resendError `json:"error"`
}

// ─── SENDER IMPLEMENTATION ────────────────────────────────────────────────────

// Send posts m to Resend. It makes exactly one attempt.
func (c *resendClient) Send(ctx context.Context, m Message) error {
	reqBody := resendRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromAddr),
		To:      []string{m.To},
		Subject: m.Subject,
		Text:    m.Text,
	}
	for _, a := range m.Attachments {
		reqBody.Attachments = append(reqBody.Attachments, resendAttachment{
			Filename:    a.Filename,
			Content:     a.Encoded(),
			ContentType: a.ContentType,
		})
	}

	var parsed resendResponse
	var apiErr resendError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&parsed).
		SetError(&apiErr).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("email: http request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("email: unexpected status %d: %s %.200s", resp.StatusCode(), apiErr.Name, apiErr.Message)
	}
	if parsed.Error != nil {
		return fmt.Errorf("email: Resend error %s: %s", parsed.Error.Name, parsed.Error.Message)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("email: unexpected status %d: %.200s", resp.StatusCode(), resp.String())
	}

	return nil
}
