// Package email sends contact-form notifications through the SendGrid
// v3 mail API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.sendgrid.com"

// Notification carries the contact-form fields rendered into the email.
type Notification struct {
	To      string
	Name    string
	Email   string
	Subject string
	Message string
}

// Client sends mail through SendGrid. A Client with no API key is
// disabled; sends become no-ops the caller can detect via Enabled.
type Client struct {
	client    *http.Client
	apiKey    string
	fromEmail string
	baseURL   string
}

// Option configures the Client during construction.
type Option func(*Client)

// WithBaseURL overrides the SendGrid API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient constructs a Client.
func NewClient(client *http.Client, apiKey, fromEmail string, opts ...Option) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	c := &Client{
		client:    client,
		apiKey:    apiKey,
		fromEmail: fromEmail,
		baseURL:   defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether sends will actually reach the provider.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type mailAddress struct {
	Email string `json:"email"`
}

type mailRequest struct {
	Personalizations []struct {
		To []mailAddress `json:"to"`
	} `json:"personalizations"`
	From    mailAddress `json:"from"`
	Subject string      `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// SendContactNotification delivers a contact-form notification email.
func (c *Client) SendContactNotification(ctx context.Context, n Notification) error {
	if !c.Enabled() {
		return nil
	}

	subject := "New Contact Form Submission"
	if n.Subject != "" {
		subject = "New Contact Form Submission: " + n.Subject
	}

	payload := mailRequest{
		From:    mailAddress{Email: c.fromEmail},
		Subject: subject,
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []mailAddress `json:"to"`
	}{To: []mailAddress{{Email: n.To}}})
	payload.Content = append(payload.Content,
		struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}{Type: "text/plain", Value: plainBody(n)},
		struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		}{Type: "text/html", Value: htmlBody(n)},
	)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("email: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("email: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// SendGrid answers 202 Accepted for queued mail.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("email: provider returned %d", resp.StatusCode)
	}
	return nil
}

func plainBody(n Notification) string {
	subject := n.Subject
	if subject == "" {
		subject = "(No subject)"
	}
	return fmt.Sprintf(`A new contact form submission has been received:

Name: %s
Email: %s
Subject: %s

Message:
%s

---
This is an automated notification from the FieldPal contact form.
`, n.Name, n.Email, subject, n.Message)
}

func htmlBody(n Notification) string {
	subject := n.Subject
	if subject == "" {
		subject = "(No subject)"
	}
	return fmt.Sprintf(`<html>
<body>
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> <a href="mailto:%s">%s</a></p>
<p><strong>Subject:</strong> %s</p>
<hr>
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap;">%s</p>
<hr>
<p><em>This is an automated notification from the FieldPal contact form.</em></p>
</body>
</html>`,
		html.EscapeString(n.Name),
		html.EscapeString(n.Email), html.EscapeString(n.Email),
		html.EscapeString(subject),
		html.EscapeString(n.Message))
}
