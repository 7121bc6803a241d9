package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tablescout/tablescout/app/models"
	"github.com/tablescout/tablescout/internal/pkg/env"
)

const defaultMailAPIBaseURL = "https://api.brevo.com/v3"

// Client sends transactional email through the Brevo HTTP API.
type Client struct {
	APIKey     string
	APIBaseURL string
	SenderName string
	SenderMail string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a mail client from process configuration.
func NewClientFromEnv() *Client {
	sender := strings.TrimSpace(env.GetEnv("MAIL_SENDER", ""))
	if sender == "" {
		sender = "no-reply@tablescout.app"
		log.Printf("MAIL_SENDER not set, using default sender: %s", sender)
	}

	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("MAIL_API_KEY", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("MAIL_API_BASE_URL", defaultMailAPIBaseURL)),
		SenderName: strings.TrimSpace(env.GetEnv("MAIL_SENDER_NAME", "TableScout")),
		SenderMail: sender,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
}

// Send delivers one HTML email. Callers treat failures as non-fatal; the
// request that triggered the email must never fail on mail errors.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("MAIL_API_KEY is not configured")
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient address is required")
	}

	var payload sendRequest
	payload.Sender.Name = c.SenderName
	payload.Sender.Email = c.SenderMail
	payload.To = append(payload.To, struct {
		Email string `json:"email"`
	}{Email: strings.TrimSpace(to)})
	payload.Subject = subject
	payload.HTMLContent = htmlBody

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + "/smtp/email"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail send failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendTemplate renders a localized template for the user and sends it
// best-effort in the background.
func (c *Client) SendTemplate(user *models.User, template TemplateID, data map[string]string) {
	merged := map[string]string{"name": user.Name}
	for k, v := range data {
		merged[k] = v
	}
	subject, body := Render(template, user.Locale, merged)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := c.Send(ctx, user.Email, subject, body); err != nil {
			log.Printf("mail: sending %s to user %d failed: %v", template, user.ID, err)
		}
	}()
}

// NotifyPaymentFailed implements the billing notifier hook.
func (c *Client) NotifyPaymentFailed(user *models.User) {
	c.SendTemplate(user, TemplatePaymentFailed, nil)
}
