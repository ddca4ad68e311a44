// Package notify delivers the HTML reports by email through the
// SendGrid v3 API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/DamiGo/StockAnalyzer/pkg/config"
	"github.com/DamiGo/StockAnalyzer/pkg/httputil"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// Mailer sends one HTML message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email
type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
}

// SendGrid implements Mailer over the v3 mail/send endpoint
type SendGrid struct {
	http    *httputil.Client
	apiKey  string
	baseURL string
	log     *logger.Logger
}

// NewSendGrid creates a SendGrid mailer
func NewSendGrid(cfg config.SendGridConfig, log *logger.Logger) *SendGrid {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com"
	}
	return &SendGrid{
		http:    httputil.New(log),
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		log:     log.WithField("module", "sendgrid"),
	}
}

// v3 mail/send payload
type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send posts the message. SendGrid answers 202 on acceptance; anything
// else is an error with the response body attached.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("sendgrid api key is not configured")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	to := make([]emailAddress, len(msg.To))
	for i, addr := range msg.To {
		to[i] = emailAddress{Email: addr}
	}

	payload := sendRequest{
		Personalizations: []personalization{{To: to}},
		From:             emailAddress{Email: msg.From},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/html", Value: msg.HTMLBody}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, detail)
	}

	s.log.WithFields(map[string]interface{}{
		"recipients": len(msg.To),
		"subject":    msg.Subject,
	}).Info("Mail sent")

	return nil
}
