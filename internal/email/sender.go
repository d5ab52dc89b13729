// Package email sends form submissions to a configured third-party form
// back-end (Formspree, Netlify Forms, or EmailJS). A submission is a
// single POST with no retries; only a 2xx response counts as success,
// anything else surfaces as a submission error for the transient banner.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soireehq/soiree/internal/config"
	siteerrors "github.com/soireehq/soiree/internal/errors"
	"github.com/soireehq/soiree/internal/logging"
)

// Submission is one form submission headed for the provider.
type Submission struct {
	Form   string // "rsvp" or "contact"
	Fields map[string]string
}

// Sender delivers submissions to a provider.
type Sender interface {
	Name() string
	Send(ctx context.Context, sub Submission) error
}

// defaultTimeout bounds the provider POST when the caller's context has
// no earlier deadline.
const defaultTimeout = 15 * time.Second

// NewSender builds the sender for the configured provider. An empty
// endpoint yields a no-op sender: submissions are still validated and
// backed up locally, just not forwarded anywhere.
func NewSender(cfg config.EmailConfig, client *http.Client, logger logging.Logger) (Sender, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	if cfg.Endpoint == "" {
		return &noopSender{logger: logger.WithComponent("email")}, nil
	}

	switch cfg.Provider {
	case "", "formspree":
		return &formspreeSender{endpoint: cfg.Endpoint, client: client}, nil
	case "netlify":
		return &netlifySender{endpoint: cfg.Endpoint, client: client}, nil
	case "emailjs":
		return &emailjsSender{endpoint: cfg.Endpoint, publicKey: cfg.PublicKey, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// post runs the provider request and converts failures into submission
// errors. The response body is drained so connections can be reused.
func post(client *http.Client, req *http.Request, provider string) error {
	resp, err := client.Do(req)
	if err != nil {
		return siteerrors.NewSubmissionError("submit_network",
			fmt.Sprintf("posting to %s", provider), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return siteerrors.NewSubmissionError("submit_status",
			fmt.Sprintf("%s responded %d", provider, resp.StatusCode), nil)
	}
	return nil
}

// formspreeSender posts JSON to a Formspree form endpoint.
type formspreeSender struct {
	endpoint string
	client   *http.Client
}

func (s *formspreeSender) Name() string { return "formspree" }

func (s *formspreeSender) Send(ctx context.Context, sub Submission) error {
	payload := make(map[string]string, len(sub.Fields)+1)
	for k, v := range sub.Fields {
		payload[k] = v
	}
	payload["_subject"] = fmt.Sprintf("New %s submission", sub.Form)

	body, err := json.Marshal(payload)
	if err != nil {
		return siteerrors.NewSubmissionError("submit_encode", "encoding submission", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return siteerrors.NewSubmissionError("submit_request", "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return post(s.client, req, s.Name())
}

// netlifySender posts form-encoded data the way Netlify Forms expects,
// including the form-name discriminator field.
type netlifySender struct {
	endpoint string
	client   *http.Client
}

func (s *netlifySender) Name() string { return "netlify" }

func (s *netlifySender) Send(ctx context.Context, sub Submission) error {
	values := url.Values{}
	values.Set("form-name", sub.Form)
	for k, v := range sub.Fields {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint,
		strings.NewReader(values.Encode()))
	if err != nil {
		return siteerrors.NewSubmissionError("submit_request", "building request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return post(s.client, req, s.Name())
}

// emailjsSender posts the EmailJS send-email API shape: the public key
// and the submission fields as template parameters.
type emailjsSender struct {
	endpoint  string
	publicKey string
	client    *http.Client
}

func (s *emailjsSender) Name() string { return "emailjs" }

func (s *emailjsSender) Send(ctx context.Context, sub Submission) error {
	payload := map[string]any{
		"user_id":         s.publicKey,
		"template_params": sub.Fields,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return siteerrors.NewSubmissionError("submit_encode", "encoding submission", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return siteerrors.NewSubmissionError("submit_request", "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return post(s.client, req, s.Name())
}

// noopSender accepts submissions without forwarding them. Used when no
// endpoint is configured so local development still exercises the full
// submit path.
type noopSender struct {
	logger logging.Logger
}

func (s *noopSender) Name() string { return "noop" }

func (s *noopSender) Send(ctx context.Context, sub Submission) error {
	s.logger.Info(ctx, "no email endpoint configured, submission not forwarded",
		"form", sub.Form,
		"fields", len(sub.Fields),
	)
	return nil
}
