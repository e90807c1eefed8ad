package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/venturedigest/venturedigest/pkg/curate"
	"github.com/venturedigest/venturedigest/pkg/newsletter"
)

// Mailchimp delivers the digest as an email campaign: create the
// campaign, set its content, then trigger the send.
type Mailchimp struct {
	client   *http.Client
	baseURL  string // derived from the API key's datacenter suffix; injectable for tests
	apiKey   string
	listID   string
	fromName string
	replyTo  string
	renderer *newsletter.Renderer
}

// MailchimpOpts configure campaign metadata.
type MailchimpOpts struct {
	APIKey   string
	ListID   string
	FromName string
	ReplyTo  string
}

// NewMailchimp creates a new Mailchimp deliverer. The API datacenter is
// encoded in the key suffix ("<key>-us21" -> us21.api.mailchimp.com).
func NewMailchimp(opts MailchimpOpts, renderer *newsletter.Renderer) (*Mailchimp, error) {
	idx := strings.LastIndex(opts.APIKey, "-")
	if idx < 0 || idx == len(opts.APIKey)-1 {
		return nil, fmt.Errorf("mailchimp api key has no datacenter suffix")
	}
	dc := opts.APIKey[idx+1:]
	return &Mailchimp{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc),
		apiKey:   opts.APIKey,
		listID:   opts.ListID,
		fromName: opts.FromName,
		replyTo:  opts.ReplyTo,
		renderer: renderer,
	}, nil
}

func (m *Mailchimp) Name() string { return "mailchimp" }

func (m *Mailchimp) Deliver(ctx context.Context, d *curate.Digest) error {
	campaignID, err := m.createCampaign(ctx, d)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	if err := m.setContent(ctx, campaignID, d); err != nil {
		return fmt.Errorf("set campaign content: %w", err)
	}
	if err := m.send(ctx, campaignID); err != nil {
		return fmt.Errorf("send campaign: %w", err)
	}
	return nil
}

func (m *Mailchimp) createCampaign(ctx context.Context, d *curate.Digest) (string, error) {
	payload := map[string]any{
		"type": "regular",
		"recipients": map[string]any{
			"list_id": m.listID,
		},
		"settings": map[string]any{
			"subject_line": m.renderer.Subject(d),
			"title":        "AI Digest " + d.GeneratedAt.Format("2006-01-02"),
			"from_name":    m.fromName,
			"reply_to":     m.replyTo,
			"auto_footer":  false,
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := m.do(ctx, http.MethodPost, "/campaigns", payload, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("campaign created without id")
	}
	return created.ID, nil
}

func (m *Mailchimp) setContent(ctx context.Context, campaignID string, d *curate.Digest) error {
	html, err := m.renderer.HTML(d)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"html":       html,
		"plain_text": m.renderer.Text(d),
	}
	return m.do(ctx, http.MethodPut, "/campaigns/"+campaignID+"/content", payload, nil)
}

func (m *Mailchimp) send(ctx context.Context, campaignID string) error {
	return m.do(ctx, http.MethodPost, "/campaigns/"+campaignID+"/actions/send", nil, nil)
}

func (m *Mailchimp) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// Mailchimp basic auth ignores the username.
	req.SetBasicAuth("anystring", m.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
