package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/gag-stock-relay/internal/common"
	"github.com/i474232898/gag-stock-relay/internal/render"
	"github.com/i474232898/gag-stock-relay/internal/transport"
)

// maxContentLength is Discord's limit for a plain message.
const maxContentLength = 2000

// fillerText keeps a filler embed valid while rendering as blank.
const fillerText = render.Blank

var errNoWebhook = errors.New("webhook url not configured")

// PublishError is returned when a message could not be delivered.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish: %v", e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

type payload struct {
	Username        string          `json:"username,omitempty"`
	Content         string          `json:"content,omitempty"`
	Embeds          []embed         `json:"embeds,omitempty"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

// Publisher posts messages to a Discord webhook.
type Publisher struct {
	webhookURL string
	username   string
	timeout    time.Duration
	client     *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewPublisher creates a Publisher for webhookURL. username may be empty to
// keep the webhook's own name.
func NewPublisher(client *http.Client, webhookURL, username string, timeout time.Duration) *Publisher {
	return &Publisher{
		webhookURL: webhookURL,
		username:   username,
		timeout:    timeout,
		client:     client,
		circuit:    transport.NewBreaker("discord"),
	}
}

// Publish delivers msg as one embed per unit.
func (p *Publisher) Publish(ctx context.Context, msg render.Message) error {
	embeds := make([]embed, 0, len(msg.Units))
	for _, u := range msg.Units {
		embeds = append(embeds, toEmbed(u))
	}
	return p.post(ctx, payload{Username: p.username, Embeds: embeds})
}

// NotifyError posts a short plain-text error notice.
func (p *Publisher) NotifyError(ctx context.Context, text string) error {
	return p.post(ctx, payload{
		Username: p.username,
		Content:  common.Truncate(text, maxContentLength),
	})
}

func (p *Publisher) post(ctx context.Context, body payload) error {
	if p.webhookURL == "" {
		return &PublishError{Err: errNoWebhook}
	}
	body.AllowedMentions.Parse = []string{}

	data, err := json.Marshal(body)
	if err != nil {
		return &PublishError{Err: err}
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	if _, err := transport.Do(ctx, p.client, p.circuit, p.timeout, buildRequest); err != nil {
		return &PublishError{Err: err}
	}
	return nil
}

func toEmbed(u render.Unit) embed {
	if u.Filler {
		return embed{Description: fillerText}
	}

	e := embed{
		Title:       u.Title,
		URL:         u.URL,
		Description: u.Description,
		Color:       u.Color,
	}
	for _, f := range u.Fields {
		e.Fields = append(e.Fields, embedField{Name: orBlank(f.Name), Value: orBlank(f.Value), Inline: f.Inline})
	}
	if u.Footer != "" {
		e.Footer = &embedFooter{Text: u.Footer}
	}
	if u.Timestamp != nil {
		e.Timestamp = u.Timestamp.UTC().Format(time.RFC3339)
	}
	if e.Title == "" && e.Description == "" && len(e.Fields) == 0 {
		e.Description = fillerText
	}
	return e
}

func orBlank(s string) string {
	if s == "" {
		return fillerText
	}
	return s
}
