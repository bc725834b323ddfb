// Package mirror forwards a subset of each day's worklog to the secondary
// spreadsheet sink. The sink is strictly best-effort: callers log failures
// and carry on, they never fail a save over the mirror.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"daily-worklog/internal/daylog"
)

// ErrNotConfigured is returned when no sink URL is set.
var ErrNotConfigured = errors.New("mirror sink not configured")

// Payload is the shape the spreadsheet webhook expects: an unambiguous
// calendar date plus clock-time strings (empty when the slot is unset).
type Payload struct {
	DateKey      string `json:"dateKey"`
	AmIn         string `json:"amIn"`
	AmOut        string `json:"amOut"`
	PmIn         string `json:"pmIn"`
	PmOut        string `json:"pmOut"`
	Activity     string `json:"activity"`
	Accomplished string `json:"accomplished"`
}

// Response is the sink's reply. Result is a discriminator ("ok",
// "not_found", ...); Logs carries diagnostic lines from the remote script.
// Neither surfaces past the log output.
type Response struct {
	Result string   `json:"result"`
	Logs   []string `json:"logs,omitempty"`
}

// Client posts worklog payloads to the spreadsheet webhook.
type Client struct {
	url        string
	httpClient *http.Client
	clockFmt   string
	logger     *slog.Logger
}

// clockLayout picks the clock rendering for a BCP-47 locale tag. English
// locales get 12-hour clock strings, everything else 24-hour. An unparsable
// tag falls back to 12-hour, matching the sink's historical format.
func clockLayout(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return "3:04 PM"
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return "3:04 PM"
	}
	return "15:04"
}

func NewClient(url string, timeout time.Duration, locale string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		clockFmt:   clockLayout(locale),
		logger:     slog.With("component", "mirror"),
	}
}

// Configured reports whether a sink URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// FormatClock renders a punch instant as a localized clock string, or ""
// for an unset slot.
func (c *Client) FormatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(c.clockFmt)
}

// BuildPayload derives the mirror row from a merged entry.
func (c *Client) BuildPayload(day daylog.DayKey, e daylog.Entry) Payload {
	return Payload{
		DateKey:      day.String(),
		AmIn:         c.FormatClock(e.AmIn),
		AmOut:        c.FormatClock(e.AmOut),
		PmIn:         c.FormatClock(e.PmIn),
		PmOut:        c.FormatClock(e.PmOut),
		Activity:     e.Activity,
		Accomplished: e.Accomplished,
	}
}

// Send posts one payload to the sink. The remote diagnostic log list is
// written to slog only. A "not_found" result (the sheet has no row for the
// date) is reported as an error so the caller can mark the channel, but it
// carries no more weight than any other mirror failure.
func (c *Client) Send(ctx context.Context, payload Payload) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mirror payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating mirror request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to mirror sink: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mirror sink returned status %d", resp.StatusCode)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding mirror response: %w", err)
	}

	for _, line := range result.Logs {
		c.logger.Debug("Mirror sink log", "date_key", payload.DateKey, "line", line)
	}

	if result.Result == "not_found" {
		c.logger.Warn("Date not found in sheet", "date_key", payload.DateKey)
		return fmt.Errorf("mirror sink has no row for %s", payload.DateKey)
	}

	c.logger.Debug("Mirror write accepted", "date_key", payload.DateKey, "result", result.Result)
	return nil
}
