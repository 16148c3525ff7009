package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dms-admin-api/pkg/middleware/requestid"
)

// ErrRowNotFound is returned by Push when an update matched no sheet row.
var ErrRowNotFound = errors.New("sheets: no matching row")

// ErrNotConfigured is returned when an operation needs a sheet id or webhook
// that was not configured.
var ErrNotConfigured = errors.New("sheets: not configured")

const maxErrorBody = 512

// ConnectivityError reports a failed HTTP exchange with the spreadsheet.
// Status is zero when no response was received.
type ConnectivityError struct {
	Op     string
	Status int
	Err    error
}

func (e *ConnectivityError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("sheets: %s failed with HTTP %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("sheets: %s failed: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RemoteError is an error payload returned by the webhook script.
type RemoteError struct {
	Action  Action
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("sheets: %s rejected: %s", e.Action, e.Message)
}

// Ack is the webhook acknowledgement.
type Ack struct {
	RowNumber int
}

// Observer receives timing for every HTTP call. Outcome is "ok" or "error".
type Observer interface {
	ObserveSheetCall(operation, outcome string, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	ExportHost string
	WebhookURL string
	// TabGIDs maps tab names to the numeric gid used by the fallback export URL.
	TabGIDs    map[string]string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger
	Observer   Observer
}

// Client reads tabs through the CSV export endpoints and writes through the
// webhook. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	exportHost string
	webhookURL string
	gids       map[string]string
	logger     *zap.Logger
	observer   Observer
}

// New constructs a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gids := make(map[string]string, len(opts.TabGIDs))
	for tab, gid := range opts.TabGIDs {
		gids[tab] = gid
	}
	return &Client{
		httpClient: httpClient,
		exportHost: strings.TrimRight(opts.ExportHost, "/"),
		webhookURL: strings.TrimSpace(opts.WebhookURL),
		gids:       gids,
		logger:     logger,
		observer:   opts.Observer,
	}
}

// CanPush reports whether a webhook is configured.
func (c *Client) CanPush() bool {
	return c != nil && c.webhookURL != ""
}

// ReadTab fetches the tab as CSV from the gviz endpoint, falling back to the
// export endpoint with the tab's gid. The header row is dropped.
func (c *Client) ReadTab(ctx context.Context, sheetID, tab string) ([]Row, error) {
	if strings.TrimSpace(sheetID) == "" {
		return nil, ErrNotConfigured
	}
	primary := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.exportHost, url.PathEscape(sheetID), url.QueryEscape(tab))
	body, err := c.fetchCSV(ctx, "read_primary", primary)
	if err != nil {
		c.logger.Warn("sheet primary export failed, trying fallback",
			zap.String("sheet_id", sheetID), zap.String("tab", tab), zap.Error(err))

		gid := c.gids[tab]
		if gid == "" {
			gid = "0"
		}
		fallback := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv&gid=%s",
			c.exportHost, url.PathEscape(sheetID), url.QueryEscape(gid))
		body, err = c.fetchCSV(ctx, "read_fallback", fallback)
		if err != nil {
			return nil, err
		}
	}

	rows, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return dataRows(rows), nil
}

func (c *Client) fetchCSV(ctx context.Context, op, target string) ([]byte, error) {
	start := time.Now()
	body, err := c.fetch(ctx, op, target)
	c.observe(op, err, time.Since(start))
	return body, err
}

func (c *Client) fetch(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &ConnectivityError{Op: op, Err: err}
	}
	c.decorate(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectivityError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectivityError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ConnectivityError{Op: op, Status: resp.StatusCode, Err: errors.New(snippet(body))}
	}
	// Sheets that are not shared answer 200 with a sign-in page.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return nil, &ConnectivityError{Op: op, Status: resp.StatusCode, Err: errors.New("export returned html, is the sheet shared?")}
	}
	return body, nil
}

type webhookResponse struct {
	Success   bool   `json:"success"`
	RowNumber int    `json:"rowNumber,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Push sends a single write to the webhook. It never retries.
func (c *Client) Push(ctx context.Context, sheetID string, req Request) (Ack, error) {
	if !c.CanPush() || strings.TrimSpace(sheetID) == "" {
		return Ack{}, ErrNotConfigured
	}
	env, err := envelopeFor(sheetID, req)
	if err != nil {
		return Ack{}, err
	}

	start := time.Now()
	ack, err := c.post(ctx, env)
	c.observe("push_"+string(env.Action), err, time.Since(start))
	return ack, err
}

func (c *Client) post(ctx context.Context, env webhookEnvelope) (Ack, error) {
	op := "push " + string(env.Action)
	payload, err := json.Marshal(env)
	if err != nil {
		return Ack{}, fmt.Errorf("sheets: encode %s: %w", env.Action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return Ack{}, &ConnectivityError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Ack{}, &ConnectivityError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Ack{}, &ConnectivityError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Ack{}, &ConnectivityError{Op: op, Status: resp.StatusCode, Err: errors.New(snippet(body))}
	}

	var out webhookResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Ack{}, &ConnectivityError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !out.Success {
		if strings.Contains(strings.ToLower(out.Error), "not found") {
			return Ack{}, fmt.Errorf("%w: %s", ErrRowNotFound, out.Error)
		}
		msg := out.Error
		if msg == "" {
			msg = "unknown error"
		}
		return Ack{}, &RemoteError{Action: env.Action, Message: msg}
	}
	return Ack{RowNumber: out.RowNumber}, nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
}

func (c *Client) observe(op string, err error, d time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.observer.ObserveSheetCall(op, outcome, d)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	if s == "" {
		return "empty response"
	}
	return s
}
