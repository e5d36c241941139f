package handoff

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Generator endpoints, relative to the base URL.
const (
	submitPath   = "/jarch/generate-project"
	streamPath   = "/jarch/generate-project/stream/"
	downloadPath = "/jarch/generate-project/download/"
)

// RequestIDHeader carries a fresh UUID on every request for server-side
// log correlation.
const RequestIDHeader = "X-Request-Id"

// Terminal stream events. Older servers send zipReady.
const (
	EventLog          = "log"
	EventArchiveReady = "archiveReady"
	eventZipReady     = "zipReady"
)

// ErrStreamEnded is returned when the event stream closes before the
// archive is ready.
var ErrStreamEnded = errors.New("generation stream ended before archive was ready")

// StatusError is a non-2xx response from the generator. The body is kept
// verbatim; it is not interpreted.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Body)
}

// LogEvent is one progress message from the generator.
type LogEvent struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Client talks to the project generation service.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithToken sends a bearer token with every request.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient returns a client for the service at baseURL. Requests are bounded
// only by their context.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// Submit uploads both documents and returns the generation id.
func (c *Client) Submit(ctx context.Context, b Bundle) (string, error) {
	body, ct, err := b.Multipart(nil)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, submitPath, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", ct)
	resp, err := c.do(req, "submit")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	// The id is numeric on some servers and a string on others.
	var out struct {
		ID any `json:"id"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return "", fmt.Errorf("submit: decode response: %w", err)
	}
	id := ""
	if out.ID != nil {
		id = fmt.Sprint(out.ID)
	}
	if id == "" {
		return "", errors.New("submit: response carries no id")
	}
	c.logger.Debug("generation submitted", "id", id)
	return id, nil
}

// Stream consumes the server-sent event stream for id, calling fn for every
// log event in order. It returns nil once the archive is ready, the error
// from fn if fn fails, or ErrStreamEnded if the stream closes early.
func (c *Client) Stream(ctx context.Context, id string, fn func(LogEvent) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, streamPath+id, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.do(req, "stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	var event string
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			done, err := c.dispatch(event, data.String(), fn)
			if err != nil || done {
				return err
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	if done, err := c.dispatch(event, data.String(), fn); err != nil || done {
		return err
	}
	return ErrStreamEnded
}

func (c *Client) dispatch(event, data string, fn func(LogEvent) error) (bool, error) {
	switch event {
	case EventArchiveReady, eventZipReady:
		c.logger.Debug("archive ready")
		return true, nil
	case EventLog:
		var ev LogEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			ev = LogEvent{Level: "ERROR", Message: "malformed log event: " + err.Error()}
		}
		return false, fn(ev)
	}
	return false, nil
}

// Download copies the generated archive for id into w.
func (c *Client) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, downloadPath+id, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(req, "download")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download: %w", err)
	}
	c.logger.Debug("archive downloaded", "id", id, "bytes", n)
	return n, nil
}
