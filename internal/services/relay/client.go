// Package relay sends chat text to the external bot backend. The backend is
// only reachable over a private overlay network, so the client supports two
// transports: a direct HTTP call, and a curl subprocess routed through a
// local forward-proxy socket for deployments where the Go process has no
// route of its own into the overlay.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"time"

	"github.com/chatrelay/chatrelay-backend/internal/httperr"
)

// Caller is the interface consumed by the chat service; tests substitute a
// stub.
type Caller interface {
	Configured() bool
	Send(ctx context.Context, anonUserID, threadID, text string) (string, error)
}

// SecretHeader carries the shared secret on every relay request.
const SecretHeader = "X-Relay-Secret"

const defaultTimeout = 60 * time.Second

// request is the wire envelope sent to the bot backend.
type request struct {
	AnonUserID string `json:"anonUserId"`
	ThreadID   string `json:"threadId"`
	Text       string `json:"text"`
}

// response is the wire envelope received from the bot backend. Reply may be
// absent even on success; it is persisted verbatim either way.
type response struct {
	OK      bool   `json:"ok"`
	Reply   string `json:"reply"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Client struct {
	endpoint   string
	secret     string
	proxyURL   string // non-empty selects the curl subprocess transport
	httpClient *http.Client
}

var _ Caller = (*Client)(nil)

// NewClient builds a relay client. proxyURL, when set, is a forward-proxy
// address (e.g. socks5h://127.0.0.1:1055 for the overlay tunnel daemon) and
// selects the curl subprocess transport. Empty endpoint or secret leaves the
// client unconfigured; chat requests then fail with a configuration error
// before anything is written.
func NewClient(endpoint, secret, proxyURL string) *Client {
	return &Client{
		endpoint:   endpoint,
		secret:     secret,
		proxyURL:   proxyURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Configured() bool {
	return c.endpoint != "" && c.secret != ""
}

// Send posts the chat text and returns the bot's reply. Any non-success
// outcome (transport failure, non-2xx status, ok:false, malformed body)
// comes back as a relay error with best-effort detail from the body.
func (c *Client) Send(ctx context.Context, anonUserID, threadID, text string) (string, error) {
	if !c.Configured() {
		return "", httperr.Config("bot backend not configured")
	}

	payload, err := json.Marshal(request{AnonUserID: anonUserID, ThreadID: threadID, Text: text})
	if err != nil {
		return "", httperr.Relay("bot error", err)
	}

	var body []byte
	var status int
	if c.proxyURL != "" {
		body, status, err = c.sendViaProxy(ctx, payload)
	} else {
		body, status, err = c.sendDirect(ctx, payload)
	}
	if err != nil {
		log.Printf("ERROR [Relay] transport failure: %v", err)
		return "", httperr.Relay("bot error: backend unreachable", err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Printf("ERROR [Relay] malformed reply body (status %d): %.200s", status, body)
		return "", httperr.Relay("bot error: malformed reply", err)
	}

	if status < 200 || status >= 300 || !resp.OK {
		detail := resp.Error
		if detail == "" {
			detail = resp.Message
		}
		msg := "bot error"
		if detail != "" {
			msg = fmt.Sprintf("bot error: %s", detail)
		}
		log.Printf("ERROR [Relay] bot backend returned failure (status %d): %s", status, detail)
		return "", httperr.Relay(msg, nil)
	}

	return resp.Reply, nil
}

func (c *Client) sendDirect(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretHeader, c.secret)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("relay request failed: %w", err)
	}
	defer res.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return nil, res.StatusCode, fmt.Errorf("failed to read relay response: %w", err)
	}
	return buf.Bytes(), res.StatusCode, nil
}

// sendViaProxy shells out to curl with the forward proxy. curl prints
// the body followed by the status code on its own line (-w), which keeps the
// parsing trivial.
func (c *Client) sendViaProxy(ctx context.Context, payload []byte) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	args := []string{
		"-sS",
		"--max-time", fmt.Sprintf("%d", int(defaultTimeout.Seconds())),
		"--proxy", c.proxyURL,
		"-X", "POST",
		"-H", "Content-Type: application/json",
		"-H", SecretHeader + ": " + c.secret,
		"--data-binary", "@-",
		"-w", "\n%{http_code}",
		c.endpoint,
	}
	cmd := exec.CommandContext(ctx, "curl", args...)
	cmd.Stdin = bytes.NewReader(payload)

	out, err := cmd.Output()
	if err != nil {
		return nil, 0, fmt.Errorf("curl transport failed: %w", err)
	}

	idx := bytes.LastIndexByte(out, '\n')
	if idx < 0 {
		return nil, 0, fmt.Errorf("curl transport produced no status line")
	}
	var status int
	if _, err := fmt.Sscanf(string(out[idx+1:]), "%d", &status); err != nil {
		return nil, 0, fmt.Errorf("curl transport produced unparseable status %q", out[idx+1:])
	}
	return out[:idx], status, nil
}
