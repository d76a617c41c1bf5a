// Package connectycube implements the outbound gateway to the
// ConnectyCube REST API: per-operation session establishment plus the
// identity and chat operations the sync layer needs. The platform is
// treated as a black box over the network; every failure is classified
// into the transport sentinels in the domain package.
package connectycube

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpoint/chat-backend/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Aliases keep classification local; callers match with errors.Is on the
// domain sentinels.
var (
	errUnavailable = domain.ErrRemoteUnavailable
	errAuth        = domain.ErrRemoteAuth
	errRejected    = domain.ErrRemoteRejected
)

// Config carries the application-level platform credentials.
type Config struct {
	Endpoint   string
	AppID      string
	AuthKey    string
	AuthSecret string
	Timeout    time.Duration
}

// Client talks to the ConnectyCube REST API. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a Client with an explicit per-call timeout. A default
// timeout is applied when none is provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Signup registers a new remote account under an anonymous application
// session and returns the platform-assigned id.
func (c *Client) Signup(ctx context.Context, name, email, password string) (int64, error) {
	sess, err := c.createSession(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("signup session: %w", err)
	}

	body := map[string]any{
		"user": map[string]any{
			"login":     email,
			"email":     email,
			"password":  password,
			"full_name": name,
		},
	}
	var out struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/users/sign_up", sess.Token, body, &out, false); err != nil {
		return 0, fmt.Errorf("signup: %w", err)
	}
	if out.User.ID == 0 {
		return 0, fmt.Errorf("signup: %w: response without user id", errRejected)
	}

	c.log.Info().Int64("remote_id", out.User.ID).Msg("remote account created")
	return out.User.ID, nil
}

// DeleteAccount removes the remote account, authenticated as the account
// being deleted.
func (c *Client) DeleteAccount(ctx context.Context, remoteID int64, login, password string) error {
	sess, err := c.createSession(ctx, &userCredentials{Login: login, Password: password})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	path := "/users/" + strconv.FormatInt(remoteID, 10)
	if err := c.doJSON(ctx, http.MethodDelete, path, sess.Token, nil, nil, false); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	c.log.Info().Int64("remote_id", remoteID).Msg("remote account deleted")
	return nil
}

// UpdateEmail changes the remote account's login and email in one call.
func (c *Client) UpdateEmail(ctx context.Context, remoteID int64, login, password, newEmail string) error {
	sess, err := c.createSession(ctx, &userCredentials{Login: login, Password: password})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	body := map[string]any{
		"user": map[string]any{
			"login": newEmail,
			"email": newEmail,
		},
	}
	path := "/users/" + strconv.FormatInt(remoteID, 10)
	if err := c.doJSON(ctx, http.MethodPut, path, sess.Token, body, nil, false); err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	return nil
}

// CreateDialog opens a private (two-party) dialog with the peer account,
// initiated by the authenticated user.
func (c *Client) CreateDialog(ctx context.Context, login, password string, peerRemoteID int64) (string, error) {
	sess, err := c.createSession(ctx, &userCredentials{Login: login, Password: password})
	if err != nil {
		return "", fmt.Errorf("dialog session: %w", err)
	}

	body := map[string]any{
		"type":          3, // private dialog
		"occupants_ids": []int64{peerRemoteID},
	}
	var out struct {
		ID string `json:"_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/chat/Dialog", sess.Token, body, &out, false); err != nil {
		return "", fmt.Errorf("create dialog: %w", err)
	}
	return out.ID, nil
}

// SendPush delivers a push event to the target accounts. The payload is
// serialized to JSON and base64-encoded per the platform's event API.
func (c *Client) SendPush(ctx context.Context, login, password string, targetIDs []int64, title, content string) error {
	sess, err := c.createSession(ctx, &userCredentials{Login: login, Password: password})
	if err != nil {
		return fmt.Errorf("push session: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return fmt.Errorf("push payload: %w", err)
	}

	ids := make([]string, len(targetIDs))
	for i, id := range targetIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	body := map[string]any{
		"event": map[string]any{
			"notification_type": "push",
			"environment":       "production",
			"user":              map[string]any{"ids": strings.Join(ids, ",")},
			"message":           base64.StdEncoding.EncodeToString(payload),
		},
	}
	if err := c.doJSON(ctx, http.MethodPost, "/events", sess.Token, body, nil, false); err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	return nil
}

// apiError is the platform's error envelope. The errors field shape
// varies by endpoint, so it is kept raw and stringified for messages.
type apiError struct {
	Errors json.RawMessage `json:"errors"`
}

// doJSON performs one request against the platform and classifies the
// outcome: network failures and 5xx map to ErrRemoteUnavailable,
// credential rejection on user session creation (userAuth) maps to
// ErrRemoteAuth, any other non-2xx response maps to ErrRemoteRejected.
func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any, userAuth bool) error {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.Endpoint, "/")+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("CB-Token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", errUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", errUnavailable, resp.StatusCode)
	case userAuth && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusUnprocessableEntity):
		return fmt.Errorf("%w: status %d", errAuth, resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d: %s", errRejected, resp.StatusCode, platformMessage(raw))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", errRejected, err)
		}
	}
	return nil
}

func platformMessage(raw []byte) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil && len(e.Errors) > 0 {
		return string(e.Errors)
	}
	if len(raw) > 256 {
		raw = raw[:256]
	}
	return string(raw)
}
