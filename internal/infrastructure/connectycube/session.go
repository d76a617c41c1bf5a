package connectycube

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"
)

// session is the short-lived token returned by POST /session. It is
// scoped to the single operation that requested it and never reused.
type session struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id,omitempty"`
}

// userCredentials selects a user-scoped session. A nil value requests an
// anonymous application-level session (used only for signup).
type userCredentials struct {
	Login    string
	Password string
}

// createSession authenticates against the platform and returns a fresh
// session token. The request is signed with HMAC-SHA1 over the sorted
// parameter string, keyed by the application auth secret.
func (c *Client) createSession(ctx context.Context, creds *userCredentials) (*session, error) {
	nonce, err := randomNonce()
	if err != nil {
		return nil, err
	}
	ts := time.Now().Unix()

	params := map[string]string{
		"application_id": c.cfg.AppID,
		"auth_key":       c.cfg.AuthKey,
		"nonce":          nonce,
		"timestamp":      fmt.Sprintf("%d", ts),
	}
	if creds != nil {
		params["user[login]"] = creds.Login
		params["user[password]"] = creds.Password
	}
	params["signature"] = c.sign(params)

	body := make(map[string]any, len(params))
	for k, v := range params {
		body[k] = v
	}

	var out struct {
		Session session `json:"session"`
	}
	if err := c.doJSON(ctx, "POST", "/session", "", body, &out, creds != nil); err != nil {
		return nil, err
	}
	if out.Session.Token == "" {
		return nil, fmt.Errorf("%w: session response without token", errRejected)
	}
	return &out.Session, nil
}

// sign computes the platform's request signature: parameters sorted by
// name, joined as key=value pairs with '&', HMAC-SHA1 with the auth
// secret, hex-encoded. The signature parameter itself is excluded.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	mac := hmac.New(sha1.New, []byte(c.cfg.AuthSecret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

func randomNonce() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	return n.String(), nil
}
