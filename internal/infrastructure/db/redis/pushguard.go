package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayTTL = time.Hour

// PushReplayGuard suppresses duplicate push notifications backed by Redis.
// Key format: push:<sender_remote_id>:<sha256 of targets+title+content>
type PushReplayGuard struct {
	client *redis.Client
}

// NewPushReplayGuard creates a PushReplayGuard wrapping the given Redis client.
func NewPushReplayGuard(client *redis.Client) *PushReplayGuard {
	return &PushReplayGuard{client: client}
}

// IsDuplicate reports whether this exact push was already delivered
// within the replay window.
func (g *PushReplayGuard) IsDuplicate(ctx context.Context, senderRemoteID int64, targetIDs []int64, title, content string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(senderRemoteID, targetIDs, title, content)).Result()
	if err != nil {
		return false, fmt.Errorf("push replay check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this push has been delivered (expires after replayTTL).
func (g *PushReplayGuard) Mark(ctx context.Context, senderRemoteID int64, targetIDs []int64, title, content string) error {
	return g.client.Set(ctx, g.key(senderRemoteID, targetIDs, title, content), "1", replayTTL).Err()
}

func (g *PushReplayGuard) key(senderRemoteID int64, targetIDs []int64, title, content string) string {
	parts := make([]string, 0, len(targetIDs)+2)
	for _, id := range targetIDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	parts = append(parts, title, content)
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("push:%d:%s", senderRemoteID, hex.EncodeToString(sum[:]))
}
