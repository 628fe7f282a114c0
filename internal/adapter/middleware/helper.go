package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idemp:bankeu:"

// requestKey scopes a request id to the concrete URL and actor, so the same
// id sent for two different proposals never collides.
func requestKey(method, urlPath, actorID, requestID string) string {
	return keyPrefix + strings.ToLower(method) + ":" + urlPath + ":" + actorID + ":" + requestID
}

func digest(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// Request ids are either lowercase UUIDs or the 32-hex ids pkg/id emits.
var reRequestID = regexp.MustCompile(`^(?:[a-f0-9]{32}|[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12})$`)

func validRequestID(id string) bool {
	return reRequestID.MatchString(strings.TrimSpace(id))
}

var errRequestAtFormat = errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339 with
// an explicit zone. Naive local timestamps are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing %s", HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errRequestAtFormat
}

func withinSkew(at, now time.Time) bool {
	return !at.Before(now.Add(-maxClockSkew)) && !at.After(now.Add(maxClockSkew))
}

type entryState string

const (
	statePending entryState = "pending"
	stateDone    entryState = "done"
)

// replayEntry is what the store keeps per request key.
type replayEntry struct {
	State       entryState `json:"state"`
	Status      int        `json:"status,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	Body        []byte     `json:"body,omitempty"`
	BodyDigest  string     `json:"body_digest"`
	RequestID   string     `json:"request_id"`
	ActorRole   string     `json:"actor_role"`
	RequestAt   time.Time  `json:"request_at"`
	StoredAt    time.Time  `json:"stored_at"`
}

func (e replayEntry) replayable() bool {
	return e.State == stateDone && e.Status != 0 && len(e.Body) > 0
}

// replayStore keeps request outcomes in Redis. A pending entry is a short
// lock; a done entry lives for ttl and is replayed verbatim.
type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s replayStore) claim(ctx context.Context, key string, e replayEntry) (bool, error) {
	e.State = statePending
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, pendingLockTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, fmt.Errorf("decode replay entry: %w", err)
	}
	return e, nil
}

func (s replayStore) complete(ctx context.Context, key string, e replayEntry) error {
	e.State = stateDone
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

// release drops the lock so a retry with the same id runs the handler again.
func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
