package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/infrastructure/logging"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	// HeaderReplayed is set on responses served from the store.
	HeaderReplayed = "Ax-Idempotent-Replay"

	// Upper bound for a handler run; a crashed request frees its id after this.
	pendingLockTTL = 60 * time.Second
	maxClockSkew   = 10 * time.Minute
	storeTimeout   = 2 * time.Second
)

type captureWriter struct {
	w      http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (r *captureWriter) Header() http.Header { return r.w.Header() }

func (r *captureWriter) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}

func (r *captureWriter) WriteHeader(status int) {
	r.status = status
	r.w.WriteHeader(status)
}

func reject(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// IdempotencyMiddleware makes mutating proposal calls safe to retry: a
// repeated Ax-Request-Id with the same body replays the first response, a
// different body is refused. 5xx outcomes are not stored so the client can
// retry them. Must run after ActorMiddleware.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return reject(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validRequestID(reqID) {
				return reject(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return reject(c, http.StatusBadRequest, err.Error())
			}
			now := time.Now().UTC()
			if !withinSkew(reqAt, now) {
				return reject(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			who, ok := actor.FromContext(req.Context())
			if !ok {
				return reject(c, http.StatusUnauthorized, "missing actor")
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := digest(body)

			key := requestKey(req.Method, req.URL.Path, who.ID, reqID)
			entry := replayEntry{
				BodyDigest: sum,
				RequestID:  reqID,
				ActorRole:  string(who.Role),
				RequestAt:  reqAt,
				StoredAt:   now,
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			claimed, err := store.claim(ctx, key, entry)
			if err != nil {
				cancel()
				logging.Get().Warn().Str("key", key).Err(err).Msg("idempotency: store unavailable")
				return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !claimed {
				cur, errLoad := store.load(ctx, key)
				cancel()
				if errLoad != nil {
					logging.Get().Warn().Str("key", key).Err(errLoad).Msg("idempotency: load entry failed")
				}
				if cur.BodyDigest != "" && cur.BodyDigest != sum {
					return reject(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				}
				if cur.replayable() {
					c.Response().Header().Set(HeaderReplayed, "true")
					ct := cur.ContentType
					if ct == "" {
						ct = echo.MIMEApplicationJSON
					}
					return c.Blob(cur.Status, ct, cur.Body)
				}
				return reject(c, http.StatusConflict, "request is already in progress")
			}
			cancel()

			rec := &captureWriter{w: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// The request context may be gone by now; the outcome is stored regardless.
			saveCtx, saveCancel := context.WithTimeout(context.Background(), storeTimeout)
			defer saveCancel()
			if rec.status >= http.StatusInternalServerError {
				if err := store.release(saveCtx, key); err != nil {
					logging.Get().Warn().Str("key", key).Err(err).Msg("idempotency: release failed")
				}
				return nil
			}
			entry.Status = rec.status
			entry.ContentType = rec.Header().Get(echo.HeaderContentType)
			entry.Body = rec.buf.Bytes()
			entry.StoredAt = time.Now().UTC()
			if err := store.complete(saveCtx, key, entry); err != nil {
				logging.Get().Warn().Str("key", key).Err(err).Msg("idempotency: save outcome failed")
			}
			return nil
		}
	}
}
