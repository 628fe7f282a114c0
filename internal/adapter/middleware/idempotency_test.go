package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(ActorMiddleware(), IdempotencyMiddleware(rdb, ttl))
	e.POST("/proposals", handler)
	e.GET("/proposals", handler) // for non-mutating bypass test
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

// simple handler to exercise respRecorder capture & saveFinal
func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func Test_BypassOnGET_NoRequestHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	hdr := map[string]string{HeaderActorID: "desa-1", HeaderActorRole: "village", HeaderVillageID: "V"}
	rec := doReq(t, e, http.MethodGet, "/proposals", nil, hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	// base headers (valid) to start from
	valid := map[string]string{
		"Ax-Request-Id": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", // 32-hex (valid)
		"Ax-Request-At": time.Now().UTC().Format(time.RFC3339),
		"Ax-Actor-Id":   "desa-1",
		"Ax-Actor-Role": "village",
		"Ax-Village-Id": "V",
	}

	// missing Ax-Request-Id
	h := map[string]string{
		"Ax-Request-At": valid["Ax-Request-At"],
		"Ax-Actor-Id":   valid["Ax-Actor-Id"],
		"Ax-Actor-Role": valid["Ax-Actor-Role"],
		"Ax-Village-Id": valid["Ax-Village-Id"],
	}
	rec := doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing Ax-Request-Id => want 400, got %d", rec.Code)
	}

	// invalid Ax-Request-Id
	h = map[string]string{
		"Ax-Request-Id": "NOT-VALID",
		"Ax-Request-At": valid["Ax-Request-At"],
		"Ax-Actor-Id":   valid["Ax-Actor-Id"],
		"Ax-Actor-Role": valid["Ax-Actor-Role"],
		"Ax-Village-Id": valid["Ax-Village-Id"],
	}
	rec = doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid Ax-Request-Id => want 400, got %d", rec.Code)
	}

	// invalid Ax-Request-At format
	h = map[string]string{
		"Ax-Request-Id": valid["Ax-Request-Id"],
		"Ax-Request-At": "not-a-time",
		"Ax-Actor-Id":   valid["Ax-Actor-Id"],
		"Ax-Actor-Role": valid["Ax-Actor-Role"],
		"Ax-Village-Id": valid["Ax-Village-Id"],
	}
	rec = doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid Ax-Request-At => want 400, got %d", rec.Code)
	}

	// Ax-Request-At too skewed (past)
	h = map[string]string{
		"Ax-Request-Id": valid["Ax-Request-Id"],
		"Ax-Request-At": time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		"Ax-Actor-Id":   valid["Ax-Actor-Id"],
		"Ax-Actor-Role": valid["Ax-Actor-Role"],
		"Ax-Village-Id": valid["Ax-Village-Id"],
	}
	rec = doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Ax-Request-At skew => want 400, got %d", rec.Code)
	}

	// missing actor
	h = map[string]string{
		"Ax-Request-Id": valid["Ax-Request-Id"],
		"Ax-Request-At": valid["Ax-Request-At"],
	}
	rec = doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing Ax-Actor-Id => want 401, got %d", rec.Code)
	}

	// unknown role
	h = map[string]string{
		"Ax-Request-Id": valid["Ax-Request-Id"],
		"Ax-Request-At": valid["Ax-Request-At"],
		"Ax-Actor-Id":   valid["Ax-Actor-Id"],
		"Ax-Actor-Role": "borrower",
	}
	rec = doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid Ax-Actor-Role => want 400, got %d", rec.Code)
	}

	// village actor without village
	h = map[string]string{
		"Ax-Request-Id": valid["Ax-Request-Id"],
		"Ax-Request-At": valid["Ax-Request-At"],
		"Ax-Actor-Id":   valid["Ax-Actor-Id"],
		"Ax-Actor-Role": "village",
	}
	rec = doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]int{"x": 1}), h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing Ax-Village-Id => want 400, got %d", rec.Code)
	}
}

func validHeaders(reqID string) map[string]string {
	return map[string]string{
		HeaderRequestID: reqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
		HeaderActorID:   "desa-1",
		HeaderActorRole: "village",
		HeaderVillageID: "V",
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	calls := 0
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return okCreatedHandler(c)
	})

	h := validHeaders("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	rec1 := doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]any{"title": "Village road"}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}
	if rec1.Header().Get(HeaderReplayed) != "" {
		t.Fatal("first response must not be marked as replay")
	}

	rec2 := doReq(t, e, http.MethodPost, "/proposals", mkJSONBody(t, map[string]any{"title": "Village road"}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get(HeaderReplayed) != "true" {
		t.Fatal("replayed response must carry the replay header")
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func Test_SameRequestID_DifferentProposals(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := echo.New()
	e.Use(ActorMiddleware(), IdempotencyMiddleware(rdb, time.Minute))
	e.POST("/proposals/:id/decisions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"proposal_id": c.Param("id")})
	})

	h := validHeaders("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	h[HeaderActorRole] = "department"
	delete(h, HeaderVillageID)
	body := `{"decision":"approved"}`

	rec1 := doReq(t, e, http.MethodPost, "/proposals/p1/decisions", bytes.NewReader([]byte(body)), h)
	rec2 := doReq(t, e, http.MethodPost, "/proposals/p2/decisions", bytes.NewReader([]byte(body)), h)
	if rec1.Code != http.StatusOK || rec2.Code != http.StatusOK {
		t.Fatalf("codes = %d, %d", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() == rec2.Body.String() {
		t.Fatalf("second proposal got the first one's replay: %s", rec2.Body.String())
	}
}

func Test_ServerErrorIsNotStored(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		if calls == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db down"})
		}
		return okCreatedHandler(c)
	})

	h := validHeaders("cccccccccccccccccccccccccccccccc")
	rec := doReq(t, e, http.MethodPost, "/proposals", bytes.NewReader([]byte(`{}`)), h)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("first => want 500, got %d", rec.Code)
	}
	rec = doReq(t, e, http.MethodPost, "/proposals", bytes.NewReader([]byte(`{}`)), h)
	if rec.Code != http.StatusCreated {
		t.Fatalf("retry after 500 must run the handler again, got %d", rec.Code)
	}
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	body := []byte(`{"x":1}`)
	store := replayStore{rdb: rdb, ttl: time.Minute}
	key := requestKey(http.MethodPost, "/proposals", "desa-1", reqID)
	if ok, err := store.claim(context.Background(), key, replayEntry{BodyDigest: digest(body), RequestID: reqID}); err != nil || !ok {
		t.Fatalf("seed pending failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/proposals", bytes.NewReader(body), validHeaders(reqID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	store := replayStore{rdb: rdb, ttl: 5 * time.Minute}
	key := requestKey(http.MethodPost, "/proposals", "desa-1", reqID)
	done := replayEntry{
		Status:     http.StatusCreated,
		Body:       []byte(`{"ok":true}`),
		BodyDigest: digest([]byte(`{"x":1}`)),
		RequestID:  reqID,
	}
	if err := store.complete(context.Background(), key, done); err != nil {
		t.Fatalf("seed done failed: %v", err)
	}

	rec := doReq(t, e, http.MethodPost, "/proposals", bytes.NewReader([]byte(`{"x":2}`)), validHeaders(reqID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	e := setupEcho(rdb, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, "/proposals", bytes.NewReader([]byte(`{}`)), validHeaders("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
