package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zentinela/blog/internal/blogservice"
	"github.com/zentinela/blog/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const testAdminToken = "test-admin-token"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func testConfig(t *testing.T) *common.Config {
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	return &common.Config{
		Port:           "4000",
		Environment:    "test",
		Version:        "1.0.0",
		AdminTokenHash: string(hash),
		ReadPolicy:     "swallow",
		CacheTTL:       time.Minute,
	}
}

func newApplication(t *testing.T, db *sql.DB) *application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fallback, err := blogservice.NewDefaultFallbackSource(common.NewCache(common.NoExpiration, 0))
	if err != nil {
		t.Fatal(err)
	}

	return &application{
		config:      testConfig(t),
		logger:      logger,
		blogService: blogservice.NewBlogService(db, fallback, nil, blogservice.SwallowReadErrors, logger),
		cache:       common.NewCache(time.Minute, 2*time.Minute),
		limiter:     rate.NewLimiter(rate.Inf, 0),
	}
}

// newTestApplication is backed by a migrated Postgres container.
func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	return newApplication(t, db), db
}

// offlineDB returns a handle to a database that refuses connections.
func offlineDB(t *testing.T) *sql.DB {
	db, err := sql.Open("postgres", "host=127.0.0.1 port=1 user=nobody dbname=none sslmode=disable connect_timeout=1")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// newOfflineApplication cannot reach its database, so every read is served by the
// fallback catalog.
func newOfflineApplication(t *testing.T) *application {
	return newApplication(t, offlineDB(t))
}

func (ts *testServer) do(t *testing.T, method, path string, token *string, payload any) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) post(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) patch(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPatch, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}
