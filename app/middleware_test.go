package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRecoverPanic(t *testing.T) {
	app := newOfflineApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestExtractTokenFromHeader(t *testing.T) {
	testCases := []struct {
		header   string
		expected string
	}{
		{header: "", expected: ""},
		{header: "Bearer abc", expected: "abc"},
		{header: "bearer abc", expected: "abc"},
		{header: "Basic abc", expected: ""},
		{header: "Bearer", expected: ""},
		{header: "Bearer  ", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTokenFromHeader(tc.header))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := newOfflineApplication(t)

	tests := []struct {
		name           string
		authHeader     *string
		hash           *string
		expectedStatus int
	}{
		{
			name:           "No Authentication Header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Scheme",
			authHeader:     strptr("Basic " + testAdminToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Token",
			authHeader:     strptr("Bearer nope"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Token",
			authHeader:     strptr("Bearer " + testAdminToken),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "No Hash Configured",
			authHeader:     strptr("Bearer " + testAdminToken),
			hash:           strptr(""),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := app.config.AdminTokenHash
			if tt.hash != nil {
				app.config.AdminTokenHash = *tt.hash
				t.Cleanup(func() { app.config.AdminTokenHash = hash })
			}

			handler := app.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/posts", nil)
			if tt.authHeader != nil {
				req.Header.Set("Authorization", *tt.authHeader)
			}
			res := httptest.NewRecorder()

			handler.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
			assert.Contains(t, res.Header().Values("Vary"), "Authorization")
		})
	}
}

func TestRateLimit(t *testing.T) {
	app := newOfflineApplication(t)
	app.limiter = rate.NewLimiter(rate.Every(time.Hour), 2)

	handler := app.rateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/posts", nil))
		codes = append(codes, res.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
