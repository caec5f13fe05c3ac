package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sharedcal/pkg/logger"

	"github.com/google/uuid"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestContentTypeValidation(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{"json body", http.MethodPost, `{}`, "application/json", http.StatusOK},
		{"json with charset", http.MethodPost, `{}`, "Application/JSON; charset=utf-8", http.StatusOK},
		{"missing content type", http.MethodPost, `{}`, "", http.StatusUnsupportedMediaType},
		{"form body", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"bodyless post", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "text/plain", http.StatusOK},
		{"delete", http.MethodDelete, "", "", http.StatusOK},
	}

	h := ContentTypeValidation(logger.Discard())(okHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest(tt.method, "/api/v1/bookings", nil)
			} else {
				req = httptest.NewRequest(tt.method, "/api/v1/bookings", strings.NewReader(tt.body))
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h := MaxRequestSize(16)(readAll)

	small := httptest.NewRecorder()
	h.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	if small.Code != http.StatusOK {
		t.Errorf("small body: expected 200, got %d", small.Code)
	}

	unknownLength := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	unknownLength.ContentLength = -1
	streamed := httptest.NewRecorder()
	h.ServeHTTP(streamed, unknownLength)
	if streamed.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("streamed body: expected 413 from the capped reader, got %d", streamed.Code)
	}

	large := httptest.NewRecorder()
	h.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	if large.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body: expected 413, got %d", large.Code)
	}
	if code := decodeError(t, large)["code"]; code != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %v", code)
	}
}

func TestRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Recovery(logger.Discard())(panicking)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body["success"] != false || body["code"] != "INTERNAL_ERROR" || body["message"] != "Internal server error" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("expected generated uuid, got %q", seen)
		}
		if w.Header().Get(RequestIDHeader) != seen {
			t.Errorf("expected response header %q, got %q", seen, w.Header().Get(RequestIDHeader))
		}
	})

	t.Run("propagated", func(t *testing.T) {
		incoming := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, incoming)
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seen != incoming {
			t.Errorf("expected %q, got %q", incoming, seen)
		}
	})

	t.Run("garbage replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if seen == "not-a-uuid" {
			t.Error("expected invalid request id to be replaced")
		}
	})
}

func TestRequestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		w.WriteHeader(http.StatusOK)
	})
	h := RequestTimeout(time.Millisecond)(slow)

	// The handler races the middleware for the response once the deadline
	// fires; the outcome must not depend on who wins.
	for i := 0; i < 200; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("run %d: expected 503, got %d", i, w.Code)
		}
		if body := decodeError(t, w); body["code"] == nil {
			t.Fatalf("run %d: expected an error body, got %v", i, body)
		}
	}
}

func TestRequestTimeout_LateWriteIsRefused(t *testing.T) {
	writeErr := make(chan error, 1)
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		_, err := w.Write([]byte("late"))
		writeErr <- err
	})

	w := httptest.NewRecorder()
	RequestTimeout(time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if err := <-writeErr; !errors.Is(err, http.ErrHandlerTimeout) {
		t.Errorf("late Write() error = %v, want ErrHandlerTimeout", err)
	}
	if w.Code != http.StatusServiceUnavailable || strings.Contains(w.Body.String(), "late") {
		t.Errorf("expected only the 503 body, got %d %q", w.Code, w.Body.String())
	}
}

func TestRequestTimeout_AnsweredBeforeDeadlineKeepsStatus(t *testing.T) {
	stall := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		<-r.Context().Done()
	})

	w := httptest.NewRecorder()
	RequestTimeout(50*time.Millisecond)(stall).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusCreated {
		t.Errorf("expected handler status 201, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected no timeout body, got %q", w.Body.String())
	}
}

func TestRequestTimeout_ClientCancelWritesNothing(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	RequestTimeout(time.Minute)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

	if w.Body.Len() != 0 {
		t.Errorf("canceled request should get no body, got %q", w.Body.String())
	}
}

func TestRequestTimeout_FastHandler(t *testing.T) {
	h := RequestTimeout(time.Second)(okHandler)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Minute, logger.Discard())
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler)

	request := func(addr, forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := request("10.0.0.1:1234", ""); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := request("10.0.0.1:5678", ""); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once burst is spent, got %d", code)
	}
	if code := request("10.0.0.2:1234", ""); code != http.StatusOK {
		t.Errorf("other client: expected 200, got %d", code)
	}
	if code := request("10.0.0.3:1234", "10.0.0.1, 192.168.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("forwarded client should share the bucket, got %d", code)
	}
}
