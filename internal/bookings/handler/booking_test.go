package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sharedcal/internal/bookings/repository"
	"sharedcal/internal/bookings/service"
	"sharedcal/internal/bookings/validator"
	"sharedcal/pkg/config"
	"sharedcal/pkg/logger"
	"sharedcal/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type errorBody struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

type dayBody struct {
	Data model.DayAgenda `json:"data"`
}

func newRouter(t *testing.T, seed []model.Booking) (*httprouter.Router, repository.BookingRepository) {
	t.Helper()
	cfg := &config.Config{
		Log:              logger.Discard(),
		Location:         time.UTC,
		TeamMembers:      []string{"Alice", "Bob"},
		OtherPersonLabel: "other",
	}
	repo := repository.NewMemoryBookingRepository(seed)
	svc := service.NewBookingService(
		repository.NewSerialized(repo, cfg.Log),
		validator.NewBookingValidator(cfg.Log),
		nil,
		cfg,
	)

	router := httprouter.New()
	NewBookingHandler(svc, cfg.Log).RegisterRoutes(router)
	return router, repo
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode body %q: %v", w.Body.String(), err)
	}
	return v
}

const morning = `{"name":"Alice","purpose":"Standup","date":"2024-01-01","start":"09:00","end":"10:00"}`

func TestCreate(t *testing.T) {
	router, repo := newRouter(t, nil)

	w := do(t, router, http.MethodPost, "/api/v1/bookings", morning)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	result := decode[model.ActionResult](t, w)
	if !result.Success || result.Booking == nil {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Booking.ID != 1 || result.Booking.Status != model.StatusBooked {
		t.Errorf("expected id 1 BOOKED, got %d %s", result.Booking.ID, result.Booking.Status)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	stored, _ := repo.Load(context.Background())
	if len(stored) != 1 {
		t.Errorf("expected 1 stored booking, got %d", len(stored))
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "overlapping window",
			body:       `{"name":"Bob","date":"2024-01-01","start":"09:30","end":"10:30"}`,
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "end before start",
			body:       `{"name":"Bob","date":"2024-01-02","start":"10:00","end":"09:00"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "end",
		},
		{
			name:       "bad date",
			body:       `{"name":"Bob","date":"01/02/2024","start":"09:00","end":"10:00"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "date",
		},
		{
			name:       "unknown person",
			body:       `{"person":"Mallory","date":"2024-01-02","start":"09:00","end":"10:00"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "person",
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t, nil)
			do(t, router, http.MethodPost, "/api/v1/bookings", morning)

			w := do(t, router, http.MethodPost, "/api/v1/bookings", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			body := decode[errorBody](t, w)
			if body.Success {
				t.Error("expected success=false")
			}
			if body.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Code)
			}
			if tt.wantField != "" {
				if _, ok := body.Details[tt.wantField]; !ok {
					t.Errorf("expected details for %q, got %v", tt.wantField, body.Details)
				}
			}

			stored, _ := repo.Load(context.Background())
			if len(stored) != 1 {
				t.Errorf("rejected create must not store, got %d bookings", len(stored))
			}
		})
	}
}

func TestCheckInOut_Flow(t *testing.T) {
	router, _ := newRouter(t, nil)
	do(t, router, http.MethodPost, "/api/v1/bookings", morning)
	do(t, router, http.MethodPost, "/api/v1/bookings", `{"name":"Bob","date":"2024-01-01","start":"10:00","end":"11:00"}`)

	if w := do(t, router, http.MethodPost, "/api/v1/bookings/id/1/checkin", ""); w.Code != http.StatusOK {
		t.Fatalf("check in 1: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w := do(t, router, http.MethodPost, "/api/v1/bookings/id/2/checkin", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("check in 2: expected 409, got %d", w.Code)
	}
	body := decode[errorBody](t, w)
	if body.Code != "ALREADY_IN_USE" {
		t.Errorf("expected ALREADY_IN_USE, got %s", body.Code)
	}
	if body.Details["name"] != "Alice" {
		t.Errorf("expected active holder Alice in details, got %v", body.Details)
	}

	w = do(t, router, http.MethodGet, "/api/v1/bookings/active", "")
	active := decode[struct {
		Data *model.Booking `json:"data"`
	}](t, w)
	if active.Data == nil || active.Data.ID != 1 {
		t.Fatalf("expected booking 1 active, got %+v", active.Data)
	}

	if w := do(t, router, http.MethodPost, "/api/v1/bookings/id/1/checkout", ""); w.Code != http.StatusOK {
		t.Fatalf("check out 1: expected 200, got %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/api/v1/bookings/id/2/checkin", ""); w.Code != http.StatusOK {
		t.Fatalf("check in 2 after release: expected 200, got %d", w.Code)
	}

	day := decode[dayBody](t, do(t, router, http.MethodGet, "/api/v1/bookings?date=2024-01-01", ""))
	if len(day.Data.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(day.Data.Entries))
	}
	if day.Data.Entries[0].Status != model.StatusCheckedOut || day.Data.Entries[1].Status != model.StatusCheckedIn {
		t.Errorf("unexpected statuses: %s, %s", day.Data.Entries[0].Status, day.Data.Entries[1].Status)
	}
}

func TestIDErrors(t *testing.T) {
	router, _ := newRouter(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"non numeric", http.MethodPost, "/api/v1/bookings/id/abc/checkin", http.StatusBadRequest},
		{"zero", http.MethodPost, "/api/v1/bookings/id/0/checkout", http.StatusBadRequest},
		{"negative", http.MethodDelete, "/api/v1/bookings/id/-3", http.StatusBadRequest},
		{"unknown checkin", http.MethodPost, "/api/v1/bookings/id/42/checkin", http.StatusNotFound},
		{"unknown checkout", http.MethodPost, "/api/v1/bookings/id/42/checkout", http.StatusNotFound},
		{"unknown delete", http.MethodDelete, "/api/v1/bookings/id/42", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDelete(t *testing.T) {
	router, repo := newRouter(t, nil)
	do(t, router, http.MethodPost, "/api/v1/bookings", morning)

	w := do(t, router, http.MethodDelete, "/api/v1/bookings/id/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	result := decode[model.ActionResult](t, w)
	if result.Booking == nil || result.Booking.Name != "Alice" {
		t.Errorf("expected removed booking in response, got %+v", result.Booking)
	}

	stored, _ := repo.Load(context.Background())
	if len(stored) != 0 {
		t.Errorf("expected empty store, got %d", len(stored))
	}
}

func TestList(t *testing.T) {
	seed := []model.Booking{
		{ID: 1, Name: "Late", Date: model.MustParseDate("2024-01-01"), Start: model.MustParseClock("14:00"), End: model.MustParseClock("15:00"), Status: model.StatusBooked},
		{ID: 2, Name: "Other day", Date: model.MustParseDate("2024-01-02"), Start: model.MustParseClock("09:00"), End: model.MustParseClock("10:00"), Status: model.StatusBooked},
		{ID: 3, Name: "Early", Date: model.MustParseDate("2024-01-01"), Start: model.MustParseClock("08:00"), End: model.MustParseClock("09:00"), Status: model.StatusBooked},
	}
	router, _ := newRouter(t, seed)

	w := do(t, router, http.MethodGet, "/api/v1/bookings?date=2024-01-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	day := decode[dayBody](t, w).Data
	if day.Date.String() != "2024-01-01" {
		t.Errorf("expected date 2024-01-01, got %s", day.Date)
	}
	if len(day.Entries) != 2 || day.Entries[0].Name != "Early" || day.Entries[1].Name != "Late" {
		t.Fatalf("expected Early then Late, got %+v", day.Entries)
	}
	if !day.Entries[0].CanCheckIn {
		t.Error("expected BOOKED entry to offer check in")
	}

	if w := do(t, router, http.MethodGet, "/api/v1/bookings?date=tomorrow", ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid date: expected 400, got %d", w.Code)
	}
}

func TestTeam(t *testing.T) {
	router, _ := newRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/v1/team", "")
	team := decode[struct {
		Data model.Team `json:"data"`
	}](t, w).Data

	if len(team.Members) != 2 || team.Members[0] != "Alice" || team.OtherLabel != "other" {
		t.Errorf("unexpected team: %+v", team)
	}
}

func TestActive_None(t *testing.T) {
	router, _ := newRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/v1/bookings/active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"data":null`) {
		t.Errorf("expected null data, got %s", w.Body.String())
	}
}
