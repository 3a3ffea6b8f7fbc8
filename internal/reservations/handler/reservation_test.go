package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc   func(ctx context.Context, r *model.Reservation) (*model.Reservation, error)
	updateFunc   func(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error)
	cancelFunc   func(ctx context.Context, id string) error
	markPaidFunc func(ctx context.Context, id string) (*model.Reservation, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	return r, nil
}

func (m *mockBookingService) UpdateBooking(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, u)
	}
	return &model.Reservation{ID: id}, nil
}

func (m *mockBookingService) CancelBooking(ctx context.Context, id string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingService) MarkPaid(ctx context.Context, id string) (*model.Reservation, error) {
	if m.markPaidFunc != nil {
		return m.markPaidFunc(ctx, id)
	}
	return &model.Reservation{ID: id, Paid: true}, nil
}

func (m *mockBookingService) RefreshAvailability(ctx context.Context, roomID string) (bool, error) {
	return true, nil
}

func (m *mockBookingService) RefreshAll(ctx context.Context) (int, error) {
	return 0, nil
}

type mockQueries struct {
	getAllFunc       func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	getByDateRangeFn func(ctx context.Context, start, end time.Time) ([]*model.Reservation, error)
}

func (m *mockQueries) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, apperrors.NotFoundWithID("Reservation", id)
}

func (m *mockQueries) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Reservation{}, 0, nil
}

func (m *mockQueries) GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockQueries) GetByCustomer(ctx context.Context, name string) ([]*model.Reservation, error) {
	return []*model.Reservation{}, nil
}

func (m *mockQueries) GetByDateRange(ctx context.Context, start, end time.Time) ([]*model.Reservation, error) {
	if m.getByDateRangeFn != nil {
		return m.getByDateRangeFn(ctx, start, end)
	}
	return []*model.Reservation{}, nil
}

func (m *mockQueries) Count(ctx context.Context) (int64, error) {
	return 7, nil
}

func (m *mockQueries) CountActive(ctx context.Context) (int64, error) {
	return 3, nil
}

func newTestRouter(engine *mockBookingService, queries *mockQueries) *httprouter.Router {
	router := httprouter.New()
	NewReservationHandler(engine, queries, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_ParsesDates(t *testing.T) {
	var received *model.Reservation
	engine := &mockBookingService{
		createFunc: func(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
			received = r
			created := *r
			created.ID = "65a1b2c3d4e5f60718293a4b"
			return &created, nil
		},
	}
	router := newTestRouter(engine, &mockQueries{})

	body := `{"customer_name":"Alice","room_id":"65a1b2c3d4e5f60718293a4c","check_in":"2024-06-20","check_out":"2024-06-23"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if received == nil {
		t.Fatal("service was not called")
	}
	if !received.CheckIn.Equal(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected check-in %v", received.CheckIn)
	}

	var resp struct {
		Data reservationResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.CheckOut != "2024-06-23" || resp.Data.Nights != 3 {
		t.Errorf("unexpected response %+v", resp.Data)
	}
}

func TestCreate_BadInput(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		expectCode int
	}{
		{"malformed json", `{"customer_name":`, http.StatusBadRequest},
		{"bad date", `{"customer_name":"Alice","room_id":"x","check_in":"20/06/2024","check_out":"2024-06-23"}`, http.StatusUnprocessableEntity},
		{"missing date", `{"customer_name":"Alice","room_id":"x","check_in":"2024-06-20"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			engine := &mockBookingService{
				createFunc: func(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
					called = true
					return r, nil
				},
			}
			router := newTestRouter(engine, &mockQueries{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Errorf("expected status %d, got %d", tt.expectCode, w.Code)
			}
			if called {
				t.Error("service should not be called for invalid input")
			}
		})
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectCode  int
		retryAfter  bool
		expectError string
	}{
		{"conflict", apperrors.Conflict("Room is already reserved for the requested dates"), http.StatusConflict, false, apperrors.CodeConflict},
		{"busy", apperrors.Busy("Room is busy, please retry", nil), http.StatusServiceUnavailable, true, apperrors.CodeBusy},
		{"not found", apperrors.NotFound("Room"), http.StatusNotFound, false, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockBookingService{
				createFunc: func(ctx context.Context, r *model.Reservation) (*model.Reservation, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(engine, &mockQueries{})

			body := `{"customer_name":"Alice","room_id":"65a1b2c3d4e5f60718293a4c","check_in":"2024-06-20","check_out":"2024-06-23"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectCode {
				t.Errorf("expected status %d, got %d", tt.expectCode, w.Code)
			}
			if got := w.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Errorf("Retry-After present = %v, want %v", got, tt.retryAfter)
			}

			var errResp apperrors.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if errResp.Code != tt.expectError {
				t.Errorf("expected code %s, got %s", tt.expectError, errResp.Code)
			}
		})
	}
}

func TestUpdate_PartialDates(t *testing.T) {
	var received *model.ReservationUpdate
	engine := &mockBookingService{
		updateFunc: func(ctx context.Context, id string, u *model.ReservationUpdate) (*model.Reservation, error) {
			received = u
			return &model.Reservation{ID: id}, nil
		},
	}
	router := newTestRouter(engine, &mockQueries{})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reservations/id/abc", strings.NewReader(`{"check_out":"2024-07-01","paid":true}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if received.CheckIn != nil {
		t.Error("check_in should stay unset")
	}
	if received.CheckOut == nil || received.CheckOut.Format("2006-01-02") != "2024-07-01" {
		t.Errorf("unexpected check_out %v", received.CheckOut)
	}
	if received.Paid == nil || !*received.Paid {
		t.Error("paid should be forwarded")
	}
}

func TestMarkPaidAndCancelRoutes(t *testing.T) {
	var paidID, cancelledID string
	engine := &mockBookingService{
		markPaidFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			paidID = id
			return &model.Reservation{ID: id, Paid: true}, nil
		},
		cancelFunc: func(ctx context.Context, id string) error {
			cancelledID = id
			return nil
		},
	}
	router := newTestRouter(engine, &mockQueries{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/reservations/id/r1/pay", nil))
	if w.Code != http.StatusOK || paidID != "r1" {
		t.Errorf("pay: status %d, id %q", w.Code, paidID)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/reservations/id/r2", nil))
	if w.Code != http.StatusNoContent || cancelledID != "r2" {
		t.Errorf("cancel: status %d, id %q", w.Code, cancelledID)
	}
}

func TestGetByDateRange_Params(t *testing.T) {
	var gotStart, gotEnd time.Time
	queries := &mockQueries{
		getByDateRangeFn: func(ctx context.Context, start, end time.Time) ([]*model.Reservation, error) {
			gotStart, gotEnd = start, end
			return []*model.Reservation{}, nil
		},
	}
	router := newTestRouter(&mockBookingService{}, queries)

	tests := []struct {
		name       string
		query      string
		expectCode int
	}{
		{"valid", "?start=2024-01-01&end=2024-01-31", http.StatusOK},
		{"missing end", "?start=2024-01-01", http.StatusBadRequest},
		{"bad start", "?start=yesterday&end=2024-01-31", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reservations/date-range"+tt.query, nil))
			if w.Code != tt.expectCode {
				t.Errorf("expected status %d, got %d", tt.expectCode, w.Code)
			}
		})
	}

	if gotStart.Day() != 1 || gotEnd.Day() != 31 {
		t.Errorf("unexpected range %v - %v", gotStart, gotEnd)
	}
}

func TestGetAll_Pagination(t *testing.T) {
	var receivedLimit int
	var receivedOffset int64
	queries := &mockQueries{
		getAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
			receivedLimit, receivedOffset = limit, offset
			return []*model.Reservation{{ID: "1"}}, 42, nil
		},
	}
	router := newTestRouter(&mockBookingService{}, queries)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reservations?limit=5&offset=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if receivedLimit != 5 || receivedOffset != 10 {
		t.Errorf("expected limit=5 offset=10, got limit=%d offset=%d", receivedLimit, receivedOffset)
	}

	var resp struct {
		TotalCount int64 `json:"total_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalCount != 42 {
		t.Errorf("expected total_count 42, got %d", resp.TotalCount)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reservations?limit=abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid limit, got %d", w.Code)
	}
}

func TestCounts(t *testing.T) {
	router := newTestRouter(&mockBookingService{}, &mockQueries{})

	for path, want := range map[string]int64{
		"/api/v1/reservations/count":        7,
		"/api/v1/reservations/active/count": 3,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		var resp struct {
			Data countResponse `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("%s: failed to decode response: %v", path, err)
		}
		if resp.Data.Count != want {
			t.Errorf("%s: expected %d, got %d", path, want, resp.Data.Count)
		}
	}
}
