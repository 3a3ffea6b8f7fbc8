package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReservationClient_MarkPaidUsesPut(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewReservationClient(srv.URL).MarkPaid("abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/api/v1/reservations/id/abc123/pay" {
		t.Errorf("unexpected path %s", gotPath)
	}
}

func TestReservationClient_DateRangeQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if _, err := NewReservationClient(srv.URL).GetByDateRange(start, end); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "end=2024-01-31&start=2024-01-01" {
		t.Errorf("unexpected query %q", gotQuery)
	}
}

func TestResponse_DecodeDataAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/rooms/id/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"Room not found"}`))
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type on POST")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"r1","room_number":"101"}}`))
	}))
	defer srv.Close()

	rooms := NewRoomClient(srv.URL)

	resp, err := rooms.Create(map[string]any{"room_number": "101"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var room struct {
		ID         string `json:"id"`
		RoomNumber string `json:"room_number"`
	}
	if err := resp.DecodeData(&room); err != nil {
		t.Fatalf("DecodeData failed: %v", err)
	}
	if room.ID != "r1" || room.RoomNumber != "101" {
		t.Errorf("unexpected room %+v", room)
	}

	resp, err = rooms.GetByID("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ErrorCode(resp) != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %q", ErrorCode(resp))
	}
	if GetErrorMessage(resp) != "Room not found" {
		t.Errorf("unexpected message %q", GetErrorMessage(resp))
	}
}
