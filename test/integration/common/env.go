//go:build integration

package common

import (
	"os"
	"testing"
	"time"

	"roombook/pkg/client"
)

const (
	DefaultServerURL       = "http://localhost:8080"
	RoomsCollection        = "Rooms"
	ReservationsCollection = "Reservations"
	healthWait             = 30 * time.Second
)

// TestEnv points integration tests at a running booking service and the
// database behind it.
type TestEnv struct {
	ServerURL string
	MongoURI  string
	DBName    string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		ServerURL: getenv("TEST_SERVER_URL", DefaultServerURL),
		MongoURI:  getenv("TEST_MONGO_URI", DefaultMongoURI),
		DBName:    getenv("TEST_MONGO_DATABASE", DefaultDatabaseName),
	}
}

type Clients struct {
	Rooms        *client.RoomClient
	Reservations *client.ReservationClient
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Clients) {
	t.Helper()

	if err := client.NewHttpClient(e.ServerURL).WaitForHealthy(healthWait); err != nil {
		t.Skipf("booking service not reachable at %s: %v", e.ServerURL, err)
	}

	mongo := NewMongoHelper(t, e.MongoURI, e.DBName)
	mongo.CleanCollection(t, ReservationsCollection)
	mongo.CleanCollection(t, RoomsCollection)

	return mongo, &Clients{
		Rooms:        client.NewRoomClient(e.ServerURL),
		Reservations: client.NewReservationClient(e.ServerURL),
	}
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()
	mongo.CleanCollection(t, ReservationsCollection)
	mongo.CleanCollection(t, RoomsCollection)
	mongo.Close(t)
}

func AssertStatusCode(t *testing.T, resp *client.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, resp.StatusCode, client.GetErrorMessage(resp))
	}
}

func AssertErrorCode(t *testing.T, resp *client.Response, status int, code string) {
	t.Helper()
	AssertStatusCode(t, resp, status)
	if got := client.ErrorCode(resp); got != code {
		t.Errorf("expected error code %q, got %q", code, got)
	}
}

// Must wraps a client call and fails the test on a transport error:
// common.Must(t)(c.Rooms.GetByID(id)).
func Must(t *testing.T) func(*client.Response, error) *client.Response {
	return func(resp *client.Response, err error) *client.Response {
		t.Helper()
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		return resp
	}
}

func Decode[T any](t *testing.T, resp *client.Response) T {
	t.Helper()
	var out T
	if err := resp.DecodeData(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
