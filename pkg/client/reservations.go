package client

import (
	"fmt"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ReservationClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/reservations?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/id/" + url.PathEscape(id))
}

func (c *ReservationClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/reservations/id/"+url.PathEscape(id), body)
}

func (c *ReservationClient) Cancel(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/reservations/id/" + url.PathEscape(id))
}

func (c *ReservationClient) MarkPaid(id string) (*Response, error) {
	return c.httpClient.PUT("/api/v1/reservations/id/"+url.PathEscape(id)+"/pay", nil)
}

func (c *ReservationClient) GetByRoom(roomID string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/room/" + url.PathEscape(roomID))
}

func (c *ReservationClient) GetByCustomer(name string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/customer/" + url.PathEscape(name))
}

func (c *ReservationClient) GetByDateRange(start, end time.Time) (*Response, error) {
	q := url.Values{}
	q.Set("start", start.Format(dateLayout))
	q.Set("end", end.Format(dateLayout))
	return c.httpClient.GET("/api/v1/reservations/date-range?" + q.Encode())
}

func (c *ReservationClient) Count() (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/count")
}

func (c *ReservationClient) ActiveCount() (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/active/count")
}
