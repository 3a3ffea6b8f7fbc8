package client

import (
	"fmt"
	"net/url"
)

type RoomClient struct {
	httpClient *HttpClient
}

func NewRoomClient(baseUrl string) *RoomClient {
	return &RoomClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *RoomClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/rooms", body)
}

func (c *RoomClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/rooms?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *RoomClient) GetAvailable() (*Response, error) {
	return c.httpClient.GET("/api/v1/rooms/available")
}

func (c *RoomClient) GetByCategory(category string) (*Response, error) {
	return c.httpClient.GET("/api/v1/rooms/category/" + url.PathEscape(category))
}

func (c *RoomClient) GetByNumber(roomNumber string) (*Response, error) {
	return c.httpClient.GET("/api/v1/rooms/number/" + url.PathEscape(roomNumber))
}

func (c *RoomClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/rooms/id/" + url.PathEscape(id))
}

func (c *RoomClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/rooms/id/"+url.PathEscape(id), body)
}

func (c *RoomClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/rooms/id/" + url.PathEscape(id))
}

func (c *RoomClient) Counts() (*Response, error) {
	return c.httpClient.GET("/api/v1/rooms/count")
}
