package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"sharedcal/pkg/model"
)

// BookingClient talks to the bookings HTTP API.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *BookingClient) Create(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*Response, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{idempotencyHeader: idempotencyKey}
	}
	return c.httpClient.POST(ctx, "/api/v1/bookings", req, headers)
}

func (c *BookingClient) CheckIn(ctx context.Context, id int) (*Response, error) {
	return c.httpClient.POST(ctx, bookingPath(id)+"/checkin", nil, nil)
}

func (c *BookingClient) CheckOut(ctx context.Context, id int) (*Response, error) {
	return c.httpClient.POST(ctx, bookingPath(id)+"/checkout", nil, nil)
}

func (c *BookingClient) Delete(ctx context.Context, id int) (*Response, error) {
	return c.httpClient.DELETE(ctx, bookingPath(id))
}

func (c *BookingClient) Day(ctx context.Context, date string) (*Response, error) {
	path := "/api/v1/bookings"
	if date != "" {
		path += "?" + url.Values{"date": {date}}.Encode()
	}
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) Active(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/active")
}

func (c *BookingClient) Team(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/team")
}

func (c *BookingClient) DecodeAction(resp *Response) (*model.ActionResult, error) {
	var result model.ActionResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, fmt.Errorf("could not decode action result:\n%s\n%w", resp.String(), err)
	}
	return &result, nil
}

func (c *BookingClient) DecodeDay(resp *Response) (*model.DayAgenda, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, fmt.Errorf("could not decode agenda wrapper:\n%s\n%w", resp.String(), err)
	}

	var day model.DayAgenda
	if err := json.Unmarshal(wrapper.Data, &day); err != nil {
		return nil, fmt.Errorf("could not decode agenda json:\n%s\n%w", resp.String(), err)
	}
	return &day, nil
}

func bookingPath(id int) string {
	return "/api/v1/bookings/id/" + url.PathEscape(strconv.Itoa(id))
}
