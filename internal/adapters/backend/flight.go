package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"flight_gateway/internal/domain"
)

type FlightClient struct{ c *Client }

func NewFlightClient(base string, o Options) (*FlightClient, error) {
	c, err := newClient("flight", base, o)
	if err != nil {
		return nil, err
	}
	return &FlightClient{c: c}, nil
}

// ListFlights forwards page and size only when both are set.
func (f *FlightClient) ListFlights(ctx context.Context, pg domain.PageQuery) (domain.FlightsPage, error) {
	var q url.Values
	if pg.Page > 0 && pg.Size > 0 {
		q = url.Values{}
		q.Set("page", strconv.Itoa(pg.Page))
		q.Set("size", strconv.Itoa(pg.Size))
	}
	var out domain.FlightsPage
	err := f.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/api/v1/flights",
		path:     "/api/v1/flights",
		query:    q,
		out:      &out,
	})
	return out, err
}

func (f *FlightClient) ListFlightsByNumbers(ctx context.Context, numbers []string) ([]domain.Flight, error) {
	q := url.Values{}
	for _, n := range numbers {
		q.Add("numbers", n)
	}
	var out domain.FlightsPage
	if err := f.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/api/v1/flights?numbers",
		path:     "/api/v1/flights",
		query:    q,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (f *FlightClient) GetFlight(ctx context.Context, number string) (domain.Flight, error) {
	var out domain.Flight
	err := f.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/api/v1/flights/{number}",
		path:     "/api/v1/flights/" + url.PathEscape(number),
		out:      &out,
	})
	return out, err
}
