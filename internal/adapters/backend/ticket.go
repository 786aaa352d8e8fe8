package backend

import (
	"context"
	"net/http"
	"net/url"

	"flight_gateway/internal/domain"
)

type TicketClient struct{ c *Client }

func NewTicketClient(base string, o Options) (*TicketClient, error) {
	c, err := newClient("ticket", base, o)
	if err != nil {
		return nil, err
	}
	return &TicketClient{c: c}, nil
}

func (t *TicketClient) ListTickets(ctx context.Context, username string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := t.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/api/v1/tickets",
		path:     "/api/v1/tickets",
		username: username,
		out:      &out,
	})
	return out, err
}

func (t *TicketClient) GetTicket(ctx context.Context, username, ticketUID string) (domain.Ticket, error) {
	var out domain.Ticket
	err := t.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/api/v1/tickets/{ticketUid}",
		path:     "/api/v1/tickets/" + url.PathEscape(ticketUID),
		username: username,
		out:      &out,
	})
	return out, err
}

func (t *TicketClient) CreateTicket(ctx context.Context, username string, in domain.TicketCreate) (domain.Ticket, error) {
	var out domain.Ticket
	err := t.c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/api/v1/tickets",
		path:     "/api/v1/tickets",
		username: username,
		in:       in,
		out:      &out,
	})
	return out, err
}

func (t *TicketClient) CancelTicket(ctx context.Context, username, ticketUID string) error {
	return t.c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/api/v1/tickets/{ticketUid}",
		path:     "/api/v1/tickets/" + url.PathEscape(ticketUID),
		username: username,
	})
}
