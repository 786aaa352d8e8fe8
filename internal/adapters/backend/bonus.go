package backend

import (
	"context"
	"net/http"
	"net/url"

	"flight_gateway/internal/domain"
)

type BonusClient struct{ c *Client }

func NewBonusClient(base string, o Options) (*BonusClient, error) {
	c, err := newClient("bonus", base, o)
	if err != nil {
		return nil, err
	}
	return &BonusClient{c: c}, nil
}

func (b *BonusClient) GetPrivilege(ctx context.Context, username string) (domain.Privilege, error) {
	var out domain.Privilege
	err := b.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "/api/v1/privileges",
		path:     "/api/v1/privileges",
		username: username,
		out:      &out,
	})
	return out, err
}

func (b *BonusClient) RegisterPurchase(ctx context.Context, username string, in domain.TicketInfo) (domain.PurchaseInfo, error) {
	var out domain.PurchaseInfo
	err := b.c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/api/v1/privileges",
		path:     "/api/v1/privileges",
		username: username,
		in:       in,
		out:      &out,
	})
	return out, err
}

func (b *BonusClient) CancelPrivilege(ctx context.Context, username, ticketUID string) error {
	return b.c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "/api/v1/privileges/{ticketUid}",
		path:     "/api/v1/privileges/" + url.PathEscape(ticketUID),
		username: username,
	})
}
