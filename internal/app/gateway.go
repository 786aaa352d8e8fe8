package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"flight_gateway/internal/domain"
)

// Gateway runs one backend call pipeline per endpoint. Every pipeline stops
// at the first failing call and returns that call's error unchanged; earlier
// mutations are not compensated.
type Gateway struct {
	flights domain.FlightClient
	tickets domain.TicketClient
	bonus   domain.BonusClient
}

func NewGateway(f domain.FlightClient, t domain.TicketClient, b domain.BonusClient) *Gateway {
	return &Gateway{flights: f, tickets: t, bonus: b}
}

func (g *Gateway) ListFlights(ctx context.Context, pg domain.PageQuery) (domain.FlightsPage, error) {
	return g.flights.ListFlights(ctx, pg)
}

// GetUserInfo fetches the ticket chain and the privilege concurrently; the
// privilege read does not depend on tickets.
func (g *Gateway) GetUserInfo(ctx context.Context, username string) (domain.UserInfo, error) {
	var (
		details   []domain.TicketDetail
		privilege domain.Privilege
	)
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		details, err = g.ticketDetails(ectx, username)
		return err
	})
	eg.Go(func() error {
		var err error
		privilege, err = g.bonus.GetPrivilege(ectx, username)
		return err
	})
	if err := eg.Wait(); err != nil {
		return domain.UserInfo{}, err
	}
	return domain.UserInfo{Tickets: details, Privilege: privilege.Short()}, nil
}

func (g *Gateway) GetTickets(ctx context.Context, username string) ([]domain.TicketDetail, error) {
	return g.ticketDetails(ctx, username)
}

func (g *Gateway) GetPrivilege(ctx context.Context, username string) (domain.Privilege, error) {
	return g.bonus.GetPrivilege(ctx, username)
}

func (g *Gateway) GetTicket(ctx context.Context, username, ticketUID string) (domain.TicketDetail, error) {
	t, err := g.tickets.GetTicket(ctx, username, ticketUID)
	if err != nil {
		return domain.TicketDetail{}, err
	}
	f, err := g.flights.GetFlight(ctx, t.FlightNumber)
	if err != nil {
		return domain.TicketDetail{}, err
	}
	return detail(t, f), nil
}

// CancelTicket cancels on the ticket backend first; the privilege entry is
// touched only once that succeeded.
func (g *Gateway) CancelTicket(ctx context.Context, username, ticketUID string) error {
	if err := g.tickets.CancelTicket(ctx, username, ticketUID); err != nil {
		return err
	}
	return g.bonus.CancelPrivilege(ctx, username, ticketUID)
}

// BuyTicket: flight lookup -> ticket create -> purchase registration ->
// privilege refresh. The refresh is display-only: its failure is logged and
// the outcome is returned without a privilege block.
func (g *Gateway) BuyTicket(ctx context.Context, username string, req domain.PurchaseRequest) (domain.PurchaseResponse, error) {
	f, err := g.flights.GetFlight(ctx, req.FlightNumber)
	if err != nil {
		return domain.PurchaseResponse{}, err
	}

	t, err := g.tickets.CreateTicket(ctx, username, domain.TicketCreate{FlightNumber: req.FlightNumber, Price: req.Price})
	if err != nil {
		return domain.PurchaseResponse{}, err
	}

	paid, err := g.bonus.RegisterPurchase(ctx, username, domain.TicketInfo{
		Price:           req.Price,
		PaidFromBalance: req.PaidFromBalance,
		TicketUID:       t.TicketUID,
		Date:            f.Date,
	})
	if err != nil {
		return domain.PurchaseResponse{}, err
	}

	out := domain.PurchaseResponse{
		TicketUID:     t.TicketUID,
		FlightNumber:  f.FlightNumber,
		FromAirport:   f.FromAirport,
		ToAirport:     f.ToAirport,
		Date:          f.Date,
		Price:         req.Price,
		PaidByMoney:   paid.PaidByMoney,
		PaidByBonuses: paid.PaidByBonuses,
		Status:        t.Status,
	}

	p, err := g.bonus.GetPrivilege(ctx, username)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("ticket", t.TicketUID).Msg("privilege refresh after purchase failed")
		return out, nil
	}
	short := p.Short()
	out.Privilege = &short
	return out, nil
}

// ticketDetails: tickets -> flights filtered by their numbers -> correlate.
// The flight query runs even for an empty ticket list; with no tickets its
// items are unused and the result is empty.
func (g *Gateway) ticketDetails(ctx context.Context, username string) ([]domain.TicketDetail, error) {
	tickets, err := g.tickets.ListTickets(ctx, username)
	if err != nil {
		return nil, err
	}
	flights, err := g.flights.ListFlightsByNumbers(ctx, flightNumbers(tickets))
	if err != nil {
		return nil, err
	}
	return Correlate(tickets, flights)
}
