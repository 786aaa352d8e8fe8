package domain

import "context"

type FlightClient interface {
	ListFlights(ctx context.Context, pg PageQuery) (FlightsPage, error)
	ListFlightsByNumbers(ctx context.Context, numbers []string) ([]Flight, error)
	GetFlight(ctx context.Context, number string) (Flight, error)
}

// TicketClient calls are scoped to the user named by the forwarded username.
type TicketClient interface {
	ListTickets(ctx context.Context, username string) ([]Ticket, error)
	GetTicket(ctx context.Context, username, ticketUID string) (Ticket, error)
	CreateTicket(ctx context.Context, username string, in TicketCreate) (Ticket, error)
	CancelTicket(ctx context.Context, username, ticketUID string) error
}

type BonusClient interface {
	GetPrivilege(ctx context.Context, username string) (Privilege, error)
	RegisterPurchase(ctx context.Context, username string, in TicketInfo) (PurchaseInfo, error)
	CancelPrivilege(ctx context.Context, username, ticketUID string) error
}

// IdempotencyStore guards state-changing requests keyed by a client token.
type IdempotencyStore interface {
	// Begin reports false when the key is already taken.
	Begin(ctx context.Context, key string) (bool, error)
	Complete(ctx context.Context, key string, status int) error
	Release(ctx context.Context, key string) error
}
