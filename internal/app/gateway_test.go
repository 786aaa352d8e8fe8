package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight_gateway/internal/app"
	"flight_gateway/internal/domain"
)

// ---- fakes ----

// calls records the order of backend calls across all fakes.
type calls struct {
	mu  sync.Mutex
	log []string
}

func (c *calls) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, s)
}

func (c *calls) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

type fakeFlights struct {
	calls     *calls
	page      domain.FlightsPage
	byNumbers []domain.Flight
	flight    domain.Flight
	err       map[string]error
	gotNums   []string
	gotPage   domain.PageQuery
}

func (f *fakeFlights) ListFlights(ctx context.Context, pg domain.PageQuery) (domain.FlightsPage, error) {
	f.calls.add("flights.list")
	f.gotPage = pg
	return f.page, f.err["flights.list"]
}
func (f *fakeFlights) ListFlightsByNumbers(ctx context.Context, numbers []string) ([]domain.Flight, error) {
	f.calls.add("flights.byNumbers")
	f.gotNums = numbers
	return f.byNumbers, f.err["flights.byNumbers"]
}
func (f *fakeFlights) GetFlight(ctx context.Context, number string) (domain.Flight, error) {
	f.calls.add("flights.get")
	if err := f.err["flights.get"]; err != nil {
		return domain.Flight{}, err
	}
	return f.flight, nil
}

type fakeTickets struct {
	calls   *calls
	list    []domain.Ticket
	ticket  domain.Ticket
	err     map[string]error
	created domain.TicketCreate
}

func (f *fakeTickets) ListTickets(ctx context.Context, username string) ([]domain.Ticket, error) {
	f.calls.add("tickets.list")
	return f.list, f.err["tickets.list"]
}
func (f *fakeTickets) GetTicket(ctx context.Context, username, id string) (domain.Ticket, error) {
	f.calls.add("tickets.get")
	if err := f.err["tickets.get"]; err != nil {
		return domain.Ticket{}, err
	}
	return f.ticket, nil
}
func (f *fakeTickets) CreateTicket(ctx context.Context, username string, in domain.TicketCreate) (domain.Ticket, error) {
	f.calls.add("tickets.create")
	f.created = in
	if err := f.err["tickets.create"]; err != nil {
		return domain.Ticket{}, err
	}
	return f.ticket, nil
}
func (f *fakeTickets) CancelTicket(ctx context.Context, username, id string) error {
	f.calls.add("tickets.cancel")
	return f.err["tickets.cancel"]
}

type fakeBonus struct {
	calls     *calls
	privilege domain.Privilege
	paid      domain.PurchaseInfo
	err       map[string]error
	info      domain.TicketInfo
}

func (f *fakeBonus) GetPrivilege(ctx context.Context, username string) (domain.Privilege, error) {
	f.calls.add("bonus.get")
	if err := f.err["bonus.get"]; err != nil {
		return domain.Privilege{}, err
	}
	return f.privilege, nil
}
func (f *fakeBonus) RegisterPurchase(ctx context.Context, username string, in domain.TicketInfo) (domain.PurchaseInfo, error) {
	f.calls.add("bonus.register")
	f.info = in
	if err := f.err["bonus.register"]; err != nil {
		return domain.PurchaseInfo{}, err
	}
	return f.paid, nil
}
func (f *fakeBonus) CancelPrivilege(ctx context.Context, username, id string) error {
	f.calls.add("bonus.cancel")
	return f.err["bonus.cancel"]
}

type fixture struct {
	calls   *calls
	flights *fakeFlights
	tickets *fakeTickets
	bonus   *fakeBonus
	gw      *app.Gateway
}

func newFixture() *fixture {
	c := &calls{}
	fx := &fixture{
		calls:   c,
		flights: &fakeFlights{calls: c, err: map[string]error{}},
		tickets: &fakeTickets{calls: c, err: map[string]error{}},
		bonus:   &fakeBonus{calls: c, err: map[string]error{}},
	}
	fx.gw = app.NewGateway(fx.flights, fx.tickets, fx.bonus)
	return fx
}

func rejected(service string, status int, body string) error {
	return &domain.BackendError{Service: service, Status: status, Body: body}
}

var afl031 = domain.Flight{FlightNumber: "AFL031", FromAirport: "Moscow", ToAirport: "Sochi", Date: "2024-06-01", Price: 1500}

// ---- tests ----

func TestListFlights_Passthrough(t *testing.T) {
	fx := newFixture()
	fx.flights.page = domain.FlightsPage{Page: 2, PageSize: 1, TotalElements: 5, Items: []domain.Flight{afl031}}

	got, err := fx.gw.ListFlights(context.Background(), domain.PageQuery{Page: 2, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, fx.flights.page, got)
	assert.Equal(t, domain.PageQuery{Page: 2, Size: 1}, fx.flights.gotPage)
}

func TestGetTickets_CorrelatesDistinctNumbers(t *testing.T) {
	fx := newFixture()
	fx.tickets.list = []domain.Ticket{
		{TicketUID: "u1", FlightNumber: "AFL031", Price: 500, Status: "PAID"},
		{TicketUID: "u2", FlightNumber: "AFL031", Price: 600, Status: "CANCELED"},
	}
	fx.flights.byNumbers = []domain.Flight{afl031}

	got, err := fx.gw.GetTickets(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"AFL031"}, fx.flights.gotNums)
	assert.Equal(t, []domain.TicketDetail{
		{TicketUID: "u1", FlightNumber: "AFL031", FromAirport: "Moscow", ToAirport: "Sochi", Date: "2024-06-01", Price: 500, Status: "PAID"},
		{TicketUID: "u2", FlightNumber: "AFL031", FromAirport: "Moscow", ToAirport: "Sochi", Date: "2024-06-01", Price: 600, Status: "CANCELED"},
	}, got)
}

func TestGetTickets_TicketFailureShortCircuits(t *testing.T) {
	fx := newFixture()
	fx.tickets.err["tickets.list"] = rejected("ticket", 500, "boom")

	_, err := fx.gw.GetTickets(context.Background(), "alice")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 500, be.Status)
	assert.Equal(t, []string{"tickets.list"}, fx.calls.list())
}

func TestGetTickets_UnknownFlightIsCorrelationFault(t *testing.T) {
	fx := newFixture()
	fx.tickets.list = []domain.Ticket{{TicketUID: "u1", FlightNumber: "GONE"}}
	fx.flights.byNumbers = []domain.Flight{afl031}

	_, err := fx.gw.GetTickets(context.Background(), "alice")
	assert.True(t, errors.Is(err, domain.ErrCorrelation))
}

func TestGetUserInfo_EmptyTickets(t *testing.T) {
	fx := newFixture()
	fx.tickets.list = []domain.Ticket{}
	fx.flights.byNumbers = []domain.Flight{afl031}
	fx.bonus.privilege = domain.Privilege{Balance: 150, Status: "GOLD", History: []domain.BalanceOperation{{TicketUID: "x"}}}

	got, err := fx.gw.GetUserInfo(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, got.Tickets)
	assert.Empty(t, got.Tickets)
	assert.Equal(t, domain.PrivilegeShort{Balance: 150, Status: "GOLD"}, got.Privilege)
	assert.Contains(t, fx.calls.list(), "flights.byNumbers")
	assert.Empty(t, fx.flights.gotNums)
}

func TestGetTickets_EmptyTicketsStillQueriesFlights(t *testing.T) {
	fx := newFixture()
	fx.tickets.list = []domain.Ticket{}
	down := &domain.InfraError{Service: "flight", Err: errors.New("connection refused")}
	fx.flights.err["flights.byNumbers"] = down

	_, err := fx.gw.GetTickets(context.Background(), "alice")
	assert.ErrorIs(t, err, down)
	assert.Equal(t, []string{"tickets.list", "flights.byNumbers"}, fx.calls.list())
}

func TestGetUserInfo_PrivilegeFailure(t *testing.T) {
	fx := newFixture()
	fx.tickets.list = []domain.Ticket{{TicketUID: "u1", FlightNumber: "AFL031"}}
	fx.flights.byNumbers = []domain.Flight{afl031}
	fx.bonus.err["bonus.get"] = rejected("bonus", 404, "no such user")

	_, err := fx.gw.GetUserInfo(context.Background(), "alice")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "bonus", be.Service)
	assert.Equal(t, 404, be.Status)
}

func TestGetTicket(t *testing.T) {
	fx := newFixture()
	fx.tickets.ticket = domain.Ticket{TicketUID: "u1", FlightNumber: "AFL031", Price: 500, Status: "PAID"}
	fx.flights.flight = afl031

	got, err := fx.gw.GetTicket(context.Background(), "alice", "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketDetail{
		TicketUID: "u1", FlightNumber: "AFL031", FromAirport: "Moscow", ToAirport: "Sochi",
		Date: "2024-06-01", Price: 500, Status: "PAID",
	}, got)
}

func TestGetTicket_NotFoundSkipsFlightLookup(t *testing.T) {
	fx := newFixture()
	fx.tickets.err["tickets.get"] = rejected("ticket", 404, "ticket not found")

	_, err := fx.gw.GetTicket(context.Background(), "alice", "u1")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 404, be.Status)
	assert.Equal(t, []string{"tickets.get"}, fx.calls.list())
}

func TestCancelTicket_Order(t *testing.T) {
	fx := newFixture()
	require.NoError(t, fx.gw.CancelTicket(context.Background(), "alice", "u1"))
	assert.Equal(t, []string{"tickets.cancel", "bonus.cancel"}, fx.calls.list())
}

func TestCancelTicket_TicketFailureLeavesPrivilege(t *testing.T) {
	fx := newFixture()
	fx.tickets.err["tickets.cancel"] = rejected("ticket", 404, "not found")

	err := fx.gw.CancelTicket(context.Background(), "alice", "u1")
	require.Error(t, err)
	assert.Equal(t, []string{"tickets.cancel"}, fx.calls.list())
}

func TestCancelTicket_PrivilegeFailureNoRollback(t *testing.T) {
	fx := newFixture()
	fx.bonus.err["bonus.cancel"] = rejected("bonus", 500, "ledger down")

	err := fx.gw.CancelTicket(context.Background(), "alice", "u1")
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 500, be.Status)
	assert.Equal(t, "ledger down", be.Body)
	assert.Equal(t, []string{"tickets.cancel", "bonus.cancel"}, fx.calls.list())
}

func TestBuyTicket_Success(t *testing.T) {
	fx := newFixture()
	fx.flights.flight = afl031
	fx.tickets.ticket = domain.Ticket{TicketUID: "t-42", FlightNumber: "AFL031", Price: 1500, Status: "PAID"}
	fx.bonus.paid = domain.PurchaseInfo{PaidByMoney: 1400, PaidByBonuses: 37}
	fx.bonus.privilege = domain.Privilege{Balance: 150, Status: "SILVER"}

	got, err := fx.gw.BuyTicket(context.Background(), "alice", domain.PurchaseRequest{FlightNumber: "AFL031", Price: 1500, PaidFromBalance: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"flights.get", "tickets.create", "bonus.register", "bonus.get"}, fx.calls.list())
	assert.Equal(t, domain.TicketCreate{FlightNumber: "AFL031", Price: 1500}, fx.tickets.created)
	assert.Equal(t, domain.TicketInfo{Price: 1500, PaidFromBalance: true, TicketUID: "t-42", Date: "2024-06-01"}, fx.bonus.info)

	assert.Equal(t, "t-42", got.TicketUID)
	assert.Equal(t, "AFL031", got.FlightNumber)
	assert.Equal(t, "Moscow", got.FromAirport)
	assert.Equal(t, "Sochi", got.ToAirport)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, 1500, got.Price)
	assert.Equal(t, 1400, got.PaidByMoney)
	assert.Equal(t, 37, got.PaidByBonuses)
	assert.Equal(t, "PAID", got.Status)
	require.NotNil(t, got.Privilege)
	assert.Equal(t, domain.PrivilegeShort{Balance: 150, Status: "SILVER"}, *got.Privilege)
}

func TestBuyTicket_UnknownFlightShortCircuits(t *testing.T) {
	fx := newFixture()
	fx.flights.err["flights.get"] = rejected("flight", 404, "flight not found")

	_, err := fx.gw.BuyTicket(context.Background(), "alice", domain.PurchaseRequest{FlightNumber: "XXX", Price: 10})
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 404, be.Status)
	assert.Equal(t, "flight not found", be.Body)
	assert.Equal(t, []string{"flights.get"}, fx.calls.list())
}

func TestBuyTicket_RegisterFailureKeepsTicket(t *testing.T) {
	fx := newFixture()
	fx.flights.flight = afl031
	fx.tickets.ticket = domain.Ticket{TicketUID: "t-42", Status: "PAID"}
	fx.bonus.err["bonus.register"] = rejected("bonus", 503, "busy")

	_, err := fx.gw.BuyTicket(context.Background(), "alice", domain.PurchaseRequest{FlightNumber: "AFL031", Price: 1500})
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 503, be.Status)
	assert.Equal(t, []string{"flights.get", "tickets.create", "bonus.register"}, fx.calls.list())
}

func TestBuyTicket_PrivilegeRefreshIsBestEffort(t *testing.T) {
	fx := newFixture()
	fx.flights.flight = afl031
	fx.tickets.ticket = domain.Ticket{TicketUID: "t-42", Status: "PAID"}
	fx.bonus.paid = domain.PurchaseInfo{PaidByMoney: 1500}
	fx.bonus.err["bonus.get"] = &domain.InfraError{Service: "bonus", Err: errors.New("connection refused")}

	got, err := fx.gw.BuyTicket(context.Background(), "alice", domain.PurchaseRequest{FlightNumber: "AFL031", Price: 1500})
	require.NoError(t, err)
	assert.Equal(t, "t-42", got.TicketUID)
	assert.Nil(t, got.Privilege)
}
