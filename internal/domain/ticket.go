package domain

const (
	TicketPaid     = "PAID"
	TicketCanceled = "CANCELED"
)

type Ticket struct {
	TicketUID    string `json:"ticketUid"`
	FlightNumber string `json:"flightNumber"`
	Price        int    `json:"price"`
	Status       string `json:"status"`
}

type TicketCreate struct {
	FlightNumber string `json:"flightNumber"`
	Price        int    `json:"price"`
}

// TicketDetail is a ticket enriched with the route of its flight.
// Composed per response, never stored.
type TicketDetail struct {
	TicketUID    string `json:"ticketUid"`
	FlightNumber string `json:"flightNumber"`
	FromAirport  string `json:"fromAirport"`
	ToAirport    string `json:"toAirport"`
	Date         string `json:"date"`
	Price        int    `json:"price"`
	Status       string `json:"status"`
}

type PurchaseRequest struct {
	FlightNumber    string `json:"flightNumber"`
	Price           int    `json:"price"`
	PaidFromBalance bool   `json:"paidFromBalance"`
}

type PurchaseResponse struct {
	TicketUID     string          `json:"ticketUid"`
	FlightNumber  string          `json:"flightNumber"`
	FromAirport   string          `json:"fromAirport"`
	ToAirport     string          `json:"toAirport"`
	Date          string          `json:"date"`
	Price         int             `json:"price"`
	PaidByMoney   int             `json:"paidByMoney"`
	PaidByBonuses int             `json:"paidByBonuses"`
	Status        string          `json:"status"`
	Privilege     *PrivilegeShort `json:"privilege,omitempty"` // nil when the post-purchase refresh failed
}

type UserInfo struct {
	Tickets   []TicketDetail `json:"tickets"`
	Privilege PrivilegeShort `json:"privilege"`
}
