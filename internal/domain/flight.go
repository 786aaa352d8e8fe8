package domain

type Flight struct {
	FlightNumber string `json:"flightNumber"`
	FromAirport  string `json:"fromAirport"`
	ToAirport    string `json:"toAirport"`
	Date         string `json:"date"`
	Price        int    `json:"price"`
}

// FlightsPage is the flight backend's paginated list envelope; the gateway
// forwards it as is.
type FlightsPage struct {
	Page          int      `json:"page"`
	PageSize      int      `json:"pageSize"`
	TotalElements int      `json:"totalElements"`
	Items         []Flight `json:"items"`
}

type PageQuery struct {
	Page, Size int // both zero: backend default
}
