package app

import "flight_gateway/internal/domain"

// Correlate joins each ticket with the flight carrying its flight number.
// Output order follows tickets. A ticket whose flight is absent from flights
// yields a *domain.CorrelationError; tickets are never dropped or null-filled.
func Correlate(tickets []domain.Ticket, flights []domain.Flight) ([]domain.TicketDetail, error) {
	byNumber := make(map[string]domain.Flight, len(flights))
	for _, f := range flights {
		if _, seen := byNumber[f.FlightNumber]; !seen { // first match wins
			byNumber[f.FlightNumber] = f
		}
	}

	out := make([]domain.TicketDetail, 0, len(tickets))
	for _, t := range tickets {
		f, ok := byNumber[t.FlightNumber]
		if !ok {
			return nil, &domain.CorrelationError{TicketUID: t.TicketUID, FlightNumber: t.FlightNumber}
		}
		out = append(out, detail(t, f))
	}
	return out, nil
}

func detail(t domain.Ticket, f domain.Flight) domain.TicketDetail {
	return domain.TicketDetail{
		TicketUID:    t.TicketUID,
		FlightNumber: t.FlightNumber,
		FromAirport:  f.FromAirport,
		ToAirport:    f.ToAirport,
		Date:         f.Date,
		Price:        t.Price,
		Status:       t.Status,
	}
}

// flightNumbers returns the distinct flight numbers of tickets in first-seen order.
func flightNumbers(tickets []domain.Ticket) []string {
	seen := make(map[string]struct{}, len(tickets))
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		if _, ok := seen[t.FlightNumber]; ok {
			continue
		}
		seen[t.FlightNumber] = struct{}{}
		out = append(out, t.FlightNumber)
	}
	return out
}
