// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"flight_gateway/internal/adapters/backend"
	"flight_gateway/internal/app"
	"flight_gateway/internal/domain"
)

type Handlers struct {
	G    *app.Gateway
	Idem domain.IdempotencyStore // nil disables Idempotency-Key handling
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/manage/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	s.mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/flights", h.listFlights)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/me", h.getUserInfo)
			r.Get("/privilege", h.getPrivilege)
			r.Get("/tickets", h.listTickets)
			r.With(Idempotency(h.Idem)).Post("/tickets", h.buyTicket)
			r.Get("/tickets/{ticketUid}", h.getTicket)
			r.Delete("/tickets/{ticketUid}", h.cancelTicket)
		})
	})
}

// username is forwarded as received; RequireUser has rejected blank values.
func username(r *http.Request) string {
	return r.Header.Get(backend.UserHeader)
}

// pageQuery forwards pagination only when both page and size are given.
func pageQuery(r *http.Request) (domain.PageQuery, error) {
	var pg domain.PageQuery
	q := r.URL.Query()
	parse := func(name string) (int, bool, error) {
		s := q.Get(name)
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, false, domain.Invalid("%s must be a positive integer", name)
		}
		return n, true, nil
	}
	page, hasPage, err := parse("page")
	if err != nil {
		return pg, err
	}
	size, hasSize, err := parse("size")
	if err != nil {
		return pg, err
	}
	if hasPage && hasSize {
		pg.Page, pg.Size = page, size
	}
	return pg, nil
}

func ticketUID(r *http.Request) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, "ticketUid"))
	if err != nil {
		return "", domain.Invalid("ticketUid must be a UUID")
	}
	return id.String(), nil
}

func (h *Handlers) listFlights(w http.ResponseWriter, r *http.Request) {
	pg, err := pageQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.G.ListFlights(r.Context(), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getUserInfo(w http.ResponseWriter, r *http.Request) {
	out, err := h.G.GetUserInfo(r.Context(), username(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listTickets(w http.ResponseWriter, r *http.Request) {
	out, err := h.G.GetTickets(r.Context(), username(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getPrivilege(w http.ResponseWriter, r *http.Request) {
	out, err := h.G.GetPrivilege(r.Context(), username(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.G.GetTicket(r.Context(), username(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) cancelTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketUID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.G.CancelTicket(r.Context(), username(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) buyTicket(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, r, domain.Invalid("malformed purchase request"))
		return
	}
	req.FlightNumber = strings.TrimSpace(req.FlightNumber)
	if req.FlightNumber == "" {
		writeError(w, r, domain.Invalid("flightNumber is required"))
		return
	}
	if req.Price < 0 {
		writeError(w, r, domain.Invalid("price must not be negative"))
		return
	}

	out, err := h.G.BuyTicket(r.Context(), username(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
