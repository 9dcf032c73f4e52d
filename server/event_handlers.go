package server

import (
	"net/http"
	"strconv"

	"nebulines/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) getLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathUUID(w, r, "leagueID")
	if !ok {
		return
	}

	league, err := s.services.Events.GetLeague(r.Context(), callerID(r), leagueID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, league)
}

func (s *Server) listLeagueEvents(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathUUID(w, r, "leagueID")
	if !ok {
		return
	}

	list, err := s.services.Events.ListLeagueEvents(r.Context(), callerID(r), leagueID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathUUID(w, r, "leagueID")
	if !ok {
		return
	}

	var req createEventRequest
	if !s.decode(w, r, &req) {
		return
	}

	input := service.NewEvent{
		Title:       req.Title,
		Description: req.Description,
		ClosesAt:    req.ClosesAt,
	}
	if req.OpensAt != nil {
		input.OpensAt = *req.OpensAt
	}

	event, err := s.services.Events.CreateEvent(r.Context(), callerID(r), leagueID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, event)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	detail, err := s.services.Events.GetEventDetail(r.Context(), callerID(r), eventID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

func (s *Server) listEventBets(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	bets, err := s.services.Events.ListEventBets(r.Context(), callerID(r), eventID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, bets)
}

func (s *Server) getEventLedger(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	ledger, err := s.services.Events.GetEventLedger(r.Context(), callerID(r), eventID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ledger)
}

func (s *Server) previewPayout(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	prediction, err := strconv.ParseBool(r.URL.Query().Get("prediction"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "prediction must be true or false")
		return
	}
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "amount must be an integer")
		return
	}

	preview, err := s.services.Events.PreviewPayout(r.Context(), callerID(r), eventID, prediction, amount)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, preview)
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := pathUUID(w, r, "leagueID")
	if !ok {
		return
	}
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	var req placeBetRequest
	if !s.decode(w, r, &req) {
		return
	}

	receipt, err := s.services.Betting.PlaceBet(r.Context(), callerID(r), leagueID, eventID, req.Amount, *req.Prediction)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, receipt)
}

func (s *Server) resolveEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}

	var req resolveEventRequest
	if !s.decode(w, r, &req) {
		return
	}

	settlement, err := s.services.Settlement.ResolveEvent(r.Context(), eventID, callerID(r), *req.Result)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, settlement)
}
