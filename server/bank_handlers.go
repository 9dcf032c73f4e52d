package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	account, err := s.services.Bank.GetOrCreateAccount(r.Context(), callerID(r))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balanceResponse{
		UserID:  account.UserID.String(),
		Balance: account.Balance,
	})
}

func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	entries, err := s.services.Bank.GetLedger(r.Context(), callerID(r), limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !s.decode(w, r, &req) {
		return
	}

	entry, err := s.services.Bank.Withdraw(r.Context(), callerID(r), req.Amount, req.Description)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !s.decode(w, r, &req) {
		return
	}

	entry, err := s.services.Bank.Deposit(r.Context(), callerID(r), uuid.MustParse(req.UserID), req.Amount, req.Description)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}
