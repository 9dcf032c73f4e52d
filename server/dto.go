package server

import (
	"encoding/json"
	"net/http"
	"time"
)

type createEventRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	OpensAt     *time.Time `json:"opens_at"`
	ClosesAt    time.Time  `json:"closes_at" validate:"required"`
}

// Amount is checked by the service so a stake below the minimum reports 422
type placeBetRequest struct {
	Amount     int64 `json:"amount"`
	Prediction *bool `json:"prediction" validate:"required"`
}

type resolveEventRequest struct {
	Result *bool `json:"result" validate:"required"`
}

type withdrawRequest struct {
	Amount      int64  `json:"amount" validate:"gt=0"`
	Description string `json:"description" validate:"max=200"`
}

type depositRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Description string `json:"description" validate:"max=200"`
}

type balanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// decode reads a JSON body into dst and validates it, answering 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
