package api

import (
	"net/http"

	"github.com/erazemk/zamenjava/internal/market"
)

// RatingsHandler handles post-trade ratings.
type RatingsHandler struct {
	Market *market.Market
}

type updateRatingRequest struct {
	Stars   int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create handles POST /api/ratings. The reviewer is always the caller.
func (h *RatingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req market.RatingInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TradeID <= 0 {
		jsonError(w, http.StatusBadRequest, "trade_id required")
		return
	}
	req.ReviewerID = actor(r).UserID

	rating, err := h.Market.SubmitRating(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, rating)
}

// Update handles PUT /api/ratings/{id}.
func (h *RatingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid rating id")
		return
	}

	var req updateRatingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rating, err := h.Market.UpdateRating(r.Context(), actor(r).UserID, id, req.Stars, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rating)
}

// Delete handles DELETE /api/ratings/{id}.
func (h *RatingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid rating id")
		return
	}

	if err := h.Market.DeleteRating(r.Context(), actor(r).UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
