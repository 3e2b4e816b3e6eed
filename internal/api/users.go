package api

import (
	"net/http"

	"github.com/erazemk/zamenjava/internal/market"
	"github.com/erazemk/zamenjava/internal/model"
)

// UsersHandler serves public profiles and reputation.
type UsersHandler struct {
	Market *market.Market
}

// Me handles GET /api/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.Market.Profile(r.Context(), actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	p, err := h.Market.Profile(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Ratings handles GET /api/users/{id}/ratings.
func (h *UsersHandler) Ratings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ratings, err := h.Market.UserRatings(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}
	jsonResponse(w, http.StatusOK, ratings)
}

// RatingStats handles GET /api/users/{id}/rating-stats.
func (h *UsersHandler) RatingStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	stats, err := h.Market.RatingStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Leaderboard handles GET /api/users/leaderboard?limit=.
func (h *UsersHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt64(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := h.Market.Leaderboard(r.Context(), int(limit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}

// TradeStats handles GET /api/me/trade-stats.
func (h *UsersHandler) TradeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Market.TradeStats(r.Context(), actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
