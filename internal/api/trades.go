package api

import (
	"net/http"

	"github.com/erazemk/zamenjava/internal/market"
	"github.com/erazemk/zamenjava/internal/model"
)

// TradesHandler handles trade lifecycle endpoints.
type TradesHandler struct {
	Market *market.Market
}

// List handles GET /api/trades?status=.
func (h *TradesHandler) List(w http.ResponseWriter, r *http.Request) {
	trades, err := h.Market.ListTrades(r.Context(), actor(r).UserID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if trades == nil {
		trades = []model.Trade{}
	}
	jsonResponse(w, http.StatusOK, trades)
}

// Get handles GET /api/trades/{id}.
func (h *TradesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	trade, err := h.Market.GetTrade(r.Context(), actor(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, trade)
}

// Complete handles POST /api/trades/{id}/complete.
func (h *TradesHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	trade, err := h.Market.CompleteTrade(r.Context(), actor(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, trade)
}

// Cancel handles POST /api/trades/{id}/cancel.
func (h *TradesHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	trade, err := h.Market.CancelTrade(r.Context(), actor(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, trade)
}
