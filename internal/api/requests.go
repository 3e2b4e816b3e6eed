package api

import (
	"context"
	"net/http"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/market"
	"github.com/erazemk/zamenjava/internal/model"
)

// RequestsHandler handles trade request endpoints.
type RequestsHandler struct {
	Market *market.Market
}

type createRequestRequest struct {
	RequestedItemID int64 `json:"requested_item_id"`
	OfferedItemID   int64 `json:"offered_item_id"`
}

// Create handles POST /api/trade-requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RequestedItemID <= 0 || req.OfferedItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "requested_item_id and offered_item_id required")
		return
	}

	tr, err := h.Market.CreateRequest(r.Context(), actor(r).UserID, req.RequestedItemID, req.OfferedItemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, tr)
}

// List handles GET /api/trade-requests?box=received|sent&status=.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := actor(r).UserID
	status := r.URL.Query().Get("status")

	var (
		requests []model.TradeRequest
		err      error
	)
	switch box := r.URL.Query().Get("box"); box {
	case "", "received":
		requests, err = h.Market.ReceivedRequests(r.Context(), userID, status)
	case "sent":
		requests, err = h.Market.SentRequests(r.Context(), userID, status)
	default:
		err = apperr.Invalid("box must be received or sent")
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if requests == nil {
		requests = []model.TradeRequest{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Get handles GET /api/trade-requests/{id}.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	tr, err := h.Market.GetRequest(r.Context(), actor(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, tr)
}

// Accept handles POST /api/trade-requests/{id}/accept and returns the new trade.
func (h *RequestsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	trade, err := h.Market.AcceptRequest(r.Context(), actor(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, trade)
}

// Reject handles POST /api/trade-requests/{id}/reject.
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Market.RejectRequest)
}

// Cancel handles POST /api/trade-requests/{id}/cancel.
func (h *RequestsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Market.CancelRequest)
}

type requestAction func(ctx context.Context, actorID, requestID int64) (*model.TradeRequest, error)

func (h *RequestsHandler) respond(w http.ResponseWriter, r *http.Request, action requestAction) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	tr, err := action(r.Context(), actor(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, tr)
}
