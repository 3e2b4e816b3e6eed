package api

import (
	"net/http"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/geo"
	"github.com/erazemk/zamenjava/internal/market"
	"github.com/erazemk/zamenjava/internal/model"
)

// ItemsHandler handles item listing endpoints.
type ItemsHandler struct {
	Market *market.Market
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := queryInt64(r, "owner")
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	items, err := h.Market.ListItems(r.Context(), market.ItemQuery{
		OwnerID:   owner,
		Status:    q.Get("status"),
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Nearby handles GET /api/items/nearby?lat=&lon=&radius=. The caller's own
// items are left out.
func (h *ItemsHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, okLat, err := queryFloat(r, "lat")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lon, okLon, err := queryFloat(r, "lon")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !okLat || !okLon {
		writeError(w, r, apperr.Invalid("lat and lon are required"))
		return
	}
	radius, _, err := queryFloat(r, "radius")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ranked, err := h.Market.NearbyItems(r.Context(), geo.Point{Lat: lat, Lon: lon}, radius, actor(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ranked == nil {
		ranked = []geo.Ranked[model.Item]{}
	}
	jsonResponse(w, http.StatusOK, ranked)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req market.NewItem
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Market.PostItem(r.Context(), actor(r).UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Market.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req market.ItemUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Market.UpdateItem(r.Context(), actor(r).UserID, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}. The item is marked REMOVED rather
// than deleted so trade history keeps its references.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Market.RemoveItem(r.Context(), actor(r).UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}
