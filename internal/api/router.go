package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/zamenjava/internal/auth"
	"github.com/erazemk/zamenjava/internal/market"
	"github.com/erazemk/zamenjava/internal/metrics"
)

// NewRouter creates the API router with all endpoints registered. mt may be
// nil, in which case /metrics is not served.
func NewRouter(db *sql.DB, m *market.Market, tokens *auth.Tokens, mt *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Tokens: tokens}
	usersHandler := &UsersHandler{Market: m}
	itemsHandler := &ItemsHandler{Market: m}
	requestsHandler := &RequestsHandler{Market: m}
	tradesHandler := &TradesHandler{Market: m}
	ratingsHandler := &RatingsHandler{Market: m}

	authMW := AuthMiddleware(tokens, db)
	protected := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	if mt != nil {
		mux.Handle("GET /metrics", mt.Handler())
	}

	// Session.
	mux.Handle("POST /api/auth/logout", protected(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", protected(authHandler.ChangePassword))

	// Users and reputation.
	mux.Handle("GET /api/me", protected(usersHandler.Me))
	mux.Handle("GET /api/me/trade-stats", protected(usersHandler.TradeStats))
	mux.Handle("GET /api/users/leaderboard", protected(usersHandler.Leaderboard))
	mux.Handle("GET /api/users/{id}", protected(usersHandler.Get))
	mux.Handle("GET /api/users/{id}/ratings", protected(usersHandler.Ratings))
	mux.Handle("GET /api/users/{id}/rating-stats", protected(usersHandler.RatingStats))

	// Items.
	mux.Handle("GET /api/items", protected(itemsHandler.List))
	mux.Handle("GET /api/items/nearby", protected(itemsHandler.Nearby))
	mux.Handle("POST /api/items", protected(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", protected(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", protected(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", protected(itemsHandler.Delete))

	// Trade requests.
	mux.Handle("POST /api/trade-requests", protected(requestsHandler.Create))
	mux.Handle("GET /api/trade-requests", protected(requestsHandler.List))
	mux.Handle("GET /api/trade-requests/{id}", protected(requestsHandler.Get))
	mux.Handle("POST /api/trade-requests/{id}/accept", protected(requestsHandler.Accept))
	mux.Handle("POST /api/trade-requests/{id}/reject", protected(requestsHandler.Reject))
	mux.Handle("POST /api/trade-requests/{id}/cancel", protected(requestsHandler.Cancel))

	// Trades.
	mux.Handle("GET /api/trades", protected(tradesHandler.List))
	mux.Handle("GET /api/trades/{id}", protected(tradesHandler.Get))
	mux.Handle("POST /api/trades/{id}/complete", protected(tradesHandler.Complete))
	mux.Handle("POST /api/trades/{id}/cancel", protected(tradesHandler.Cancel))

	// Ratings.
	mux.Handle("POST /api/ratings", protected(ratingsHandler.Create))
	mux.Handle("PUT /api/ratings/{id}", protected(ratingsHandler.Update))
	mux.Handle("DELETE /api/ratings/{id}", protected(ratingsHandler.Delete))

	return mt.Middleware(LoggingMiddleware(mux))
}
