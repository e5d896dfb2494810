package http

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/lumiforge/adpilot-backend/internal/jwt"
)

// SetupRouter creates and configures HTTP router
func SetupRouter(server *Server, jwtManager jwt.TokenManager) http.Handler {
	mux := http.NewServeMux()

	authOn := func(next http.Handler) http.Handler {
		return AuthMiddleware(jwtManager, next)
	}

	// Health check endpoint (no auth required)
	mux.Handle("/health", chainMiddleware(server.Health, methodMiddleware("GET")))

	// OpenAPI documentation endpoint (no auth required)
	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		// Serve the generated OpenAPI specification
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Read the generated swagger.json file
		data, err := os.ReadFile("docs/swagger.json")
		if err != nil {
			http.Error(w, "OpenAPI documentation not found", http.StatusNotFound)
			return
		}

		// Validate it's valid JSON
		var jsonData interface{}
		if err := json.Unmarshal(data, &jsonData); err != nil {
			http.Error(w, "Invalid OpenAPI documentation", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write(data)
	})

	// Auth routes (no auth required)
	mux.HandleFunc("/api/v1/auth/login", chainMiddleware(server.Login, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware))

	// Billing webhook (no auth, HMAC signature is verified over the raw body)
	mux.HandleFunc("/api/v1/billing/webhook", chainMiddleware(server.Webhook, methodMiddleware("POST"), RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware))

	// Plan catalog (no auth required)
	mux.HandleFunc("/api/v1/plans", chainMiddleware(server.GetPlans, methodMiddleware("GET"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware))

	// Subscription routes
	mux.HandleFunc("/api/v1/subscription", chainMiddleware(server.GetSubscription, methodMiddleware("GET"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authOn))
	mux.HandleFunc("/api/v1/subscription/trial", chainMiddleware(server.StartTrial, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))

	// Payment order routes
	mux.HandleFunc("/api/v1/orders/subscription", chainMiddleware(server.CreateSubscriptionOrder, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("/api/v1/orders/slots", chainMiddleware(server.CreateSlotOrder, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))

	// Entitlement routes
	mux.HandleFunc("/api/v1/entitlement/check", chainMiddleware(server.CheckEntitlement, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))

	// Admin routes
	mux.HandleFunc("PUT /api/v1/admin/users/{user_id}/overrides", chainMiddleware(server.UpsertOverride, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("DELETE /api/v1/admin/users/{user_id}/overrides", chainMiddleware(server.DeleteOverride, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("GET /api/v1/admin/users/{user_id}/overrides", chainMiddleware(server.ListOverrides, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authOn))
	mux.HandleFunc("POST /api/v1/admin/users/{user_id}/subscription", chainMiddleware(server.AssignSubscription, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("POST /api/v1/admin/slots/{slot_id}/extend", chainMiddleware(server.ExtendSlot, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("POST /api/v1/admin/slots/{slot_id}/force-expire", chainMiddleware(server.ForceExpireSlot, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("POST /api/v1/admin/slots/{slot_id}/adjust", chainMiddleware(server.AdjustSlotCapacity, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("GET /api/v1/admin/flags", chainMiddleware(server.GetFlags, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authOn))
	mux.HandleFunc("PUT /api/v1/admin/flags", chainMiddleware(server.UpdateFlags, CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, ContentTypeMiddleware, authOn))
	mux.HandleFunc("/api/v1/admin/subscriptions/expire-grace", chainMiddleware(server.ExpireGraceSweep, methodMiddleware("POST"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authOn))
	mux.HandleFunc("/api/v1/admin/audit-logs", chainMiddleware(server.GetAuditLogs, methodMiddleware("GET"), CORSMiddleware, RequestIDMiddleware, LoggingMiddleware, authOn))

	return mux
}

// chainMiddleware applies multiple middleware to a handler function
func chainMiddleware(handler http.HandlerFunc, middleware ...func(http.Handler) http.Handler) http.HandlerFunc {
	h := http.Handler(handler)
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}

// methodMiddleware creates middleware that checks for specific HTTP method
func methodMiddleware(method string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
