package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sebuszqo/VendorLedger/internal/auth"
	"github.com/sebuszqo/VendorLedger/internal/ledger/interfaces"
	"github.com/sebuszqo/VendorLedger/internal/metrics"
	"github.com/sebuszqo/VendorLedger/internal/response"
)

type Response struct {
	Message string `json:"message"`
}

type Server struct {
	router         *http.ServeMux
	responder      *response.Responder
	logger         *slog.Logger
	metrics        *metrics.MetricsCollector
	authHandler    *auth.Handler
	authMiddleware func(http.Handler) http.Handler
	vendorHandler  *interfaces.VendorHandler
	accountHandler *interfaces.AccountHandler
	paymentHandler *interfaces.PaymentHandler
	health         func(ctx context.Context) map[string]string
	requestTimeout time.Duration
	corsOrigin     string
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, recorder.status, duration)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", duration,
		)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHello(w http.ResponseWriter, _ *http.Request) {
	s.responder.JSON(w, http.StatusOK, Response{Message: "Hello World!"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.health(r.Context())
	if stats["status"] != "up" {
		s.responder.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "not ready", "database": stats})
		return
	}
	s.responder.JSON(w, http.StatusOK, map[string]interface{}{"status": "ready", "database": stats})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(response.Envelope{Success: false, Message: "Path not found"})
}

func (s *Server) protected(handler http.HandlerFunc) http.Handler {
	return s.authMiddleware(handler)
}

func (s *Server) protectedWithID(handler http.HandlerFunc, resource string) http.Handler {
	return s.authMiddleware(interfaces.ValidateUUIDPathParam(handler, s.responder.Error, "id", resource))
}

func (s *Server) RegisterRoutes() {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", s.handleHello)
	router.HandleFunc("GET /ready", s.handleReady)
	router.Handle("GET /metrics", s.metrics.GetHandler())

	router.HandleFunc("POST /auth/register", s.authHandler.HandleRegister)
	router.HandleFunc("POST /auth/login", s.authHandler.HandleLogin)
	router.HandleFunc("POST /auth/logout", s.authHandler.HandleLogout)
	router.HandleFunc("GET /auth/confirm", s.authHandler.HandleConfirm)
	router.Handle("GET /auth/me", s.protected(s.authHandler.HandleMe))

	router.Handle("GET /vendors", s.protected(s.vendorHandler.ListVendors))
	router.Handle("POST /vendors", s.protected(s.vendorHandler.CreateVendor))
	router.Handle("GET /vendors/{id}", s.protectedWithID(s.vendorHandler.GetVendor, "Vendor"))
	router.Handle("PUT /vendors/{id}", s.protectedWithID(s.vendorHandler.UpdateVendor, "Vendor"))
	router.Handle("DELETE /vendors/{id}", s.protectedWithID(s.vendorHandler.DeleteVendor, "Vendor"))

	router.Handle("GET /accounts", s.protected(s.accountHandler.ListAccounts))
	router.Handle("GET /accounts/{id}", s.protectedWithID(s.accountHandler.GetAccount, "Account"))

	router.Handle("GET /payments", s.protected(s.paymentHandler.ListPayments))
	router.Handle("POST /payments", s.protected(s.paymentHandler.CreatePayment))
	router.Handle("GET /payments/{id}", s.protectedWithID(s.paymentHandler.GetPayment, "Payment"))
	router.Handle("PUT /payments/{id}", s.protectedWithID(s.paymentHandler.UpdatePayment, "Payment"))
	router.Handle("DELETE /payments/{id}", s.protectedWithID(s.paymentHandler.DeletePayment, "Payment"))
	router.Handle("POST /payments/{id}/confirm", s.protectedWithID(s.paymentHandler.ConfirmPayment, "Payment"))

	router.Handle("GET /report", s.protected(s.accountHandler.GetReport))

	router.HandleFunc("/", notFoundHandler)

	s.router = router
}

// Handler wraps the router with the middleware chain applied to every request.
// Logging sits directly on the router so it sees the matched pattern.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.timeoutMiddleware(s.loggingMiddleware(s.router)))
}
