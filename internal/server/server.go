// Package server exposes the valuation engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/dcf-valuation/internal/financials"
	"github.com/iwvelando/dcf-valuation/internal/valuation"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// Options tunes a handler built by NewHandler.
type Options struct {
	MaxBodySize    int64
	AllowedOrigins []string
	Version        string
}

type handler struct {
	logger         *zap.Logger
	service        *valuation.Service
	maxBodySize    int64
	allowedOrigins []string
	version        string
}

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error     string       `json:"error"`
	Fields    []fieldError `json:"fields,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

// NewHandler constructs the HTTP handler that serves the valuation API.
func NewHandler(logger *zap.Logger, service *valuation.Service, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if service == nil {
		service = valuation.NewService(logger, dcf.Bounds{}, nil)
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		service:        service,
		maxBodySize:    opts.MaxBodySize,
		allowedOrigins: opts.AllowedOrigins,
		version:        trimmedVersion,
	}

	mux := http.NewServeMux()

	// Valuation endpoint
	mux.HandleFunc("/dcf", h.handleValuation)

	// Ticker lookup used to prefill the form
	mux.HandleFunc("/financials", h.handleFinancials)

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/health", h.handleHealth)

	return h.withRequestID(h.withCORS(mux))
}

func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (h *handler) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := h.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) allowOrigin(origin string) string {
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func (h *handler) handleValuation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleValuation"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		filled, err := h.service.Prefill(r.Context(), symbol, payload)
		if err != nil {
			h.respondLookupError(w, r, err, op)
			return
		}
		payload = filled
	}

	report, err := h.service.Value(payload)
	if err != nil {
		h.respondValuationError(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, valuation.NewResponse(report))
}

func (h *handler) handleFinancials(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleFinancials"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	f, err := h.service.Lookup(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		h.respondLookupError(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, f)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"financials": h.service.HasProvider(),
	})
}

func (h *handler) respondValuationError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if fieldErrs := dcf.FieldErrors(err); len(fieldErrs) > 0 {
		fields := make([]fieldError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fieldError{Field: fe.Field, Reason: fe.Reason.Error()})
		}
		h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     err.Error(),
			Fields:    fields,
			RequestID: requestID(r),
		})
		return
	}

	switch {
	case errors.Is(err, dcf.ErrNonFiniteResult):
		h.respondError(w, r, http.StatusUnprocessableEntity, err.Error(), op)
	default:
		h.respondError(w, r, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondLookupError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, valuation.ErrNoProvider):
		status = http.StatusServiceUnavailable
	case errors.Is(err, financials.ErrEmptySymbol), errors.Is(err, financials.ErrNoData):
		status = http.StatusBadRequest
	}
	h.respondError(w, r, status, err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	id := requestID(r)
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("request_id", id),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request rejected", fields...)
	}

	h.writeJSON(w, status, errorResponse{Error: msg, RequestID: id})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}
