package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/daily-journal/internal/logger"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	statusHealthy       = "healthy"
	statusUnhealthy     = "unhealthy"
	defaultCheckTimeout = 5 * time.Second
)

// CheckFunc reports whether one backing service is reachable
type CheckFunc func(ctx context.Context) error

// HealthChecker handles health check requests for the queue worker
type HealthChecker struct {
	names   []string
	checks  map[string]CheckFunc
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewHealthChecker creates a health checker with no dependency checks registered
func NewHealthChecker(log *zap.Logger) *HealthChecker {
	return &HealthChecker{
		checks:  make(map[string]CheckFunc),
		timeout: defaultCheckTimeout,
		logger:  logger.OrNop(log),
		now:     time.Now,
	}
}

// Register adds a named dependency check. A nil fn is ignored so optional
// backends can be registered unconditionally.
func (h *HealthChecker) Register(name string, fn CheckFunc) {
	if fn == nil {
		return
	}
	if _, exists := h.checks[name]; !exists {
		h.names = append(h.names, name)
	}
	h.checks[name] = fn
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. Dependency checks only run with ?mode=extended.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    statusHealthy,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		h.writeJSON(w, http.StatusOK, response)
		return
	}

	response.Checks = make(map[string]string, len(h.names))
	for _, name := range h.names {
		if err := h.run(r.Context(), h.checks[name]); err != nil {
			response.Status = statusUnhealthy
			response.Checks[name] = statusUnhealthy + ": " + err.Error()
			h.logger.Warn("health_check_failed", zap.String("check", name), zap.Error(err))
			continue
		}
		response.Checks[name] = statusHealthy
	}

	statusCode := http.StatusOK
	if response.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	h.writeJSON(w, statusCode, response)
}

func (h *HealthChecker) run(ctx context.Context, fn CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return fn(ctx)
}

func (h *HealthChecker) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("health_response_encode_failed", zap.Error(err))
	}
}

// NewRouter builds the worker's HTTP surface. A nil tp uses the global tracer provider.
func NewRouter(h *HealthChecker, serviceName string, tp trace.TracerProvider) *mux.Router {
	var opts []otelmux.Option
	if tp != nil {
		opts = append(opts, otelmux.WithTracerProvider(tp))
	}
	r := mux.NewRouter()
	r.Use(otelmux.Middleware(serviceName, opts...))
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	return r
}
