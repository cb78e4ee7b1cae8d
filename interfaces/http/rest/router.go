// Package rest serves the handler over HTTP for local development.
package rest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	apperrors "draftsync-backend/pkg/errors"
)

// maxEventSize matches the Lambda asynchronous invocation payload limit
const maxEventSize = 256 << 10

// Invoker runs one trigger event the way the Lambda runtime would
type Invoker interface {
	Handle(ctx context.Context, event []byte) (string, error)
}

// InvokerFunc adapts a function to Invoker
type InvokerFunc func(ctx context.Context, event []byte) (string, error)

// Handle calls f
func (f InvokerFunc) Handle(ctx context.Context, event []byte) (string, error) {
	return f(ctx, event)
}

// Status reports the lazily initialized state
type Status interface {
	Loaded() bool
}

// ConnectionStatus reports whether the database handle is cached
type ConnectionStatus interface {
	Connected() bool
}

// Router creates and configures the HTTP router
type Router struct {
	invoker    Invoker
	config     Status
	connection ConnectionStatus
	metrics    http.Handler
	logger     *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	invoker Invoker,
	config Status,
	connection ConnectionStatus,
	metrics http.Handler,
	logger *zap.Logger,
) *Router {
	return &Router{
		invoker:    invoker,
		config:     config,
		connection: connection,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(rt.logger))

	router.Post("/invoke", rt.invoke)
	router.Get("/healthz", rt.healthCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics)
	}

	return router
}

// invoke runs the request body as a trigger event
func (rt *Router) invoke(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventSize+1))
	if err != nil {
		rt.writeError(w, apperrors.NewTransformError("failed to read event body").WithCause(err))
		return
	}
	if len(body) > maxEventSize {
		rt.writeError(w, apperrors.NewTransformError("event exceeds 256 KiB"))
		return
	}

	// Handlers read the request ID from the Lambda context
	ctx := lambdacontext.NewContext(r.Context(), &lambdacontext.LambdaContext{
		AwsRequestID: chimiddleware.GetReqID(r.Context()),
	})

	result, err := rt.invoker.Handle(ctx, body)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

// healthCheck reports liveness plus the lazy init state. Nothing is loaded
// before the first event, so both flags may be false on a healthy process.
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	rt.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"config_loaded": rt.config.Loaded(),
		"connected":     rt.connection.Connected(),
	})
}

type errorBody struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Type: string(apperrors.ErrorTypeInternal), Message: err.Error()}
	if appErr := apperrors.GetAppError(err); appErr != nil {
		body = errorBody{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}
	rt.writeJSON(w, StatusCode(err), map[string]interface{}{"error": body})
}

func (rt *Router) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rt.logger.Warn("Failed to write response", zap.Error(err))
	}
}

// StatusCode maps an error kind to the HTTP status the local server answers with
func StatusCode(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeTransform, apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeConfigLoad, apperrors.ErrorTypeConnection:
		return http.StatusServiceUnavailable
	case apperrors.ErrorTypeUpsert, apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
