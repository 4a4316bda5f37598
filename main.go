package main

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/event-planner-client/common/config"
	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/jwt"
	"github.com/event-planner-client/common/logger"
	"github.com/event-planner-client/common/response"
	"github.com/event-planner-client/common/session"
	eventHandler "github.com/event-planner-client/services/event-detail/handler"
	eventRepository "github.com/event-planner-client/services/event-detail/repository"
)

type lambdaHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// adaptRequest converts http.Request to APIGatewayProxyRequest
func adaptRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	defer r.Body.Close()

	headers := make(map[string]string)
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[key] = strings.Join(values, "; ")
		}
	}

	queryParams := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			queryParams[key] = values[0]
		}
	}

	pathParams := map[string]string{}
	if id := r.PathValue("id"); id != "" {
		pathParams["id"] = id
	}

	return events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		QueryStringParameters: queryParams,
		PathParameters:        pathParams,
		Body:                  string(body),
	}, nil
}

// writeResponse writes APIGatewayProxyResponse to http.ResponseWriter
func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			http.Error(w, "Failed to decode response", http.StatusInternalServerError)
			return
		}
		body = decoded
	}

	w.WriteHeader(resp.StatusCode)
	w.Write(body)
}

// corsMiddleware handles CORS preflight requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for key, value := range response.CORSHeaders {
			w.Header().Set(key, value)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogMiddleware tags each request with an id and logs its outcome
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := context.WithValue(r.Context(), logger.RequestIDKey, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.WithContext(ctx).LogRequest(logger.RequestLog{
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    rec.status,
			Duration:  time.Since(start),
			RequestID: requestID,
		})
	})
}

// serve runs a lambda-style handler behind net/http
func serve(h lambdaHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := adaptRequest(r)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		resp, err := h(r.Context(), req)
		if err != nil {
			logger.WithContext(r.Context()).WithError(err).Error("Handler failed for %s %s", r.Method, r.URL.Path)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeResponse(w, resp)
	}
}

// newMux registers the page routes, health and (optionally) metrics
func newMux(h *eventHandler.EventDetailHandler, metricsEnabled bool) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /event/{id}", serve(h.HandleEventPage))
	mux.HandleFunc("POST /event/{id}/delete", serve(h.HandleDeleteEvent))
	mux.HandleFunc("POST /event/{id}/join", serve(h.HandleJoinEvent))
	mux.HandleFunc("GET /event/{id}/sheet.pdf", serve(h.HandleEventSheet))
	mux.HandleFunc("GET /api/view/{id}", serve(h.HandleViewJSON))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if metricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

// lambdaRouter dispatches API Gateway proxy events to the same handlers the HTTP server uses
func lambdaRouter(h *eventHandler.EventDetailHandler) lambdaHandler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		segs := strings.Split(strings.Trim(req.Path, "/"), "/")
		method := req.HTTPMethod

		switch {
		case method == http.MethodOptions:
			return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: response.CORSHeaders}, nil
		case method == http.MethodGet && len(segs) == 2 && segs[0] == "event":
			return h.HandleEventPage(ctx, req)
		case method == http.MethodPost && len(segs) == 3 && segs[0] == "event" && segs[2] == "delete":
			return h.HandleDeleteEvent(ctx, req)
		case method == http.MethodPost && len(segs) == 3 && segs[0] == "event" && segs[2] == "join":
			return h.HandleJoinEvent(ctx, req)
		case method == http.MethodGet && len(segs) == 3 && segs[0] == "event" && segs[2] == "sheet.pdf":
			return h.HandleEventSheet(ctx, req)
		case method == http.MethodGet && len(segs) == 3 && segs[0] == "api" && segs[1] == "view":
			return h.HandleViewJSON(ctx, req)
		case method == http.MethodGet && req.Path == "/health":
			return response.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
		return response.Error(apperrors.NotFound("route"))
	}
}

func newEventDetailHandler(cfg *config.Config) *eventHandler.EventDetailHandler {
	var verifier *jwt.Verifier
	if cfg.JWTSecret != "" {
		verifier = jwt.NewVerifier(cfg.JWTSecret)
	}
	var cookieVerifier *jwt.Verifier
	if cfg.VerifySessionToken {
		cookieVerifier = verifier
	}

	repo := eventRepository.NewEventRepository(eventRepository.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
	})

	return eventHandler.NewEventDetailHandler(eventHandler.Config{
		Service: repo,
		Sessions: session.Chain{
			session.NewCookieSource(cfg.SessionCookie, cookieVerifier),
			session.NewBearerSource(verifier),
		},
		PublicBaseURL:   cfg.PublicBaseURL,
		NavigateDelay:   cfg.NavigateDelay,
		NotificationTTL: cfg.NotificationTTL,
	})
}

func main() {
	logger.SetDefault(logger.New(nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	h := newEventDetailHandler(cfg)

	// ======================= LAMBDA =======================
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		logger.Info("Starting in Lambda mode")
		lambda.Start(lambdaRouter(h))
		return
	}

	// ======================= HTTP SERVER =======================
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           requestLogMiddleware(corsMiddleware(newMux(h, cfg.MetricsEnabled))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed: %v", err)
		}
	}()

	logger.Info("Event detail client listening on :%s (API %s)", cfg.Port, cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to start server: %v", err)
		os.Exit(1)
	}
}
