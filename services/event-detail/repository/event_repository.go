package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/logger"
	"github.com/event-planner-client/common/metrics"
	"github.com/event-planner-client/services/event-detail/models"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 1 << 20

// Config holds event service connection settings
type Config struct {
	BaseURL string // e.g. http://localhost:8080/api
	Timeout time.Duration
}

// EventRepository talks to the event service REST API
type EventRepository struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewEventRepository creates a repository for the given API root
func NewEventRepository(cfg Config) *EventRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &EventRepository{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: logger.With("component", "event_repository"),
	}
}

// ============================================================
// Reads
// ============================================================

// GetEvent handles GET /events/{eventId}.
// A non-success status is reported as NotFound; no response at all as TransportFailure.
func (r *EventRepository) GetEvent(ctx context.Context, eventID int) (*models.EventDTO, error) {
	var dto models.EventDTO
	status, err := r.getJSON(ctx, "get_event", fmt.Sprintf("/events/%d", eventID), &dto)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apperrors.NotFound("event").WithField("status", status).WithField("event_id", eventID)
	}
	return &dto, nil
}

// GetVenue handles GET /venues/{venueId}
func (r *EventRepository) GetVenue(ctx context.Context, venueID int) (*models.Venue, error) {
	var venue models.Venue
	status, err := r.getJSON(ctx, "get_venue", fmt.Sprintf("/venues/%d", venueID), &venue)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apperrors.PartialFetchFailure("venue", status)
	}
	return &venue, nil
}

// GetBooking handles GET /bookings/{eventId}
func (r *EventRepository) GetBooking(ctx context.Context, eventID int) (*models.VenueBookingDTO, error) {
	var booking models.VenueBookingDTO
	status, err := r.getJSON(ctx, "get_booking", fmt.Sprintf("/bookings/%d", eventID), &booking)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apperrors.PartialFetchFailure("venue booking", status)
	}
	return &booking, nil
}

// GetBudget handles GET /budget/{eventId}
func (r *EventRepository) GetBudget(ctx context.Context, eventID int) (*models.Budget, error) {
	var budget models.Budget
	status, err := r.getJSON(ctx, "get_budget", fmt.Sprintf("/budget/%d", eventID), &budget)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apperrors.PartialFetchFailure("budget", status)
	}
	return &budget, nil
}

// ============================================================
// Mutations
// ============================================================

// DeleteEvent handles DELETE /events/{eventId}/delete.
// A non-success status comes back as ActionFailure carrying the raw response body.
func (r *EventRepository) DeleteEvent(ctx context.Context, eventID int) error {
	status, body, err := r.do(ctx, "delete_event", http.MethodDelete, fmt.Sprintf("/events/%d/delete", eventID), nil, "")
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return apperrors.ActionFailure("delete", status, failureText(status, body))
	}
	return nil
}

// JoinEvent handles POST /guests/{ownerUserId}/manage with a bearer token
func (r *EventRepository) JoinEvent(ctx context.Context, ownerUserID int, req models.JoinRequest, token string) error {
	status, body, err := r.do(ctx, "join_event", http.MethodPost, fmt.Sprintf("/guests/%d/manage", ownerUserID), req, token)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return apperrors.ActionFailure("join", status, failureText(status, body))
	}
	return nil
}

// ============================================================
// Transport
// ============================================================

func (r *EventRepository) getJSON(ctx context.Context, operation, path string, out interface{}) (int, error) {
	status, body, err := r.do(ctx, operation, http.MethodGet, path, nil, "")
	if err != nil {
		return 0, err
	}
	if !isSuccess(status) {
		return status, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return status, apperrors.InvalidFormat(operation+" response", truncate(string(body), 120)).WithCause(err)
	}
	return status, nil
}

// do performs one call. err is non-nil only when no usable response arrived.
func (r *EventRepository) do(ctx context.Context, operation, method, path string, payload interface{}, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, apperrors.Internal("failed to encode request").WithCause(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return 0, nil, apperrors.Internal("failed to build request").WithCause(err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveRequest(operation, 0, elapsed)
		r.log.LogRequest(logger.RequestLog{Method: method, Path: path, Duration: elapsed, RequestID: requestID, Error: err.Error()})
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, apperrors.TransportFailure(err).WithField("operation", operation)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveRequest(operation, resp.StatusCode, elapsed)
	r.log.LogRequest(logger.RequestLog{Method: method, Path: path, Status: resp.StatusCode, Duration: elapsed, RequestID: requestID})
	if err != nil {
		return 0, nil, apperrors.TransportFailure(err).WithField("operation", operation)
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func failureText(status int, body []byte) string {
	if strings.TrimSpace(string(body)) == "" {
		return fmt.Sprintf("Request failed with status %d", status)
	}
	return string(body)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
