package schedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hopewell-clinic/booking-api/internal/model"
	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

// TokenProvider supplies the bearer token per request. Injected so the
// client never reaches for ambient session state.
type TokenProvider func(ctx context.Context) (string, error)

// Config is the explicit construction-time configuration: no global client,
// no hard-coded base URL.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	TokenProvider TokenProvider
}

// Client talks to the upstream scheduling service. Transport failures are
// classified into the application taxonomy: 401/403 become auth errors that
// must reach the re-authentication path, 404 and 5xx become fallback-eligible
// failures, 409 becomes a slot conflict.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
	maxRetries int
	backoff    time.Duration
	logger     *zerolog.Logger
}

func New(cfg Config, logger *zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("scheduling client requires a base URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		tokens:     cfg.TokenProvider,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		logger:     logger,
	}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) GetDoctorsOnDuty(ctx context.Context, date time.Time) ([]model.DoctorOnDuty, error) {
	query := url.Values{"date": {date.Format(model.DateOnly)}}
	var doctors []model.DoctorOnDuty
	if err := c.get(ctx, "/api/v1/doctors/on-duty", query, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (c *Client) GetAllDoctors(ctx context.Context) ([]*model.Doctor, error) {
	var doctors []*model.Doctor
	if err := c.get(ctx, "/api/v1/doctors", nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (c *Client) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	query := url.Values{
		"doctor_id": {doctorID.String()},
		"date":      {date.Format(model.DateOnly)},
	}
	var slots []model.TimeSlot
	if err := c.get(ctx, "/api/v1/appointments/availability", query, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) GetAllAppointments(ctx context.Context) ([]*model.Appointment, error) {
	var appointments []*model.Appointment
	if err := c.get(ctx, "/api/v1/appointments", nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (c *Client) GetServices(ctx context.Context) ([]*model.Service, error) {
	var services []*model.Service
	if err := c.get(ctx, "/api/v1/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	attempts := c.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		err := c.once(ctx, method, endpoint, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		// Only infrastructure failures are worth retrying; an auth or
		// not-found answer will not change on the next attempt.
		if !apperrors.IsInfrastructure(err) {
			return err
		}
		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Msg("upstream request failed, retrying")
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return apperrors.Auth("failed to obtain upstream token", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperrors.Infrastructure("upstream unreachable", err)
	}
	defer res.Body.Close()

	if err := classifyStatus(res.StatusCode); err != nil {
		return err
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return apperrors.Infrastructure("failed to read upstream response", err)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperrors.Infrastructure("malformed upstream response", err)
	}
	if !env.Success {
		message := "upstream reported failure"
		if env.Error != nil {
			message = env.Error.Message
		}
		return apperrors.Infrastructure(message, nil)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.Infrastructure("malformed upstream payload", err)
	}
	return nil
}

func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Auth(fmt.Sprintf("upstream returned %d", status), nil)
	case status == http.StatusNotFound:
		return apperrors.NotFound("upstream endpoint", nil)
	case status == http.StatusConflict:
		return apperrors.SlotConflict("upstream rejected the interval")
	case status >= 400 && status < 500:
		return apperrors.Validationf("upstream rejected the request with %d", status)
	default:
		return apperrors.Infrastructure(fmt.Sprintf("upstream returned %d", status), nil)
	}
}
