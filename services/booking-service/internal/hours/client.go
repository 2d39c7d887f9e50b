package hours

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shinebook/shinebook/services/booking-service/internal/schedule"
)

// Client fetches availability configuration from the business service over
// HTTP. On any transport or decode failure it falls back to a static config
// so slot display degrades instead of breaking.
type Client struct {
	baseURL  string
	http     *http.Client
	fallback Config
}

func NewClient(baseURL string, fallback Config) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		fallback: fallback,
	}
}

type dayHoursPayload struct {
	Weekday int    `json:"weekday"`
	Open    bool   `json:"open"`
	Opens   string `json:"opens,omitempty"`
	Closes  string `json:"closes,omitempty"`
}

type configPayload struct {
	Timezone        string            `json:"timezone"`
	MinAdvanceHours int               `json:"min_advance_hours"`
	SlotStepMinutes int               `json:"slot_step_minutes"`
	BufferMinutes   int               `json:"buffer_minutes"`
	Hours           []dayHoursPayload `json:"hours"`
}

func (c *Client) AvailabilityConfig(ctx context.Context, date time.Time) (Config, error) {
	url := fmt.Sprintf("%s/api/v1/availability-config?date=%s", c.baseURL, date.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.fallback, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fallback, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.fallback, fmt.Errorf("availability config: unexpected status %d", resp.StatusCode)
	}

	var payload configPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return c.fallback, err
	}
	return payload.toConfig(c.fallback)
}

func (p configPayload) toConfig(fallback Config) (Config, error) {
	cfg := Config{
		Week:            schedule.WeekHours{},
		StepMinutes:     p.SlotStepMinutes,
		BufferMinutes:   p.BufferMinutes,
		MinAdvanceHours: p.MinAdvanceHours,
		Timezone:        p.Timezone,
	}
	if cfg.StepMinutes <= 0 {
		cfg.StepMinutes = fallback.StepMinutes
	}
	if cfg.BufferMinutes < 0 {
		cfg.BufferMinutes = fallback.BufferMinutes
	}
	if cfg.MinAdvanceHours < 0 {
		cfg.MinAdvanceHours = fallback.MinAdvanceHours
	}
	if cfg.Timezone == "" {
		cfg.Timezone = fallback.Timezone
	}
	for _, h := range p.Hours {
		if h.Weekday < 0 || h.Weekday > 6 {
			return fallback, fmt.Errorf("availability config: weekday %d out of range", h.Weekday)
		}
		if !h.Open {
			cfg.Week[time.Weekday(h.Weekday)] = schedule.DayHours{}
			continue
		}
		open, err := schedule.ParseMinute(h.Opens)
		if err != nil {
			return fallback, fmt.Errorf("availability config: bad open time %q: %w", h.Opens, err)
		}
		closeM, err := schedule.ParseMinute(h.Closes)
		if err != nil {
			return fallback, fmt.Errorf("availability config: bad close time %q: %w", h.Closes, err)
		}
		cfg.Week[time.Weekday(h.Weekday)] = schedule.DayHours{Open: true, OpenMinute: open, CloseMinute: closeM}
	}
	return cfg, nil
}
