package hours

import (
	"context"
	"time"

	"github.com/shinebook/shinebook/services/booking-service/internal/schedule"
)

// Config is the resolved availability configuration for one business day.
type Config struct {
	Week            schedule.WeekHours
	StepMinutes     int
	BufferMinutes   int
	MinAdvanceHours int
	Timezone        string
}

// Provider supplies the availability configuration used by slot enumeration
// and validation. Implementations must be safe for concurrent use.
type Provider interface {
	AvailabilityConfig(ctx context.Context, date time.Time) (Config, error)
}

type staticProvider struct {
	cfg Config
}

// NewStaticProvider returns a Provider that always serves cfg. It backs the
// service when no configuration endpoint is reachable.
func NewStaticProvider(cfg Config) Provider {
	return &staticProvider{cfg: cfg}
}

func (p *staticProvider) AvailabilityConfig(_ context.Context, _ time.Time) (Config, error) {
	return p.cfg, nil
}

// DefaultConfig is the fallback shop schedule: Monday through Saturday
// 08:00-18:00, closed Sunday, 30-minute slots with a 15-minute buffer and a
// 2-hour booking lead.
func DefaultConfig() Config {
	week := schedule.WeekHours{}
	for d := time.Monday; d <= time.Saturday; d++ {
		week[d] = schedule.DayHours{Open: true, OpenMinute: 480, CloseMinute: 1080}
	}
	return Config{
		Week:            week,
		StepMinutes:     30,
		BufferMinutes:   15,
		MinAdvanceHours: 2,
		Timezone:        "UTC",
	}
}
