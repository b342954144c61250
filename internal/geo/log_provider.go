package geo

import (
	"context"
	"log/slog"
)

// LogProvider is a MockProvider that records every call to the log and
// succeeds. It is the default backend when no device bridge is wired in,
// which keeps the whole pipeline exercisable on any host.
type LogProvider struct {
	log *slog.Logger
}

// NewLogProvider returns a provider logging at info level.
func NewLogProvider(log *slog.Logger) *LogProvider {
	return &LogProvider{log: log.With("component", "mock-provider")}
}

func (p *LogProvider) EnableMockMode(context.Context) error {
	p.log.Info("mock mode enabled")
	return nil
}

func (p *LogProvider) SubmitLocation(_ context.Context, fix Fix) error {
	p.log.Info("mock location submitted",
		"latitude", fix.Latitude,
		"longitude", fix.Longitude,
		"accuracy", fix.Accuracy,
		"time", fix.Time,
	)
	return nil
}

func (p *LogProvider) DisableMockMode(context.Context) error {
	p.log.Info("mock mode disabled")
	return nil
}

// compile-time check
var _ MockProvider = (*LogProvider)(nil)
