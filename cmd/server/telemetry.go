package main

import (
	"context"
	"time"

	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

type telemetryProviders struct {
	traces   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// setupTelemetry starts whichever OpenTelemetry signals and the Pyroscope
// profiler the configuration enables. A provider that fails to start is
// logged and left out; meters always exist, as a no-op at worst.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryProviders {
	tc := cfg.Telemetry
	tel := &telemetryProviders{}

	var err error
	if tel.traces, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    tc.ServiceVersion,
		Insecure:          tc.Insecure,
	}, log); err != nil {
		log.Warn("Tracing unavailable", zap.Error(err))
	}

	if tel.meters, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled && tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    tc.ServiceVersion,
		Insecure:          tc.Insecure,
	}, log); err != nil {
		log.Warn("Metrics export unavailable", zap.Error(err))
		tel.meters, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, log)
	}

	if tel.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled && tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		ServiceVersion:    tc.ServiceVersion,
		Insecure:          tc.Insecure,
	}, log); err != nil {
		log.Warn("Log export unavailable", zap.Error(err))
	}

	if tel.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.PyroscopeEndpoint,
		ApplicationName: tc.ServiceName,
		Country:         cfg.App.Country,
	}, log); err != nil {
		log.Warn("Profiler unavailable", zap.Error(err))
	}
	if tel.traces != nil && tel.profiler != nil && tel.profiler.IsEnabled() {
		if err := tel.traces.EnableSpanProfiles(); err != nil {
			log.Warn("Spans not linked to profiles", zap.Error(err))
		}
	}
	return tel
}

// shutdown stops the profiler, then flushes each signal.
func (t *telemetryProviders) shutdown(log *zap.Logger) {
	if t.profiler != nil {
		if err := t.profiler.Stop(); err != nil {
			log.Warn("Error stopping profiler", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for name, p := range map[string]interface{ Shutdown(context.Context) error }{
		"traces":  t.traces,
		"metrics": t.meters,
		"logs":    t.logs,
	} {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Error flushing telemetry", zap.String("signal", name), zap.Error(err))
		}
	}
}
