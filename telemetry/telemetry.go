// Package telemetry holds the OpenTelemetry instruments the session loop
// records into. Without an SDK installed the global meter is a no-op.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "drivesim/telemetry"

type Instruments struct {
	ticks       metric.Int64Counter
	speed       metric.Float64Histogram
	sessions    metric.Int64UpDownCounter
	transitions metric.Int64Counter
}

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Default builds instruments on the global meter provider.
func Default() (*Instruments, error) {
	return New(meter())
}

func New(m metric.Meter) (*Instruments, error) {
	ticks, err := m.Int64Counter("drivesim.ticks",
		metric.WithDescription("Simulation frames advanced"))
	if err != nil {
		return nil, fmt.Errorf("ticks counter: %w", err)
	}
	speed, err := m.Float64Histogram("drivesim.speed",
		metric.WithDescription("Vehicle speed readout per frame"),
		metric.WithUnit("km/h"))
	if err != nil {
		return nil, fmt.Errorf("speed histogram: %w", err)
	}
	sessions, err := m.Int64UpDownCounter("drivesim.sessions.active",
		metric.WithDescription("Driving sessions with an attached driver"))
	if err != nil {
		return nil, fmt.Errorf("sessions counter: %w", err)
	}
	transitions, err := m.Int64Counter("drivesim.device.transitions",
		metric.WithDescription("Pad connect/disconnect/switch events"))
	if err != nil {
		return nil, fmt.Errorf("device transitions counter: %w", err)
	}
	return &Instruments{ticks: ticks, speed: speed, sessions: sessions, transitions: transitions}, nil
}

// Frame records one advanced frame. A nil receiver records nothing.
func (i *Instruments) Frame(ctx context.Context, variant, source string, speedKmh int) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("variant", variant),
		attribute.String("source", source),
	)
	i.ticks.Add(ctx, 1, attrs)
	i.speed.Record(ctx, float64(speedKmh), attrs)
}

func (i *Instruments) SessionStarted(ctx context.Context) {
	if i == nil {
		return
	}
	i.sessions.Add(ctx, 1)
}

func (i *Instruments) SessionEnded(ctx context.Context) {
	if i == nil {
		return
	}
	i.sessions.Add(ctx, -1)
}

func (i *Instruments) DeviceTransition(ctx context.Context, state string) {
	if i == nil {
		return
	}
	i.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}
