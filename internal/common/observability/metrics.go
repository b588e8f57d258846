package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	signupCounter  otelmetric.Int64Counter
	signupDuration otelmetric.Float64Histogram
}

// New registers the OpenTelemetry meter with the default Prometheus registry.
func New(serviceName string) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
}

// NewWithRegisterer is New with an explicit registry, used by tests.
func NewWithRegisterer(serviceName string, reg promclient.Registerer) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	signupCounter, _ := meter.Int64Counter(
		"activity_signup_attempts",
		otelmetric.WithDescription("Signup attempts by outcome"),
	)

	signupDuration, _ := meter.Float64Histogram(
		"activity_signup_duration",
		otelmetric.WithDescription("Signup handling duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		signupCounter:  signupCounter,
		signupDuration: signupDuration,
	}
}

func (o *Observability) RecordSignup(ctx context.Context, activity, outcome string) {
	if o == nil || o.signupCounter == nil {
		return
	}
	o.signupCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("activity", activity),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordSignupDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o == nil || o.signupDuration == nil {
		return
	}
	o.signupDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
