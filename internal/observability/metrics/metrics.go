package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	logins             metric.Int64Counter
	renewals           metric.Int64Counter
	checkoutIntents    metric.Int64Counter
	installmentToggles metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "carnefacil"
	}
	meter := provider.Meter(name)

	logins, err := meter.Int64Counter("carnefacil_logins_total")
	if err != nil {
		return nil, err
	}
	renewals, err := meter.Int64Counter("carnefacil_subscription_renewals_total")
	if err != nil {
		return nil, err
	}
	checkoutIntents, err := meter.Int64Counter("carnefacil_checkout_intents_total")
	if err != nil {
		return nil, err
	}
	installmentToggles, err := meter.Int64Counter("carnefacil_installment_toggles_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("carnefacil_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		logins:             logins,
		renewals:           renewals,
		checkoutIntents:    checkoutIntents,
		installmentToggles: installmentToggles,
		rateLimitDenied:    rateLimitDenied,
	}, nil
}

// RecordLogin increments successful login counts.
func (m *Metrics) RecordLogin(ctx context.Context) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1)
}

// RecordRenewal increments subscription renewal counts.
func (m *Metrics) RecordRenewal(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("provider", strings.TrimSpace(provider)))
	m.renewals.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCheckoutIntent increments created checkout preference counts.
func (m *Metrics) RecordCheckoutIntent(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("provider", strings.TrimSpace(provider)))
	m.checkoutIntents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInstallmentToggle increments installment status flip counts.
func (m *Metrics) RecordInstallmentToggle(ctx context.Context, newStatus string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(newStatus)))
	m.installmentToggles.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint": {},
	"status":   {},
	"provider": {},
	"reason":   {},
	"route":    {},
	"method":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
