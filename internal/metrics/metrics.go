// Package metrics wires the pipeline's row counter into OpenTelemetry.
//
// internal/pipeline's Reporter accepts a metric.Int64Counter and calls it
// against whatever MeterProvider is globally registered; left untouched,
// that is otel's no-op default (the same shape the teacher's dolt storage
// backend uses: instruments registered at init time against the global
// provider, forwarding to the real thing only once a provider is set).
// Setup installs a real one, printing metric snapshots to stderr, when
// CNPJ_OTEL_METRICS is set.
package metrics

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Enabled reports whether CNPJ_OTEL_METRICS requests metrics output.
func Enabled() bool {
	return os.Getenv("CNPJ_OTEL_METRICS") != ""
}

// Setup installs an SDK MeterProvider that periodically writes metric
// snapshots to stderr, and returns a shutdown func that flushes the final
// reading. If metrics are disabled, Setup leaves the global no-op
// provider in place and returns a no-op shutdown.
func Setup(ctx context.Context) (shutdown func(context.Context) error, err error) {
	if !Enabled() {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// RowsCounter creates the "cnpjetl.rows_inserted" instrument against
// whatever MeterProvider is currently registered (real or no-op).
func RowsCounter() metric.Int64Counter {
	m := otel.Meter("github.com/msantosjader/rfb-cnpj-etl/internal/store")
	counter, _ := m.Int64Counter("cnpjetl.rows_inserted",
		metric.WithDescription("rows committed to the target database"),
		metric.WithUnit("{row}"),
	)
	return counter
}
