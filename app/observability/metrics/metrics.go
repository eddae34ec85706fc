package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SignUpRequestsTotal        metric.Int64Counter
	SignInRequestsTotal        metric.Int64Counter
	RefreshRequestsTotal       metric.Int64Counter
	SignOutRequestsTotal       metric.Int64Counter
	TokensRevokedTotal         metric.Int64Counter
	AuthRequestDurationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments exactly once,
// using the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("creator-hub")
		var err error
		m := &AppMetrics{}

		m.SignUpRequestsTotal, err = meter.Int64Counter(
			"signup_requests_total",
			metric.WithDescription("Total number of signup requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create signup_requests_total: %v", err)
		}

		m.SignInRequestsTotal, err = meter.Int64Counter(
			"signin_requests_total",
			metric.WithDescription("Total number of signin requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create signin_requests_total: %v", err)
		}

		m.RefreshRequestsTotal, err = meter.Int64Counter(
			"refresh_requests_total",
			metric.WithDescription("Total number of token refresh requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create refresh_requests_total: %v", err)
		}

		m.SignOutRequestsTotal, err = meter.Int64Counter(
			"signout_requests_total",
			metric.WithDescription("Total number of signout requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create signout_requests_total: %v", err)
		}

		m.TokensRevokedTotal, err = meter.Int64Counter(
			"tokens_revoked_total",
			metric.WithDescription("Total number of access tokens revoked via signout"),
			metric.WithUnit("{token}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create tokens_revoked_total: %v", err)
		}

		m.AuthRequestDurationSeconds, err = meter.Float64Histogram(
			"auth_request_duration_seconds",
			metric.WithDescription("Duration of auth requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_request_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
