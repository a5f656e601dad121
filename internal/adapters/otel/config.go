package otel

import "time"

// Config holds OTEL exporter configuration. It is loaded as the OTEL
// section of app.Config, from TASKPULSE_OTEL_* variables.
type Config struct {
	Endpoint string        `envconfig:"ENDPOINT"`
	Enabled  bool          `envconfig:"ENABLED" default:"false"`
	Insecure bool          `envconfig:"INSECURE" default:"false"`
	Interval time.Duration `envconfig:"INTERVAL" default:"30s"`
}
