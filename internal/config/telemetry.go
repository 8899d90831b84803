package config

// TelemetryConfig controls OTLP trace export.
type TelemetryConfig struct {
	// Enabled turns trace export on. When false no exporter is started
	// and spans are no-ops.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Endpoint is the OTLP/HTTP collector address, host:port.
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`

	// ServiceName identifies this process in traces.
	ServiceName string `mapstructure:"service_name" json:"service_name"`

	// Environment tags traces with the deployment environment.
	Environment string `mapstructure:"environment" json:"environment"`
}
