package tracing

// Config holds configuration for trace export.
type Config struct {
	// Endpoint is the OTLP/HTTP collector URL. Tracing is disabled when empty.
	Endpoint string `mapstructure:"endpoint" default:""`
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `mapstructure:"service_name" default:"parent-reconciler"`
	// SampleRatio is the fraction of runs traced, between 0 and 1.
	SampleRatio float64 `mapstructure:"sample_ratio" default:"1"`
}
