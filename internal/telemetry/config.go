package telemetry

// Defaults for the tracing exporter.
const (
	DefaultServiceName = "hatch"
	DefaultEndpoint    = "localhost:4317"
)

// Config selects where lifecycle spans are exported.
//
// Spans cover service start and release and the shutdown sequence, so a trace
// shows how long each initializer and each teardown took.
type Config struct {
	Enabled bool

	// ServiceName and ServiceVersion become the service.name and
	// service.version resource attributes.
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector (host:port).
	Endpoint string

	// Insecure dials the collector without TLS.
	Insecure bool

	// SampleRate in [0, 1]. Rates outside the range clamp to never or always.
	SampleRate float64
}

// DefaultConfig returns a disabled configuration pointing at a local collector.
func DefaultConfig() Config {
	return Config{
		ServiceName:    DefaultServiceName,
		ServiceVersion: "dev",
		Endpoint:       DefaultEndpoint,
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// withDefaults fills the identity and endpoint fields left empty.
func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	return c
}
