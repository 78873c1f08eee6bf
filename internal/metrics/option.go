package metrics

// BackendKind identifies a metric export backend.
type BackendKind string

const (
	PrometheusBackend BackendKind = "prometheus"
	OTLPBackend       BackendKind = "otlp"
)

// Backend configures one export backend. Endpoint and Headers only apply to
// the OTLP backend.
type Backend struct {
	Kind     BackendKind
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// OTLPCollector builds an OTLP backend pointed at a collector endpoint.
func OTLPCollector(endpoint string, insecure bool) Backend {
	return Backend{
		Kind:     OTLPBackend,
		Endpoint: endpoint,
		Insecure: insecure,
	}
}

// Config aggregates metric provider options.
type Config struct {
	ServiceName string
	Backends    []Backend
}

// OptionFn mutates the provider config.
type OptionFn func(cfg Config) Config

// WithServiceName sets the service name attached to exported metrics.
func WithServiceName(name string) OptionFn {
	return func(cfg Config) Config {
		cfg.ServiceName = name
		return cfg
	}
}

// WithBackend adds an export backend.
func WithBackend(backend Backend) OptionFn {
	return func(cfg Config) Config {
		cfg.Backends = append(cfg.Backends, backend)
		return cfg
	}
}

// PromServerConfig configures the Prometheus scrape server.
type PromServerConfig struct {
	port string
}

// PromOptionFn mutates the scrape server config.
type PromOptionFn func(cfg PromServerConfig) PromServerConfig

// WithPort sets the scrape server listen port.
func WithPort(port string) PromOptionFn {
	return func(cfg PromServerConfig) PromServerConfig {
		cfg.port = port
		return cfg
	}
}
