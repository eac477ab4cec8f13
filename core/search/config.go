package search

import "time"

// Driver names accepted in Config.Driver.
const (
	DriverElasticsearch = "elasticsearch"
	DriverSQL           = "sql"
)

// Config holds configuration for the record store connection.
type Config struct {
	// Driver selects the backend (elasticsearch, sql).
	Driver string `mapstructure:"driver" default:"elasticsearch"`
	// URL is the Elasticsearch endpoint.
	URL string `mapstructure:"url" default:"http://localhost:9200"`
	// ClusterName is only used for status messages.
	ClusterName string `mapstructure:"cluster_name" default:"elasticsearch"`
	// Username for basic authentication. Basic auth is skipped when empty.
	Username string `mapstructure:"username" default:""`
	// Password for basic authentication.
	Password string `mapstructure:"password" default:""`
	// CertificatePath points to a PEM server certificate trusted in addition to the system pool.
	CertificatePath string `mapstructure:"certificate_path" default:""`
	// VerifyHostname disables hostname verification when false.
	VerifyHostname bool `mapstructure:"verify_hostname" default:"true"`
	// ConnectTimeoutSeconds is the connection setup timeout in seconds.
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds" default:"30"`
	// SocketTimeoutSeconds is the response timeout in seconds.
	SocketTimeoutSeconds int `mapstructure:"socket_timeout_seconds" default:"30"`
	// ScrollKeepAlive is how long the backend keeps a scroll cursor alive between pages.
	ScrollKeepAlive time.Duration `mapstructure:"scroll_keep_alive" default:"60s"`
	// HealthAttempts is the attempt budget of the connectivity check.
	HealthAttempts int `mapstructure:"health_attempts" default:"10"`
	// HealthDelay is the fixed delay between connectivity check attempts.
	HealthDelay time.Duration `mapstructure:"health_delay" default:"3s"`
}
