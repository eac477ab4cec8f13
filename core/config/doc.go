// Package config provides configuration management for the parent reconciler.
//
// It utilizes Viper for loading configuration from environment variables and an optional
// .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Search: record store driver, Elasticsearch endpoint, TLS, scroll keep-alive, health check budget
//   - Database: MySQL connection details for the sql driver
//   - Storage: S3/MinIO credentials and report bucket
//   - Log: Logging level and format
//   - Tracing: OTLP endpoint and sampling
//   - Audit: partition, import position, index patterns and page sizes
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Audit.PartitionID)
package config
