// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production).
//
// # Run Awareness
//
// A reconciliation run is identified by a run id. The WithRunID helper attaches it to the
// log entry, ensuring that all logs related to a specific run can be correlated with the
// published report.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Reconciliation started")
//
//	l := logger.WithRunID(log, report.RunID)
//	l.Error("Run failed", zap.Error(err))
package logger
