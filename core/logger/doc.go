// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and a console encoding suited to interactive
// CLI runs.
//
// # Run Correlation
//
// Every unification run gets a unique run id. The WithRun helper attaches it
// to the log entry so that all logs belonging to one run can be correlated,
// including logs emitted from deep inside the resolver and merge engine.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (interactive runs)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log = logger.WithRun(log, runID)
//	log.Info("Unification started")
package logger
