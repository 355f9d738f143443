// Package config provides configuration management for graph-total.
// It loads settings from several sources, validates them and exposes a
// typed Config to the command.
//
// # Configuration Sources
//
// Configuration is built in the following order, later sources winning:
//
//	1. Default values
//	2. A YAML file (config.yaml or configs/config.yaml, or the path given to Load)
//	3. Environment variables
//
// Command line flags are applied by the caller on top of the loaded Config,
// after which Validate must be called again.
//
// # Environment Variables
//
// All environment variables use the ANUBIS_ prefix followed by the section
// and field name:
//
//	ANUBIS_INGEST_DELIMITER=;
//	ANUBIS_INGEST_ERROR_POLICY=fail
//	ANUBIS_INGEST_UPPER_LIMIT=3.3
//	ANUBIS_PLOT_OUTPUT=plots/run.svg
//	ANUBIS_LOGGING_LEVEL=debug
//	ANUBIS_TELEMETRY_METRICS_FILE=metrics.prom
//
// # Validation
//
// Validate checks the struct tags with go-playground/validator and then the
// rules that span fields, such as the lower limit sitting below the upper
// limit. Every failure is returned as a CONFIG AppError.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// # Testing
//
// Default returns a fully populated Config that needs no file and no
// environment, which is what most tests start from.
package config
