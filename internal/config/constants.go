package config

import "time"

// Application constants
const (
	AppName    = "ANUBIS graph-total"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. ANUBIS_INGEST_DELIMITER
	EnvPrefix = "ANUBIS"

	// Ingest defaults
	DefaultDelimiter   = ","
	DefaultReportEvery = 50
	DefaultErrorPolicy = "skip"

	// Plot artifact
	DefaultOutputPath    = "total_realtime.pdf"
	PlotTitle            = "Voltage vs time"
	PlotXLabel           = "Time since the start of the run (seconds)"
	PlotYLabel           = "Voltage (volts)"
	PlotWidth            = 900
	PlotHeight           = 600
	DefaultRenderTimeout = 60 * time.Second

	// Logging
	DefaultLogFile = "logs/graph-total.log"
)
