// Package logging wraps log/slog with per-module levels.
//
// Call [Initialize] once at startup, then take a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"exposure": "debug"},
//	})
//	logger := logging.GetLogger("exposure")
//
// Module levels live in [slog.LevelVar]s, so loggers taken before Initialize
// follow the configured levels once it runs.
//
// Records go to stdout (text or JSON) when it is a terminal, pipe, socket or
// file, and to the systemd journal when journald is reachable. Every record
// also lands in a ring buffer of recent entries ([GetBuffer]) and is passed
// to the callback set with [SetLogCallback]; the daemon uses that to feed the
// log SSE stream.
//
// In the daemon config file module levels sit next to the global ones:
//
//	[logging]
//	level = "info"
//	format = "json"
//	exposure = "debug"
//	telemetry = "warn"
//
// Journal records carry SYSLOG_IDENTIFIER=histonode and every attribute as an
// upper-cased field:
//
//	journalctl -t histonode MODULE=exposure -f
//	journalctl -t histonode RUN_ID=<uuid>
package logging
