// Package log provides the logging abstraction used across connguard.
//
// Components depend on the Logger interface only. Two implementations ship
// with the package: a zerolog-backed adapter for real output and a no-op
// logger that is the default for embedded use and tests.
//
// # Usage
//
//	logger := log.NewZerologAdapter(log.LevelInfo)
//	hb := logger.With(log.String("component", "heartbeat"))
//	hb.Warn("session check failed", log.Err(err), log.Int("attempt", 2))
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
