// Package logging provides structured logging configuration for kitir.
//
// This package wraps log/slog to provide consistent logging across all kitir
// components. It supports configurable log levels, output formats and an
// optional log file that receives a copy of every record.
//
// # Usage
//
//	logger, closeFn, err := logging.Open(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	    File:   "/tmp/kitir/kitir.log",
//	})
//	defer closeFn()
//
//	logger.Info("request sent", "url", url)
//	logger.Log(ctx, logging.LevelTrace, "log-request", "path", path)
//
// # Log Levels
//
// Five log levels are supported:
//   - Trace: Per-transaction file writes and parser previews
//   - Debug: Detailed information for debugging
//   - Info: General operational information
//   - Warn: Warning conditions that should be addressed
//   - Error: Error conditions that need attention
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an option.
// If no logger is provided, use logging.Nop() for a no-op logger.
package logging
