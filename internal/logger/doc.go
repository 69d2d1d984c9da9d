// Package logger is a thin layer over Zap shared by the whole application.
// It keeps one process-wide logger with a runtime-adjustable level, builds
// writer-backed loggers so the terminal UI can divert records to a run-log
// file, and carries request- or worker-scoped loggers through contexts.
package logger
