// Package logging configures the process-wide zerolog logger.
//
// Init is called once at startup; afterwards L returns the global logger and
// Ctx returns the request- or connection-scoped logger stored by WithLogger
// (or HTTPMiddleware). Field names used across packages are declared in
// fields.go so log lines stay greppable.
//
// Usage:
//
//	logging.Init(logging.Config{Level: "debug", Pretty: true, ServiceName: "whiteboard"})
//	logging.L().Info().Int(logging.FieldSubscribers, 3).Msg("frame published")
package logging
