package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger creates a logger for one luamount component.
// If the provided handler is nil, a stderr text handler grouped under the
// component name is used instead.
//
// Parameters:
//   - handler: The slog.Handler to use, or nil for defaults
//   - component: The name of the component (e.g., "searcher", "fennel")
//   - groupName: Optional additional group name within the component
//
// Returns:
//   - The configured handler
//   - A logger created from the handler
func SetupLogger(handler slog.Handler, component string, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, nil).WithGroup(component)
		slog.New(handler).Warn("Handler is nil, using the default logger configuration.")
	}

	var logger *slog.Logger
	if groupName != "" {
		logger = slog.New(handler.WithGroup(groupName))
	} else {
		logger = slog.New(handler)
	}

	return handler, logger
}

// ResolveLogger picks between an explicit logger and a handler, the pair
// every WithLogger/WithLogHandler option set produces.
func ResolveLogger(
	handler slog.Handler,
	logger *slog.Logger,
	component, groupName string,
) (slog.Handler, *slog.Logger) {
	if logger != nil {
		return logger.Handler(), logger
	}
	return SetupLogger(handler, component, groupName)
}
