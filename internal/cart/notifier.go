package cart

import "go.uber.org/zap"

// Notifier receives the user-facing confirmation emitted by every
// successful cart mutation. The message text is a presentation concern;
// that a notification fires on each add/remove/clear is part of the
// store's contract.
type Notifier interface {
	Success(sessionID, message string)
	Info(sessionID, message string)
}

// LogNotifier records notifications in the structured log. The HTTP
// layer surfaces the same messages to the client.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(sessionID, message string) {
	n.logger.Info("Cart notification",
		zap.String("session_id", sessionID),
		zap.String("level", "success"),
		zap.String("message", message),
	)
}

func (n *LogNotifier) Info(sessionID, message string) {
	n.logger.Info("Cart notification",
		zap.String("session_id", sessionID),
		zap.String("level", "info"),
		zap.String("message", message),
	)
}
