package notification

import (
	"context"

	"go.uber.org/zap"
)

// NoopNotifier logs notices instead of delivering them. Used when no broker
// is configured, typically in development.
type NoopNotifier struct {
	log *zap.Logger
}

func NewNoopNotifier(log *zap.Logger) *NoopNotifier {
	return &NoopNotifier{log: log.Named("notification.noop")}
}

// Dispatch logs the notice and succeeds.
func (n *NoopNotifier) Dispatch(_ context.Context, notice Notice) error {
	n.log.Info("notification dropped (no broker configured)",
		zap.String("type", notice.Type),
		zap.String("intervention_id", notice.InterventionID),
		zap.String("subject", notice.Subject),
	)
	return nil
}
