package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one structured line per event.
// Denials are logged at info level, everything else at debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepComplete: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"wizard", e.Wizard,
				"path", e.Path,
				"next", e.Next,
				"fields", e.Fields,
			)
		},
		OnAccessGranted: func(ctx context.Context, e *domain.AccessEvent) {
			logger.DebugContext(ctx, string(e.Type), "wizard", e.Wizard, "path", e.Path)
		},
		OnAccessDenied: func(ctx context.Context, e *domain.AccessEvent) {
			logger.InfoContext(ctx, string(e.Type),
				"wizard", e.Wizard,
				"path", e.Path,
				"redirect", e.Redirect,
			)
		},
		OnHistoryTruncated: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, string(e.Type),
				"wizard", e.Wizard,
				"path", e.Path,
				"dropped", e.Truncated,
			)
		},
	}
}
