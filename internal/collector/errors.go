package collector

import (
	"fmt"

	"github.com/benvon/daily-journal/internal/logger"
	"go.uber.org/zap"
)

// BestEffort runs fn and logs its error instead of returning it. Used for
// side effects that must never stop the pipeline, such as archiving.
func BestEffort(log *zap.Logger, op string, fn func() error, fields ...zap.Field) {
	if err := fn(); err != nil {
		log.Warn(op+"_failed", append(fields, zap.String("error", logger.SanitizeError(err)))...)
	}
}

// Propagate runs fn and returns its error annotated with op
func Propagate(op string, fn func() error) error {
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
