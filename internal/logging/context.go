package logging

import (
	"context"
	"log/slog"

	"pps1c/internal/services"
)

// ContextFields extracts structured fields carried on the context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}

	var attrs []Attr
	if itemID, ok := services.ItemIDFromContext(ctx); ok {
		attrs = append(attrs, Int64(FieldItemID, itemID))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if lane, ok := services.LaneFromContext(ctx); ok {
		attrs = append(attrs, String(FieldLane, lane))
	}
	if requestID, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldCorrelationID, requestID))
	}
	return attrs
}

// WithContext returns a child logger annotated with the context's fields.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(Args(attrs...)...)
}
