package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// errNotApplied marks a strategy that ran without error but did not
// produce a result, such as a direct update on an unknown id.
var errNotApplied = errors.New("not applied")

// strategy is one way of obtaining a T.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// firstSuccess runs strategies in order and returns the result of the first
// one that succeeds. Each failure is logged and counted; when all fail the
// joined errors are returned.
func firstSuccess[T any](
	ctx context.Context,
	s *Service,
	operation string,
	strategies ...strategy[T],
) (T, error) {
	var errs []error
	for _, st := range strategies {
		result, err := st.run(ctx)
		s.metrics.ObserveStrategy(operation, st.name, err == nil)
		if err == nil {
			return result, nil
		}
		s.log.Debug("strategy failed",
			zap.String("operation", operation),
			zap.String("strategy", st.name),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
	}

	var zero T
	if len(errs) == 0 {
		return zero, fmt.Errorf("%s: no strategies", operation)
	}
	return zero, fmt.Errorf("%s: all strategies failed: %w", operation, errors.Join(errs...))
}
