package memorial

import (
	"context"

	"github.com/sirupsen/logrus"
)

// sagaStep is one forward action in a multi-resource workflow, optionally
// paired with a compensating action that undoes it.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// saga sequences steps that span stores with no shared transaction. When a
// step fails, the compensations of every completed step run in reverse order
// so earlier writes are not left orphaned. Compensation failures are logged
// and swallowed; the original step error is what the caller sees.
type saga struct {
	logger *logrus.Logger
	steps  []sagaStep
}

func (s *saga) add(step sagaStep) {
	s.steps = append(s.steps, step)
}

func (s *saga) execute(ctx context.Context) error {
	var completed []sagaStep

	for _, step := range s.steps {
		if err := step.run(ctx); err != nil {
			s.rollback(ctx, completed)
			return err
		}
		completed = append(completed, step)
	}

	return nil
}

func (s *saga) rollback(ctx context.Context, completed []sagaStep) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"step":  step.name,
				"error": err.Error(),
			}).Error("saga compensation failed")
		}
	}
}
