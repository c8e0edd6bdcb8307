package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Step is one unit of a migration. Undo reverts a completed Do and may be
// nil when the step changes nothing.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// Plan runs its steps in order. On the first failure the completed steps
// are undone in reverse order.
type Plan struct {
	Name   string
	Steps  []Step
	Logger *zap.Logger
}

// StepError reports the step that failed and any undo that failed after it.
type StepError struct {
	Plan         string
	Step         string
	Err          error
	Compensation []error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("migration %s: step %q failed: %v", e.Plan, e.Step, e.Err)
	if len(e.Compensation) > 0 {
		msg += fmt.Sprintf(" (rollback incomplete: %v)", errors.Join(e.Compensation...))
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// RolledBack reports whether every completed step was undone.
func (e *StepError) RolledBack() bool {
	return len(e.Compensation) == 0
}

func (p *Plan) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("migration", p.Name))

	done := make([]Step, 0, len(p.Steps))
	for _, step := range p.Steps {
		err := ctx.Err()
		if err == nil {
			logger.Info("running step", zap.String("step", step.Name))
			err = step.Do(ctx)
		}
		if err == nil {
			done = append(done, step)
			continue
		}

		logger.Error("step failed, rolling back", zap.String("step", step.Name), zap.Error(err))
		stepErr := &StepError{Plan: p.Name, Step: step.Name, Err: err}
		// compensations must run even when ctx was cancelled
		undoCtx := context.WithoutCancel(ctx)
		for i := len(done) - 1; i >= 0; i-- {
			if done[i].Undo == nil {
				continue
			}
			if uerr := done[i].Undo(undoCtx); uerr != nil {
				logger.Error("undo failed", zap.String("step", done[i].Name), zap.Error(uerr))
				stepErr.Compensation = append(stepErr.Compensation, fmt.Errorf("undo %s: %w", done[i].Name, uerr))
			}
		}
		return stepErr
	}
	logger.Info("migration complete", zap.Int("steps", len(done)))
	return nil
}
