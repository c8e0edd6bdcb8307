package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type journal struct {
	calls []string
}

func (j *journal) step(name string, doErr, undoErr error) Step {
	return Step{
		Name: name,
		Do: func(ctx context.Context) error {
			j.calls = append(j.calls, "do "+name)
			return doErr
		},
		Undo: func(ctx context.Context) error {
			j.calls = append(j.calls, "undo "+name)
			return undoErr
		},
	}
}

func TestPlanRun(t *testing.T) {
	ctx := context.Background()

	t.Run("runs every step in order", func(t *testing.T) {
		j := &journal{}
		plan := &Plan{Name: "ok", Logger: zap.NewNop(), Steps: []Step{j.step("a", nil, nil), j.step("b", nil, nil)}}

		require.NoError(t, plan.Run(ctx))
		assert.Equal(t, []string{"do a", "do b"}, j.calls)
	})

	t.Run("undoes completed steps in reverse", func(t *testing.T) {
		j := &journal{}
		boom := errors.New("boom")
		noUndo := Step{Name: "read", Do: func(ctx context.Context) error {
			j.calls = append(j.calls, "do read")
			return nil
		}}
		plan := &Plan{Name: "fails", Steps: []Step{noUndo, j.step("a", nil, nil), j.step("b", nil, nil), j.step("c", boom, nil), j.step("d", nil, nil)}}

		err := plan.Run(ctx)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"do read", "do a", "do b", "do c", "undo b", "undo a"}, j.calls)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, "c", stepErr.Step)
		assert.True(t, stepErr.RolledBack())
		assert.Equal(t, `migration fails: step "c" failed: boom`, err.Error())
	})

	t.Run("reports failed undo and keeps going", func(t *testing.T) {
		j := &journal{}
		plan := &Plan{Name: "messy", Steps: []Step{
			j.step("a", nil, nil),
			j.step("b", nil, errors.New("restore failed")),
			j.step("c", errors.New("boom"), nil),
		}}

		err := plan.Run(ctx)
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.False(t, stepErr.RolledBack())
		require.Len(t, stepErr.Compensation, 1)
		assert.Contains(t, err.Error(), "undo b: restore failed")
		assert.Equal(t, []string{"do a", "do b", "do c", "undo b", "undo a"}, j.calls)
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		j := &journal{}
		cctx, cancel := context.WithCancel(ctx)
		first := j.step("a", nil, nil)
		first.Do = func(ctx context.Context) error {
			j.calls = append(j.calls, "do a")
			cancel()
			return nil
		}
		plan := &Plan{Name: "cancel", Steps: []Step{first, j.step("b", nil, nil)}}

		err := plan.Run(cctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []string{"do a", "undo a"}, j.calls)
	})
}
