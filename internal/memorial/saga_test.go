package memorial

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
)

func TestSagaRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	workflow := &saga{}
	workflow.add(sagaStep{name: "first", run: func(context.Context) error {
		order = append(order, "first")
		return nil
	}})
	workflow.add(sagaStep{name: "second", run: func(context.Context) error {
		order = append(order, "second")
		return nil
	}})

	if err := workflow.execute(context.Background()); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected step order: %v", order)
	}
}

func TestSagaCompensatesCompletedStepsInReverse(t *testing.T) {
	t.Parallel()

	var compensated []string
	boom := eris.New("boom")

	workflow := &saga{}
	workflow.add(sagaStep{
		name: "first",
		run:  func(context.Context) error { return nil },
		compensate: func(context.Context) error {
			compensated = append(compensated, "first")
			return nil
		},
	})
	workflow.add(sagaStep{
		name: "second",
		run:  func(context.Context) error { return nil },
		compensate: func(context.Context) error {
			compensated = append(compensated, "second")
			return nil
		},
	})
	workflow.add(sagaStep{
		name: "third",
		run:  func(context.Context) error { return boom },
		compensate: func(context.Context) error {
			compensated = append(compensated, "third")
			return nil
		},
	})

	err := workflow.execute(context.Background())
	if !eris.Is(err, boom) {
		t.Fatalf("expected step error to propagate, got %v", err)
	}

	if len(compensated) != 2 || compensated[0] != "second" || compensated[1] != "first" {
		t.Fatalf("expected reverse compensation of completed steps, got %v", compensated)
	}
}

func TestSagaSwallowsCompensationFailures(t *testing.T) {
	t.Parallel()

	boom := eris.New("boom")

	workflow := &saga{logger: silentLogger()}
	workflow.add(sagaStep{
		name:       "first",
		run:        func(context.Context) error { return nil },
		compensate: func(context.Context) error { return eris.New("compensation failed") },
	})
	workflow.add(sagaStep{
		name: "second",
		run:  func(context.Context) error { return boom },
	})

	err := workflow.execute(context.Background())
	if !eris.Is(err, boom) {
		t.Fatalf("expected original step error, got %v", err)
	}
}
