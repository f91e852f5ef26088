package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/iamrohitkandpal/Astra-A-Weapon/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.ScanReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.ScanReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to be false by default")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		step := &mockStep{name: "test-step"}

		p.AddStep(step)

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "step-1"},
			&mockStep{name: "step-2"},
			&mockStep{name: "step-3"},
		)

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New()
		p.AddStep(&mockStep{
			name: "step-1",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				executionOrder = append(executionOrder, "step-1")
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "step-2",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				executionOrder = append(executionOrder, "step-2")
				return nil
			},
		})

		report := model.NewScanReport("example.com")
		err := p.Execute(context.Background(), report)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 {
			t.Fatalf("expected 2 executions, got %d", len(executionOrder))
		}
		if executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		step2Called := false

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return expectedErr
			},
		})
		p.AddStep(&mockStep{
			name: "should-not-run",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				step2Called = true
				return nil
			},
		})

		report := model.NewScanReport("example.com")
		err := p.Execute(context.Background(), report)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if step2Called {
			t.Error("second step should not have been called")
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		step2Called := false

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return errors.New("step failed")
			},
		})
		p.AddStep(&mockStep{
			name: "should-run",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				step2Called = true
				return nil
			},
		})

		report := model.NewScanReport("example.com")
		err := p.Execute(context.Background(), report)

		if err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if !step2Called {
			t.Error("second step should have been called")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		stepCalled := false
		p := New()
		p.AddStep(&mockStep{
			name: "should-not-run",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				stepCalled = true
				return nil
			},
		})

		report := model.NewScanReport("example.com")
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if stepCalled {
			t.Error("step should not have been called")
		}
		if report.ErrorMessage == "" {
			t.Error("expected cancellation to be recorded in report")
		}
	})

	t.Run("records error in report", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("test error")

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return expectedErr
			},
		})

		report := model.NewScanReport("example.com")
		_ = p.Execute(context.Background(), report) //nolint:errcheck // We check error via report.Error

		if report.Error == nil {
			t.Error("expected error to be recorded in report")
		}
		if report.ErrorMessage != expectedErr.Error() {
			t.Errorf("expected error message %q, got %q", expectedErr.Error(), report.ErrorMessage)
		}
	})
}

// TestPipelineStepNames tests the StepNames method.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	t.Run("returns empty slice for empty pipeline", func(t *testing.T) {
		t.Parallel()

		p := New()
		names := p.StepNames()

		if len(names) != 0 {
			t.Errorf("expected empty slice, got %v", names)
		}
	})

	t.Run("returns names in execution order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "alpha"},
			&mockStep{name: "beta"},
		)

		names := p.StepNames()
		if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
			t.Errorf("unexpected names: %v", names)
		}
	})
}
