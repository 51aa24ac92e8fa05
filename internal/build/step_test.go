package build

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunSteps(t *testing.T) {
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}

	err := runSteps(context.Background(), []step{
		{"first", record("first")},
		{"second", record("second")},
		{"third", record("third")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(order, ","); got != "first,second,third" {
		t.Fatalf("execution order = %s", got)
	}
}

func TestRunStepsFailFast(t *testing.T) {
	boom := errors.New("installer exploded")
	var ran []string

	err := runSteps(context.Background(), []step{
		{"prepare", func(context.Context) error {
			ran = append(ran, "prepare")
			return nil
		}},
		{"install dependencies", func(context.Context) error {
			ran = append(ran, "install")
			return boom
		}},
		{"copy source", func(context.Context) error {
			ran = append(ran, "copy")
			return nil
		}},
	})

	if !errors.Is(err, ErrBuild) {
		t.Fatalf("error = %v, want ErrBuild", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped cause", err)
	}
	if !strings.Contains(err.Error(), "step 2 (install dependencies)") {
		t.Fatalf("error %q does not name the failing step", err)
	}
	if got := strings.Join(ran, ","); got != "prepare,install" {
		t.Fatalf("steps run = %s, later steps must not execute", got)
	}
}

func TestRunStepsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran bool
	err := runSteps(ctx, []step{
		{"never", func(context.Context) error {
			ran = true
			return nil
		}},
	})

	if !errors.Is(err, ErrBuild) {
		t.Fatalf("error = %v, want ErrBuild", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if ran {
		t.Fatal("step executed after cancellation")
	}
}

func TestRunStepsEmpty(t *testing.T) {
	if err := runSteps(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
}
