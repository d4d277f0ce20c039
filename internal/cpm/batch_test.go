package cpm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

func chainProgram(name string, n int) *network.Program {
	p := &network.Program{Name: name}
	for i := 0; i < n; i++ {
		p.Activities = append(p.Activities, act(fmt.Sprintf("%s-%d", name, i), i+1))
		if i > 0 {
			p.Dependencies = append(p.Dependencies, dep(p.Activities[i-1].ID, p.Activities[i].ID, network.FS, 0))
		}
	}
	return p
}

func TestCalculateAll(t *testing.T) {
	cyclic := chainProgram("cyclic", 3)
	cyclic.Dependencies = append(cyclic.Dependencies, dep("cyclic-2", "cyclic-0", network.FS, 0))

	programs := []*network.Program{chainProgram("alpha", 3), cyclic, chainProgram("gamma", 4)}
	for i := 0; i < 20; i++ {
		programs = append(programs, chainProgram(fmt.Sprintf("p%d", i), i%5+1))
	}

	results, err := CalculateAll(context.Background(), programs, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(programs) {
		t.Fatalf("expected %d results, got %d", len(programs), len(results))
	}

	if results[0].Program != "alpha" || results[0].Schedule == nil || results[0].Schedule.ProjectDuration != 6 {
		t.Errorf("unexpected alpha result: %+v", results[0])
	}
	var cerr *network.CircularDependencyError
	if !errors.As(results[1].Err, &cerr) || results[1].Schedule != nil {
		t.Errorf("expected cycle error for program 1, got %+v", results[1])
	}
	if results[2].Schedule == nil || results[2].Schedule.ProjectDuration != 10 {
		t.Errorf("unexpected gamma result: %+v", results[2])
	}
	for _, r := range results[3:] {
		if r.Err != nil || r.Schedule == nil {
			t.Errorf("program %s: unexpected failure %v", r.Program, r.Err)
		}
	}
}

func TestCalculateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CalculateAll(ctx, []*network.Program{chainProgram("a", 2)}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
