package cpm

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

func act(id string, duration int) network.Activity {
	return network.Activity{ID: id, Duration: duration}
}

func dep(from, to string, rel network.Relation, lag int) network.Dependency {
	return network.Dependency{Predecessor: from, Successor: to, Relation: rel, Lag: lag}
}

func analyze(t *testing.T, activities []network.Activity, deps []network.Dependency, opts Options) *Schedule {
	t.Helper()
	net, err := network.Build(activities, deps)
	if err != nil {
		t.Fatalf("build network: %v", err)
	}
	s, err := Analyze(net, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestAnalyze_LinearChain(t *testing.T) {
	// A -> B -> C (each duration 1)
	s := analyze(t,
		[]network.Activity{act("a", 1), act("b", 1), act("c", 1)},
		[]network.Dependency{dep("a", "b", network.FS, 0), dep("b", "c", network.FS, 0)},
		Options{})

	if s.ProjectDuration != 3 {
		t.Errorf("expected project duration 3, got %d", s.ProjectDuration)
	}
	if len(s.CriticalPath) != 3 {
		t.Errorf("expected 3 activities on critical path, got %d: %v", len(s.CriticalPath), s.CriticalPath)
	}
	if len(s.Waves) != 3 {
		t.Errorf("expected 3 waves, got %d", len(s.Waves))
	}

	assertSchedule(t, s.Results["a"], 0, 1, 0, 1, 0, true)
	assertSchedule(t, s.Results["b"], 1, 2, 1, 2, 0, true)
	assertSchedule(t, s.Results["c"], 2, 3, 2, 3, 0, true)
}

func TestAnalyze_DiamondDAG(t *testing.T) {
	// A -> B -> D
	// A -> C -> D
	s := analyze(t,
		[]network.Activity{act("a", 1), act("b", 1), act("c", 1), act("d", 1)},
		[]network.Dependency{
			dep("a", "b", network.FS, 0), dep("a", "c", network.FS, 0),
			dep("b", "d", network.FS, 0), dep("c", "d", network.FS, 0),
		},
		Options{})

	if s.ProjectDuration != 3 {
		t.Errorf("expected project duration 3, got %d", s.ProjectDuration)
	}
	if len(s.Waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(s.Waves))
	}
	if got := s.Waves[1].ActivityIDs; len(got) != 2 {
		t.Errorf("expected 2 activities in wave 1, got %v", got)
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if !s.Results[id].Critical {
			t.Errorf("expected %s to be critical", id)
		}
	}
}

func TestAnalyze_WithDurations(t *testing.T) {
	// A(5) -> B(1) -> D(1)
	// A(5) -> C(10) -> D(1)
	// Critical path is A -> C -> D (total 16).
	s := analyze(t,
		[]network.Activity{act("a", 5), act("b", 1), act("c", 10), act("d", 1)},
		[]network.Dependency{
			dep("a", "b", network.FS, 0), dep("a", "c", network.FS, 0),
			dep("b", "d", network.FS, 0), dep("c", "d", network.FS, 0),
		},
		Options{})

	if s.ProjectDuration != 16 {
		t.Errorf("expected project duration 16, got %d", s.ProjectDuration)
	}

	assertSchedule(t, s.Results["b"], 5, 6, 14, 15, 9, false)
	if s.Results["b"].FreeFloat != 9 {
		t.Errorf("expected B free float 9, got %d", s.Results["b"].FreeFloat)
	}

	want := []string{"a", "c", "d"}
	if fmt.Sprint(s.CriticalPath) != fmt.Sprint(want) {
		t.Errorf("expected critical path %v, got %v", want, s.CriticalPath)
	}
}

func TestAnalyze_ParallelIndependent(t *testing.T) {
	s := analyze(t, []network.Activity{act("a", 1), act("b", 1), act("c", 1)}, nil, Options{})

	if len(s.Waves) != 1 {
		t.Errorf("expected 1 wave, got %d", len(s.Waves))
	}
	if len(s.Waves[0].ActivityIDs) != 3 {
		t.Errorf("expected 3 activities in wave 0, got %d", len(s.Waves[0].ActivityIDs))
	}
	if s.ProjectDuration != 1 {
		t.Errorf("expected project duration 1, got %d", s.ProjectDuration)
	}
}

func TestAnalyze_SingleActivity(t *testing.T) {
	s := analyze(t, []network.Activity{act("solo", 4)}, nil, Options{})

	if s.ProjectDuration != 4 {
		t.Errorf("expected project duration 4, got %d", s.ProjectDuration)
	}
	if len(s.CriticalPath) != 1 || s.CriticalPath[0] != "solo" {
		t.Errorf("expected critical path [solo], got %v", s.CriticalPath)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	s := analyze(t, nil, nil, Options{})
	if s.ProjectDuration != 0 || len(s.Results) != 0 || len(s.Waves) != 0 {
		t.Errorf("expected empty schedule, got %+v", s)
	}
}

func TestAnalyze_WideDAG(t *testing.T) {
	//     A
	//   / | \
	//  B  C  D
	//   \ | /
	//     E
	s := analyze(t,
		[]network.Activity{act("a", 1), act("b", 1), act("c", 1), act("d", 1), act("e", 1)},
		[]network.Dependency{
			dep("a", "b", network.FS, 0), dep("a", "c", network.FS, 0), dep("a", "d", network.FS, 0),
			dep("b", "e", network.FS, 0), dep("c", "e", network.FS, 0), dep("d", "e", network.FS, 0),
		},
		Options{})

	if len(s.Waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(s.Waves))
	}
	if len(s.Waves[1].ActivityIDs) != 3 {
		t.Errorf("expected 3 activities in wave 1, got %d", len(s.Waves[1].ActivityIDs))
	}
	if s.Results["c"].Wave != 1 {
		t.Errorf("expected c in wave 1, got %d", s.Results["c"].Wave)
	}
}

func TestAnalyze_FinishToStartWithLag(t *testing.T) {
	// A(5) -FS-> B(3) -FS+2-> C(4)
	s := analyze(t,
		[]network.Activity{act("A", 5), act("B", 3), act("C", 4)},
		[]network.Dependency{dep("A", "B", network.FS, 0), dep("B", "C", network.FS, 2)},
		Options{})

	assertSchedule(t, s.Results["A"], 0, 5, 0, 5, 0, true)
	assertSchedule(t, s.Results["B"], 5, 8, 5, 8, 0, true)
	assertSchedule(t, s.Results["C"], 10, 14, 10, 14, 0, true)
	if s.ProjectDuration != 14 {
		t.Errorf("expected project duration 14, got %d", s.ProjectDuration)
	}
	for id, r := range s.Results {
		if r.FreeFloat != 0 {
			t.Errorf("%s: expected free float 0, got %d", id, r.FreeFloat)
		}
	}
}

func TestAnalyze_StartToStartLead(t *testing.T) {
	// D(10) -SS-2-> E(6): the lead cannot pull E before project start.
	// E is the only leaf, so it sets the finish; D may start as late as 2.
	s := analyze(t,
		[]network.Activity{act("D", 10), act("E", 6)},
		[]network.Dependency{dep("D", "E", network.SS, -2)},
		Options{})

	assertSchedule(t, s.Results["D"], 0, 10, 2, 12, 2, false)
	assertSchedule(t, s.Results["E"], 0, 6, 0, 6, 0, true)
	if s.ProjectDuration != 6 {
		t.Errorf("expected project duration 6, got %d", s.ProjectDuration)
	}
	for id, r := range s.Results {
		if r.ES < 0 {
			t.Errorf("%s: negative ES %d", id, r.ES)
		}
	}
	if s.Results["D"].FreeFloat != 2 {
		t.Errorf("expected D free float 2, got %d", s.Results["D"].FreeFloat)
	}
}

func TestAnalyze_StartToStartLag(t *testing.T) {
	// A(4) -SS+2-> B(3)
	s := analyze(t,
		[]network.Activity{act("A", 4), act("B", 3)},
		[]network.Dependency{dep("A", "B", network.SS, 2)},
		Options{})

	assertSchedule(t, s.Results["A"], 0, 4, 0, 4, 0, true)
	assertSchedule(t, s.Results["B"], 2, 5, 2, 5, 0, true)
	if s.ProjectDuration != 5 {
		t.Errorf("expected project duration 5, got %d", s.ProjectDuration)
	}
}

func TestAnalyze_FinishToFinish(t *testing.T) {
	// A(4) -FF+1-> B(2): B must finish at least 1 after A finishes.
	s := analyze(t,
		[]network.Activity{act("A", 4), act("B", 2)},
		[]network.Dependency{dep("A", "B", network.FF, 1)},
		Options{})

	assertSchedule(t, s.Results["A"], 0, 4, 0, 4, 0, true)
	assertSchedule(t, s.Results["B"], 3, 5, 3, 5, 0, true)
}

func TestAnalyze_FinishToFinishFloorsAtProjectStart(t *testing.T) {
	// A(2) -FF-> B(5): B could start at -3, project start holds it at 0.
	s := analyze(t,
		[]network.Activity{act("A", 2), act("B", 5)},
		[]network.Dependency{dep("A", "B", network.FF, 0)},
		Options{})

	assertSchedule(t, s.Results["B"], 0, 5, 0, 5, 0, true)
	assertSchedule(t, s.Results["A"], 0, 2, 3, 5, 3, false)
	if s.Results["A"].FreeFloat != 3 {
		t.Errorf("expected A free float 3, got %d", s.Results["A"].FreeFloat)
	}
}

func TestAnalyze_StartToFinish(t *testing.T) {
	// A(4) -SF+3-> B(2): B must finish at least 3 after A starts.
	s := analyze(t,
		[]network.Activity{act("A", 4), act("B", 2)},
		[]network.Dependency{dep("A", "B", network.SF, 3)},
		Options{})

	assertSchedule(t, s.Results["A"], 0, 4, 0, 4, 0, true)
	assertSchedule(t, s.Results["B"], 1, 3, 1, 3, 0, true)
	if s.ProjectDuration != 3 {
		t.Errorf("expected project duration 3, got %d", s.ProjectDuration)
	}
	if s.Results["A"].FreeFloat != 0 {
		t.Errorf("expected A free float 0, got %d", s.Results["A"].FreeFloat)
	}
}

func TestAnalyze_FinishToStartLead(t *testing.T) {
	// A(10) -FS-5-> B(2): B overlaps A and, as the only leaf, sets the finish.
	s := analyze(t,
		[]network.Activity{act("A", 10), act("B", 2)},
		[]network.Dependency{dep("A", "B", network.FS, -5)},
		Options{})

	if s.ProjectDuration != 7 {
		t.Errorf("expected project duration 7, got %d", s.ProjectDuration)
	}
	assertSchedule(t, s.Results["A"], 0, 10, 0, 10, 0, true)
	assertSchedule(t, s.Results["B"], 5, 7, 5, 7, 0, true)
	if len(s.CriticalPath) != 2 {
		t.Errorf("expected A and B critical, got %v", s.CriticalPath)
	}
}

func TestAnalyze_NonLeafFinishingAfterProjectFinish(t *testing.T) {
	// A(10) -SS-> B(2): A runs past the finish set by B without negative float.
	s := analyze(t,
		[]network.Activity{act("A", 10), act("B", 2)},
		[]network.Dependency{dep("A", "B", network.SS, 0)},
		Options{})

	if s.ProjectDuration != 2 {
		t.Errorf("expected project duration 2, got %d", s.ProjectDuration)
	}
	assertSchedule(t, s.Results["A"], 0, 10, 0, 10, 0, true)
	assertSchedule(t, s.Results["B"], 0, 2, 0, 2, 0, true)
	if s.Infeasible {
		t.Errorf("expected feasible schedule, got negative float on %v", s.NegativeFloat)
	}
}

func TestAnalyze_MaximumBindingPredecessor(t *testing.T) {
	// C waits for A(3) FS and B(5) FS-1; the later requirement (4) binds.
	s := analyze(t,
		[]network.Activity{act("A", 3), act("B", 5), act("C", 2)},
		[]network.Dependency{dep("A", "C", network.FS, 0), dep("B", "C", network.FS, -1)},
		Options{})

	assertSchedule(t, s.Results["C"], 4, 6, 4, 6, 0, true)
	assertSchedule(t, s.Results["A"], 0, 3, 1, 4, 1, false)
	if s.Results["A"].FreeFloat != 1 {
		t.Errorf("expected A free float 1, got %d", s.Results["A"].FreeFloat)
	}
}

func TestAnalyze_Milestone(t *testing.T) {
	s := analyze(t,
		[]network.Activity{act("A", 3), act("M", 0), act("B", 2)},
		[]network.Dependency{dep("A", "M", network.FS, 0), dep("M", "B", network.FS, 0)},
		Options{})

	assertSchedule(t, s.Results["M"], 3, 3, 3, 3, 0, true)
	assertSchedule(t, s.Results["B"], 3, 5, 3, 5, 0, true)
}

func TestAnalyze_FreeFloat(t *testing.T) {
	// F(5) -FS-> G(2)
	// F(5) -FS-> H(1) <-FS- X(8)
	// G starts as soon as F ends; H is held to 8 by X.
	s := analyze(t,
		[]network.Activity{act("F", 5), act("G", 2), act("H", 1), act("X", 8)},
		[]network.Dependency{
			dep("F", "G", network.FS, 0), dep("F", "H", network.FS, 0), dep("X", "H", network.FS, 0),
		},
		Options{})

	// min(5-5, 8-5) = 0
	if s.Results["F"].FreeFloat != 0 {
		t.Errorf("expected F free float 0, got %d", s.Results["F"].FreeFloat)
	}
	if s.Results["F"].TotalFloat != 2 {
		t.Errorf("expected F total float 2, got %d", s.Results["F"].TotalFloat)
	}
	if s.Results["G"].FreeFloat != 2 {
		t.Errorf("expected G free float 2, got %d", s.Results["G"].FreeFloat)
	}
}

func TestAnalyze_FreeFloatSingleSuccessor(t *testing.T) {
	// F(5) -FS-> H(1) <-FS- X(8): F can slip 8-5 = 3 without moving H.
	s := analyze(t,
		[]network.Activity{act("F", 5), act("H", 1), act("X", 8)},
		[]network.Dependency{dep("F", "H", network.FS, 0), dep("X", "H", network.FS, 0)},
		Options{})

	if s.Results["F"].FreeFloat != 3 {
		t.Errorf("expected F free float 3, got %d", s.Results["F"].FreeFloat)
	}
	if s.Results["F"].TotalFloat != 3 {
		t.Errorf("expected F total float 3, got %d", s.Results["F"].TotalFloat)
	}
}

func TestAnalyze_StartNoEarlierThan(t *testing.T) {
	a := act("A", 2)
	a.Constraint = network.Constraint{Kind: network.SNET, Date: 5}
	s := analyze(t, []network.Activity{a, act("B", 10)}, nil, Options{})

	assertSchedule(t, s.Results["A"], 5, 7, 8, 10, 3, false)
	if s.ProjectDuration != 10 {
		t.Errorf("expected project duration 10, got %d", s.ProjectDuration)
	}
}

func TestAnalyze_FinishNoLaterThanNegativeFloat(t *testing.T) {
	// A(5) -> B(5), B must finish by 8 but cannot finish before 10.
	b := act("B", 5)
	b.Constraint = network.Constraint{Kind: network.FNLT, Date: 8}
	s := analyze(t,
		[]network.Activity{act("A", 5), b},
		[]network.Dependency{dep("A", "B", network.FS, 0)},
		Options{})

	assertSchedule(t, s.Results["A"], 0, 5, -2, 3, -2, false)
	assertSchedule(t, s.Results["B"], 5, 10, 3, 8, -2, false)

	if !s.Infeasible {
		t.Error("expected schedule to be flagged infeasible")
	}
	if fmt.Sprint(s.NegativeFloat) != "[A B]" {
		t.Errorf("expected negative float on [A B], got %v", s.NegativeFloat)
	}
	if len(s.CriticalPath) != 0 {
		t.Errorf("negative float must not be critical, got %v", s.CriticalPath)
	}
	if s.Results["A"].FreeFloat != -2 {
		t.Errorf("expected free float capped at total float -2, got %d", s.Results["A"].FreeFloat)
	}
}

func TestAnalyze_Deadline(t *testing.T) {
	activities := []network.Activity{act("A", 5), act("B", 3)}
	deps := []network.Dependency{dep("A", "B", network.FS, 0)}

	early := 6
	s := analyze(t, activities, deps, Options{Deadline: &early})
	if s.ProjectDuration != 8 || s.Finish != 6 {
		t.Errorf("expected duration 8 and finish 6, got %d and %d", s.ProjectDuration, s.Finish)
	}
	assertSchedule(t, s.Results["A"], 0, 5, -2, 3, -2, false)
	if !s.Infeasible {
		t.Error("expected infeasible schedule with deadline before project finish")
	}

	late := 12
	s = analyze(t, activities, deps, Options{Deadline: &late})
	assertSchedule(t, s.Results["B"], 5, 8, 9, 12, 4, false)
	if s.Infeasible || len(s.CriticalPath) != 0 {
		t.Errorf("expected feasible schedule with no critical activities, got %+v", s)
	}
}

func TestAnalyze_Cycle(t *testing.T) {
	net, err := network.Build(
		[]network.Activity{act("a", 1), act("b", 1), act("c", 1)},
		[]network.Dependency{dep("a", "b", network.FS, 0), dep("b", "c", network.SS, 0), dep("c", "a", network.FF, 0)},
	)
	if err != nil {
		t.Fatalf("build network: %v", err)
	}

	s, err := Analyze(net, Options{})
	var cerr *network.CircularDependencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CircularDependencyError, got %v", err)
	}
	if s != nil {
		t.Error("expected no partial schedule")
	}
	if cerr.Path[0] != cerr.Path[len(cerr.Path)-1] {
		t.Errorf("expected closed walk, got %v", cerr.Path)
	}
}

func TestAnalyze_RandomNetworkProperties(t *testing.T) {
	rels := []network.Relation{network.FS, network.SS, network.FF, network.SF}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := 2 + rng.Intn(30)
		activities := make([]network.Activity, n)
		for i := range activities {
			activities[i] = act(fmt.Sprintf("n%02d", i), rng.Intn(10))
		}
		var deps []network.Dependency
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rng.Intn(4) == 0 {
					deps = append(deps, dep(activities[i].ID, activities[j].ID, rels[rng.Intn(4)], rng.Intn(9)-3))
				}
			}
		}

		net, err := network.Build(activities, deps)
		if err != nil {
			t.Fatalf("round %d: build network: %v", round, err)
		}
		s, err := Analyze(net, Options{})
		if err != nil {
			t.Fatalf("round %d: unexpected error: %v", round, err)
		}

		if len(s.Results) != n {
			t.Fatalf("round %d: expected %d results, got %d", round, n, len(s.Results))
		}
		if len(s.CriticalPath) == 0 {
			t.Errorf("round %d: expected at least one critical activity", round)
		}
		for _, leaf := range net.Leaves {
			if r := s.Results[net.ID(leaf)]; r.LF != s.ProjectDuration {
				t.Errorf("round %d: leaf %s LF=%d, project duration %d", round, r.ActivityID, r.LF, s.ProjectDuration)
			}
		}
		for id, r := range s.Results {
			if r.LS-r.ES != r.LF-r.EF || r.TotalFloat != r.LS-r.ES {
				t.Errorf("round %d: %s float mismatch %+v", round, id, r)
			}
			if r.Critical != (r.TotalFloat == 0) {
				t.Errorf("round %d: %s critical=%v with total float %d", round, id, r.Critical, r.TotalFloat)
			}
			if r.TotalFloat < 0 || r.ES < 0 {
				t.Errorf("round %d: %s unconstrained network produced %+v", round, id, r)
			}
			if r.FreeFloat < 0 || r.FreeFloat > r.TotalFloat {
				t.Errorf("round %d: %s free float %d outside [0, %d]", round, id, r.FreeFloat, r.TotalFloat)
			}
		}
		for _, e := range net.Edges {
			pred, succ := s.Results[net.ID(e.From)], s.Results[net.ID(e.To)]
			if !edgeHolds(e, pred.ES, pred.EF, succ.ES, succ.EF) {
				t.Errorf("round %d: early dates violate %s edge %s -> %s", round, e.Relation, pred.ActivityID, succ.ActivityID)
			}
			if !edgeHolds(e, pred.LS, pred.LF, succ.LS, succ.LF) {
				t.Errorf("round %d: late dates violate %s edge %s -> %s", round, e.Relation, pred.ActivityID, succ.ActivityID)
			}
		}
	}
}

func edgeHolds(e network.Edge, ps, pf, ss, sf int) bool {
	switch e.Relation {
	case network.FS:
		return ss >= pf+e.Lag
	case network.SS:
		return ss >= ps+e.Lag
	case network.FF:
		return sf >= pf+e.Lag
	case network.SF:
		return sf >= ps+e.Lag
	}
	return false
}

func assertSchedule(t *testing.T, r Result, es, ef, ls, lf, tf int, critical bool) {
	t.Helper()
	if r.ES != es {
		t.Errorf("activity %s: expected ES=%d, got %d", r.ActivityID, es, r.ES)
	}
	if r.EF != ef {
		t.Errorf("activity %s: expected EF=%d, got %d", r.ActivityID, ef, r.EF)
	}
	if r.LS != ls {
		t.Errorf("activity %s: expected LS=%d, got %d", r.ActivityID, ls, r.LS)
	}
	if r.LF != lf {
		t.Errorf("activity %s: expected LF=%d, got %d", r.ActivityID, lf, r.LF)
	}
	if r.TotalFloat != tf {
		t.Errorf("activity %s: expected total float=%d, got %d", r.ActivityID, tf, r.TotalFloat)
	}
	if r.Critical != critical {
		t.Errorf("activity %s: expected critical=%v, got %v", r.ActivityID, critical, r.Critical)
	}
}
