package cpm

import (
	"log/slog"
	"sort"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

// Options tune a single analysis.
type Options struct {
	// Deadline, when set, seeds the backward pass instead of the computed
	// project finish. A deadline earlier than the project finish yields
	// negative float.
	Deadline *int
	Logger   *slog.Logger
}

// Analyze performs critical path method analysis on a network. It fails with
// a *network.CircularDependencyError before any pass runs if the network is
// cyclic. Negative float is reported in the schedule, not as an error.
func Analyze(net *network.Network, opts Options) (*Schedule, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	order, err := net.TopoOrder()
	if err != nil {
		return nil, err
	}

	w := make([]dates, net.ActivityCount())

	projectFinish := forwardPass(net, order, w)
	logger.Debug("forward pass complete", "activities", len(order), "project_finish", projectFinish)

	finish := projectFinish
	if opts.Deadline != nil {
		finish = *opts.Deadline
	}
	backwardPass(net, order, w, finish)
	logger.Debug("backward pass complete", "finish", finish)

	s := &Schedule{
		Results:         make(map[string]Result, len(order)),
		Order:           make([]string, len(order)),
		ProjectDuration: projectFinish,
		Finish:          finish,
	}
	for i, node := range order {
		s.Order[i] = net.ID(node)
	}

	if err := classify(net, order, w, s); err != nil {
		return nil, err
	}
	if s.Infeasible {
		logger.Warn("schedule has negative float", "activities", s.NegativeFloat, "finish", finish)
	}

	s.Waves = computeWaves(s)

	return s, nil
}

// forwardPass computes ES and EF in topological order and returns the
// project finish, the latest EF of any leaf. ES never precedes project start
// (0) or an SNET date, and is otherwise the maximum over every incoming
// constraint.
func forwardPass(net *network.Network, order []int, w []dates) int {
	for _, node := range order {
		a := net.Activities[node]

		es := 0
		if a.Constraint.Kind == network.SNET && a.Constraint.Date > es {
			es = a.Constraint.Date
		}
		for _, ei := range net.In[node] {
			e := net.Edges[ei]
			if b := earliestStart(e, w[e.From], a.Duration); b > es {
				es = b
			}
		}
		w[node].ES = es
		w[node].EF = es + a.Duration
	}

	projectFinish := 0
	for _, leaf := range net.Leaves {
		if w[leaf].EF > projectFinish {
			projectFinish = w[leaf].EF
		}
	}
	return projectFinish
}

// backwardPass computes LF and LS in reverse topological order. Leaves start
// from finish; every other node takes the minimum over its outgoing
// constraints. An FNLT date caps either.
func backwardPass(net *network.Network, order []int, w []dates, finish int) {
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		a := net.Activities[node]

		lf := finish
		for j, ei := range net.Out[node] {
			e := net.Edges[ei]
			if b := latestFinish(e, w[e.To], a.Duration); j == 0 || b < lf {
				lf = b
			}
		}
		if a.Constraint.Kind == network.FNLT && a.Constraint.Date < lf {
			lf = a.Constraint.Date
		}
		w[node].LF = lf
		w[node].LS = lf - a.Duration
	}
}

// classify derives total float, free float and criticality, and fills
// s.Results, s.CriticalPath and the infeasibility markers.
func classify(net *network.Network, order []int, w []dates, s *Schedule) error {
	for _, node := range order {
		d := w[node]
		id := net.ID(node)

		tf := d.LS - d.ES
		if byFinish := d.LF - d.EF; byFinish != tf {
			return &InvariantError{ActivityID: id, ByStart: tf, ByFinish: byFinish}
		}

		ff := s.Finish - d.EF
		for i, ei := range net.Out[node] {
			e := net.Edges[ei]
			slack := edgeSlack(e, d, w[e.To])
			if i == 0 || slack < ff {
				ff = slack
			}
		}
		if ff > tf {
			ff = tf
		}

		s.Results[id] = Result{
			ActivityID: id,
			ES:         d.ES,
			EF:         d.EF,
			LS:         d.LS,
			LF:         d.LF,
			TotalFloat: tf,
			FreeFloat:  ff,
			Critical:   tf == 0,
		}

		if tf < 0 {
			s.Infeasible = true
			s.NegativeFloat = append(s.NegativeFloat, id)
		}
		if tf == 0 {
			s.CriticalPath = append(s.CriticalPath, id)
		}
	}

	// Present the critical path in execution order. The sort is stable over
	// the topological order so ties stay deterministic.
	sort.SliceStable(s.CriticalPath, func(a, b int) bool {
		ra, rb := s.Results[s.CriticalPath[a]], s.Results[s.CriticalPath[b]]
		if ra.ES != rb.ES {
			return ra.ES < rb.ES
		}
		return ra.EF < rb.EF
	})
	sort.Strings(s.NegativeFloat)

	return nil
}

// computeWaves groups activities by their early start.
func computeWaves(s *Schedule) []Wave {
	esGroups := make(map[int][]string)
	for _, id := range s.Order {
		es := s.Results[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		ids := esGroups[es]
		sort.Strings(ids)

		hasCritical := false
		for _, id := range ids {
			r := s.Results[id]
			r.Wave = i
			s.Results[id] = r
			if r.Critical {
				hasCritical = true
			}
		}

		// Critical activities first within a wave.
		sort.SliceStable(ids, func(a, b int) bool {
			return s.Results[ids[a]].Critical && !s.Results[ids[b]].Critical
		})

		waves[i] = Wave{
			Index:       i,
			Start:       es,
			ActivityIDs: ids,
			IsCritical:  hasCritical,
		}
	}

	return waves
}
