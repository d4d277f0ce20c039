package cpm

import (
	"fmt"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

// dates is the per-node working state of one analysis.
type dates struct {
	ES, EF, LS, LF int
}

// earliestStart returns the earliest start edge e permits for its successor.
func earliestStart(e network.Edge, pred dates, succDuration int) int {
	switch e.Relation {
	case network.FS:
		return pred.EF + e.Lag
	case network.SS:
		return pred.ES + e.Lag
	case network.FF:
		return pred.EF + e.Lag - succDuration
	case network.SF:
		return pred.ES + e.Lag - succDuration
	}
	panic(fmt.Sprintf("cpm: unhandled relation %q", e.Relation))
}

// latestFinish returns the latest finish edge e permits for its predecessor.
func latestFinish(e network.Edge, succ dates, predDuration int) int {
	switch e.Relation {
	case network.FS:
		return succ.LS - e.Lag
	case network.SS:
		return succ.LS - e.Lag + predDuration
	case network.FF:
		return succ.LF - e.Lag
	case network.SF:
		return succ.LF - e.Lag + predDuration
	}
	panic(fmt.Sprintf("cpm: unhandled relation %q", e.Relation))
}

// edgeSlack returns how far the predecessor of e can slip before it moves
// the early dates of the successor.
func edgeSlack(e network.Edge, pred, succ dates) int {
	switch e.Relation {
	case network.FS:
		return succ.ES - pred.EF - e.Lag
	case network.SS:
		return succ.ES - pred.ES - e.Lag
	case network.FF:
		return succ.EF - pred.EF - e.Lag
	case network.SF:
		return succ.EF - pred.ES - e.Lag
	}
	panic(fmt.Sprintf("cpm: unhandled relation %q", e.Relation))
}
