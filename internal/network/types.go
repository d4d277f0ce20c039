package network

import (
	"fmt"
	"strings"
)

// Relation is the precedence kind of a dependency.
type Relation string

const (
	FS Relation = "FS" // finish-to-start
	SS Relation = "SS" // start-to-start
	FF Relation = "FF" // finish-to-finish
	SF Relation = "SF" // start-to-finish
)

var relationAliases = map[string]Relation{
	"":                 FS,
	"FS":               FS,
	"SS":               SS,
	"FF":               FF,
	"SF":               SF,
	"FINISH-TO-START":  FS,
	"START-TO-START":   SS,
	"FINISH-TO-FINISH": FF,
	"START-TO-FINISH":  SF,
}

// ParseRelation normalizes a relation name. An empty name means FS.
func ParseRelation(s string) (Relation, error) {
	if r, ok := relationAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown relation kind %q (use FS, SS, FF or SF)", s)
}

// ConstraintKind is a schedule constraint on a single activity.
type ConstraintKind string

const (
	ASAP ConstraintKind = "ASAP" // as soon as possible (default)
	ALAP ConstraintKind = "ALAP" // as late as possible; scheduled as ASAP for now
	SNET ConstraintKind = "SNET" // start no earlier than Date
	FNLT ConstraintKind = "FNLT" // finish no later than Date
)

// ParseConstraintKind normalizes a constraint name. An empty name means ASAP.
func ParseConstraintKind(s string) (ConstraintKind, error) {
	switch k := ConstraintKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case "", ASAP:
		return ASAP, nil
	case ALAP, SNET, FNLT:
		return k, nil
	}
	return "", fmt.Errorf("unknown constraint type %q (use ASAP, ALAP, SNET or FNLT)", s)
}

// Constraint pins an activity relative to project start. Date is only
// meaningful for SNET and FNLT.
type Constraint struct {
	Kind ConstraintKind `json:"type,omitempty"`
	Date int            `json:"date,omitempty"`
}

// Dated reports whether the constraint carries a date offset.
func (c Constraint) Dated() bool {
	return c.Kind == SNET || c.Kind == FNLT
}

// Activity is a schedulable unit of work. Duration is in abstract time units;
// zero marks a milestone.
type Activity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Duration   int        `json:"duration"`
	Constraint Constraint `json:"constraint,omitempty"`
}

// Dependency is a precedence relation from Predecessor to Successor.
// Positive Lag delays the successor, negative Lag is a lead.
type Dependency struct {
	Predecessor string   `json:"from"`
	Successor   string   `json:"to"`
	Relation    Relation `json:"type,omitempty"`
	Lag         int      `json:"lag,omitempty"`
}

func (d Dependency) String() string {
	rel := d.Relation
	if rel == "" {
		rel = FS
	}
	switch {
	case d.Lag > 0:
		return fmt.Sprintf("%s -%s+%d-> %s", d.Predecessor, rel, d.Lag, d.Successor)
	case d.Lag < 0:
		return fmt.Sprintf("%s -%s%d-> %s", d.Predecessor, rel, d.Lag, d.Successor)
	}
	return fmt.Sprintf("%s -%s-> %s", d.Predecessor, rel, d.Successor)
}

// Program is one schedulable unit: the activities and dependencies of a
// single calculation, plus an optional deadline seeding the backward pass.
type Program struct {
	Name         string
	Deadline     *int
	Activities   []Activity
	Dependencies []Dependency
}

// Edge is a dependency resolved to node indices.
type Edge struct {
	From     int
	To       int
	Relation Relation
	Lag      int
}

// Network is the arena-backed precedence graph of one calculation.
// Activities are addressed by their position in Activities; edges by their
// position in Edges. A Network is read-only once built.
type Network struct {
	Activities []Activity
	Index      map[string]int // activity id -> node index
	Edges      []Edge
	Out        [][]int // node -> indices of outgoing edges
	In         [][]int // node -> indices of incoming edges
	Roots      []int   // nodes with no predecessors
	Leaves     []int   // nodes with no successors
}
