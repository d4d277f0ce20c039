// Package report renders schedules for terminals, Graphviz and JSON consumers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/cpm"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/ui"
)

// Reporter renders one scheduled program.
type Reporter struct {
	Program  string
	Network  *network.Network
	Schedule *cpm.Schedule
}

// New creates a new Reporter.
func New(program string, net *network.Network, s *cpm.Schedule) *Reporter {
	return &Reporter{Program: program, Network: net, Schedule: s}
}

// PrintSchedule writes the per-activity schedule table grouped by wave.
func (r *Reporter) PrintSchedule(w io.Writer) {
	s := r.Schedule

	fmt.Fprintf(w, "🎯 %s %s\n", ui.BoldCyan("Schedule"), ui.ProgramPrefix(r.Program))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════════"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Activities: %s\n", ui.Bold(len(s.Results)))
	fmt.Fprintf(w, "Duration:   %s", ui.Bold(s.ProjectDuration))
	if s.Finish != s.ProjectDuration {
		fmt.Fprintf(w, " %s", ui.Dim(fmt.Sprintf("(deadline %d)", s.Finish)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚡ Critical path: %s (%d activities)\n", ui.BoldYellow(r.criticalChain()), len(s.CriticalPath))
	if s.Infeasible {
		fmt.Fprintf(w, "%s negative float on %s\n", ui.BoldRed("✗ infeasible:"), strings.Join(s.NegativeFloat, ", "))
	}
	fmt.Fprintln(w)

	width := r.idWidth()
	fmt.Fprintf(w, "    %s %s %s %s %s %s %s\n",
		ui.Pad(ui.Dim, "ID", width),
		ui.Dim(fmt.Sprintf("%5s", "ES")), ui.Dim(fmt.Sprintf("%5s", "EF")),
		ui.Dim(fmt.Sprintf("%5s", "LS")), ui.Dim(fmt.Sprintf("%5s", "LF")),
		ui.Dim(fmt.Sprintf("%5s", "TF")), ui.Dim(fmt.Sprintf("%5s", "FF")))

	for _, wave := range s.Waves {
		fmt.Fprintf(w, "  🌊 %s %d %s\n", ui.BoldWhite("WAVE"), wave.Index+1, ui.Dim(fmt.Sprintf("(start %d)", wave.Start)))
		for _, id := range wave.ActivityIDs {
			res := s.Results[id]
			fmt.Fprintf(w, "    %s %5d %5d %5d %5d %s %5d  %s %s\n",
				ui.Pad(ui.BoldMagenta, id, width),
				res.ES, res.EF, res.LS, res.LF,
				padLeft(res.TotalFloat, 5)+ui.Float(res.TotalFloat),
				res.FreeFloat,
				ui.FloatIcon(res.TotalFloat), r.name(id))
		}
		fmt.Fprintln(w)
	}
}

// PrintCritical writes the critical path as a single chain.
func (r *Reporter) PrintCritical(w io.Writer) {
	if len(r.Schedule.CriticalPath) == 0 {
		fmt.Fprintf(w, "%s %s\n", ui.ProgramPrefix(r.Program), ui.Dim("no critical activities"))
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", ui.ProgramPrefix(r.Program), ui.BoldYellow(r.criticalChain()),
		ui.Dim(fmt.Sprintf("(%d units)", r.Schedule.ProjectDuration)))
}

// PrintASCII writes a wave-grouped dependency diagram.
func (r *Reporter) PrintASCII(w io.Writer) {
	fmt.Fprintf(w, "🔗 %s %s\n", ui.BoldCyan("Activity Network"), ui.ProgramPrefix(r.Program))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range r.Schedule.Waves {
		fmt.Fprintf(w, "%s 🌊 Wave %d @ %d %s\n", ui.Cyan("──"), wave.Index+1, wave.Start, ui.Cyan("──────────────────────────────"))
		for _, id := range wave.ActivityIDs {
			crit := " "
			if r.Schedule.Results[id].Critical {
				crit = ui.BoldYellow("⚡")
			}
			fmt.Fprintf(w, "  %s [%s] %s\n", crit, ui.BoldMagenta(id), r.name(id))

			node := r.Network.Index[id]
			for _, ei := range r.Network.Out[node] {
				e := r.Network.Edges[ei]
				fmt.Fprintf(w, "      %s %s %s\n", ui.Dim("└──→"), ui.Magenta(r.Network.ID(e.To)), ui.Dim(edgeLabel(e)))
			}
		}
		fmt.Fprintln(w)
	}
}

// PrintDOT writes the network in Graphviz DOT format. Critical activities
// and edges joining two critical activities are drawn in red.
func (r *Reporter) PrintDOT(w io.Writer) {
	fmt.Fprintf(w, "digraph \"%s\" {\n", dotEscape(r.Program))
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, id := range r.Schedule.Order {
		res := r.Schedule.Results[id]
		label := fmt.Sprintf("%s\\nES %d  EF %d  TF %d", dotEscape(id), res.ES, res.EF, res.TotalFloat)
		if name := r.name(id); name != "" {
			label += "\\n" + dotEscape(name)
		}
		attrs := fmt.Sprintf(`label="%s"`, label)
		switch {
		case res.TotalFloat < 0:
			attrs += `, color=orange`
		case res.Critical:
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  \"%s\" [%s];\n", dotEscape(id), attrs)
	}

	fmt.Fprintln(w)

	for _, e := range r.Network.Edges {
		from, to := r.Network.ID(e.From), r.Network.ID(e.To)
		attrs := []string{fmt.Sprintf("label=%q", edgeLabel(e))}
		if r.Schedule.Results[from].Critical && r.Schedule.Results[to].Critical {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		fmt.Fprintf(w, "  \"%s\" -> \"%s\" [%s];\n", dotEscape(from), dotEscape(to), strings.Join(attrs, ", "))
	}

	fmt.Fprintln(w, "}")
}

// JSON returns the schedule as indented JSON, tagged with the program name.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		Program string `json:"program"`
		*cpm.Schedule
	}
	return json.MarshalIndent(output{Program: r.Program, Schedule: r.Schedule}, "", "  ")
}

func (r *Reporter) criticalChain() string {
	return strings.Join(r.Schedule.CriticalPath, " → ")
}

func (r *Reporter) name(id string) string {
	if r.Network == nil {
		return ""
	}
	i, ok := r.Network.Index[id]
	if !ok {
		return ""
	}
	name := []rune(r.Network.Activities[i].Name)
	if len(name) > 40 {
		return string(name[:37]) + "..."
	}
	return string(name)
}

func (r *Reporter) idWidth() int {
	width := 2
	for id := range r.Schedule.Results {
		if n := utf8.RuneCountInString(id); n > width {
			width = n
		}
	}
	return width
}

// edgeLabel renders an edge as "FS", "SS+2" or "FF-1".
func edgeLabel(e network.Edge) string {
	switch {
	case e.Lag > 0:
		return fmt.Sprintf("%s+%d", e.Relation, e.Lag)
	case e.Lag < 0:
		return fmt.Sprintf("%s%d", e.Relation, e.Lag)
	}
	return string(e.Relation)
}

// dotEscape escapes s for use inside a double-quoted DOT string.
func dotEscape(s string) string {
	return dotReplacer.Replace(s)
}

var dotReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// padLeft returns the spaces that right-align an already styled integer in
// width columns.
func padLeft(v, width int) string {
	n := width - len(fmt.Sprintf("%d", v))
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
