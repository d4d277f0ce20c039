package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/cpm"
	"github.com/jason-marshall/defense-pm-tool-sub006/internal/ui"
)

// PrintBatch writes one summary line per program.
func PrintBatch(w io.Writer, results []cpm.BatchResult) {
	failed, infeasible := 0, 0
	for _, res := range results {
		prefix := ui.ProgramPrefix(res.Program)
		switch {
		case res.Err != nil:
			failed++
			fmt.Fprintf(w, "%s %s %s\n", ui.Red("✗"), prefix, ui.Red(res.Err.Error()))
		case res.Schedule.Infeasible:
			infeasible++
			fmt.Fprintf(w, "%s %s duration %s, %s\n", ui.BoldRed("✗"), prefix,
				ui.Bold(res.Schedule.ProjectDuration),
				ui.Red(fmt.Sprintf("negative float on %d activities", len(res.Schedule.NegativeFloat))))
		default:
			fmt.Fprintf(w, "%s %s duration %s, %d critical of %d\n", ui.Green("✓"), prefix,
				ui.Bold(res.Schedule.ProjectDuration), len(res.Schedule.CriticalPath), len(res.Schedule.Results))
		}
	}

	fmt.Fprintf(w, "\n%s programs", ui.Bold(len(results)))
	if failed > 0 {
		fmt.Fprintf(w, ", %s", ui.Red(fmt.Sprintf("%d failed", failed)))
	}
	if infeasible > 0 {
		fmt.Fprintf(w, ", %s", ui.Red(fmt.Sprintf("%d infeasible", infeasible)))
	}
	fmt.Fprintln(w)
}

// BatchJSON returns machine-readable batch results.
func BatchJSON(results []cpm.BatchResult) ([]byte, error) {
	type programResult struct {
		Program  string        `json:"program"`
		Error    string        `json:"error,omitempty"`
		Schedule *cpm.Schedule `json:"schedule,omitempty"`
	}

	out := make([]programResult, len(results))
	for i, res := range results {
		out[i] = programResult{Program: res.Program, Schedule: res.Schedule}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
