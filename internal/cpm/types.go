package cpm

// Schedule holds the complete critical path analysis of one network.
type Schedule struct {
	Results         map[string]Result `json:"results"`
	Order           []string          `json:"order"`         // topological order
	CriticalPath    []string          `json:"critical_path"` // critical ids by early start
	ProjectDuration int               `json:"project_duration"`
	Finish          int               `json:"finish"` // backward-pass seed: deadline or ProjectDuration
	Infeasible      bool              `json:"infeasible"`
	NegativeFloat   []string          `json:"negative_float,omitempty"`
	Waves           []Wave            `json:"waves"`
}

// Result holds the scheduling info for a single activity. All dates are
// integer offsets from project start.
type Result struct {
	ActivityID string `json:"id"`
	ES         int    `json:"es"` // early start
	EF         int    `json:"ef"` // early finish
	LS         int    `json:"ls"` // late start
	LF         int    `json:"lf"` // late finish
	TotalFloat int    `json:"total_float"`
	FreeFloat  int    `json:"free_float"`
	Critical   bool   `json:"critical"`
	Wave       int    `json:"wave"`
}

// Wave is a group of activities sharing the same early start.
type Wave struct {
	Index       int      `json:"index"`
	Start       int      `json:"start"`
	ActivityIDs []string `json:"activity_ids"`
	IsCritical  bool     `json:"is_critical"` // true if the wave holds a critical activity
}

// clone returns a deep copy of s.
func (s *Schedule) clone() *Schedule {
	c := *s
	c.Results = make(map[string]Result, len(s.Results))
	for id, r := range s.Results {
		c.Results[id] = r
	}
	c.Order = cloneStrings(s.Order)
	c.CriticalPath = cloneStrings(s.CriticalPath)
	c.NegativeFloat = cloneStrings(s.NegativeFloat)
	if s.Waves != nil {
		c.Waves = make([]Wave, len(s.Waves))
		for i, w := range s.Waves {
			w.ActivityIDs = cloneStrings(w.ActivityIDs)
			c.Waves[i] = w
		}
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
