package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

// hclFile is the top-level structure of an HCL network file:
//
//	program  = "apollo"
//	deadline = 40
//
//	activity "A" {
//	  duration        = 5
//	  constraint      = "SNET"
//	  constraint_date = 2
//	}
//
//	dependency {
//	  from = "A"
//	  to   = "B"
//	  type = "SS"
//	  lag  = -1
//	}
type hclFile struct {
	Program      string           `hcl:"program,optional"`
	Deadline     *int             `hcl:"deadline,optional"`
	Activities   []*hclActivity   `hcl:"activity,block"`
	Dependencies []*hclDependency `hcl:"dependency,block"`
}

type hclActivity struct {
	ID             string `hcl:"id,label"`
	Name           string `hcl:"name,optional"`
	Duration       int    `hcl:"duration"`
	Constraint     string `hcl:"constraint,optional"`
	ConstraintDate int    `hcl:"constraint_date,optional"`
}

type hclDependency struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
	Type string `hcl:"type,optional"`
	Lag  int    `hcl:"lag,optional"`
}

// parseHCL decodes an HCL network file. filename only labels diagnostics.
func parseHCL(data []byte, filename, name string) (*network.Program, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse HCL: %w", diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decode HCL: %w", diags)
	}

	doc := document{Program: parsed.Program, Deadline: parsed.Deadline}
	for _, a := range parsed.Activities {
		ad := activityDoc{ID: a.ID, Name: a.Name, Duration: a.Duration}
		if a.Constraint != "" {
			ad.Constraint = &constraintDoc{Type: a.Constraint, Date: a.ConstraintDate}
		}
		doc.Activities = append(doc.Activities, ad)
	}
	for _, d := range parsed.Dependencies {
		doc.Dependencies = append(doc.Dependencies, dependencyDoc{From: d.From, To: d.To, Type: d.Type, Lag: d.Lag})
	}

	return doc.program(name), nil
}
