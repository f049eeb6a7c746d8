package validate

import (
	"bytes"
	"fmt"

	"github.com/jimbok8/lbvh-1/bvh"
	"github.com/olekukonko/tablewriter"
)

// Result bundles the findings of a full hierarchy check.
type Result struct {
	Mode        Mode
	Topology    []TopologyError
	Containment []ContainmentError

	// False when the volume check was skipped because the topology was
	// unsound.
	VolumesChecked bool
}

// Check runs CheckTopology and, only if it reports nothing, CheckVolumes.
func Check(h bvh.Hierarchy, mode Mode) Result {
	res := Result{
		Mode:     mode,
		Topology: CheckTopology(h, mode),
	}
	if len(res.Topology) != 0 {
		return res
	}

	res.VolumesChecked = true
	res.Containment = CheckVolumes(h, mode)
	return res
}

// Returns true if no violations were found.
func (r Result) Ok() bool {
	return len(r.Topology) == 0 && len(r.Containment) == 0
}

// Errors returns all findings as a flat error list, topology first.
func (r Result) Errors() []error {
	out := make([]error, 0, len(r.Topology)+len(r.Containment))
	for _, err := range r.Topology {
		out = append(out, err)
	}
	for _, err := range r.Containment {
		out = append(out, err)
	}
	return out
}

// Build a tabular representation of the findings.
func (r Result) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Check", "Violation", "Index", "Details"})
	for _, err := range r.Topology {
		table.Append([]string{
			"topology",
			err.Kind.String(),
			fmt.Sprintf("%d", err.Index),
			fmt.Sprintf("count %d", err.ObservedCount),
		})
	}
	for _, err := range r.Containment {
		table.Append([]string{
			"volume",
			"Containment",
			fmt.Sprintf("%d -> %d", err.ParentIndex, err.ChildIndex),
			fmt.Sprintf("%8.04f < %8.04f", err.ParentVolume, err.ChildVolume),
		})
	}
	table.SetFooter([]string{"", "", r.Mode.String(), fmt.Sprintf("%d violation(s)", len(r.Topology)+len(r.Containment))})

	table.Render()
	return buf.String()
}
