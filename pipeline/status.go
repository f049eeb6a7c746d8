package pipeline

import "fmt"

// Status of a pipeline step. Values are ordered by severity.
type Status uint8

const (
	StatusOK Status = iota
	StatusSkipped
	StatusViolation
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusViolation:
		return "violation"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Worst returns the most severe of the given statuses.
func Worst(statuses ...Status) Status {
	worst := StatusOK
	for _, s := range statuses {
		if s > worst {
			worst = s
		}
	}
	return worst
}
