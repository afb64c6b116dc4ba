package domain

import "strings"

// QueryTask is the atomic unit of work: one named query plus its target.
type QueryTask struct {
	Name      string           `yaml:"name" json:"name"`
	QueryText string           `yaml:"query_text" json:"query_text"`
	Target    TargetDescriptor `yaml:"target" json:"target"`
}

// Validate checks the invariants the pipeline runner relies on before it
// touches any external system: a non-blank query and a non-empty target kind.
// Target-kind recognition is the adapter registry's job.
func (t QueryTask) Validate() error {
	if t.Name == "" {
		return ErrConfiguration("invalid task definition: name is required")
	}
	if strings.TrimSpace(t.QueryText) == "" {
		return ErrConfiguration("invalid task definition: query_text is blank")
	}
	if t.Target.Kind == "" {
		return ErrConfiguration("invalid task definition: target kind is required")
	}
	return nil
}

// Job is a named, ordered collection of query tasks plus a trigger schedule.
// A job with zero tasks is degenerate but legal and produces an empty report.
type Job struct {
	Name     string      `yaml:"name" json:"name"`
	Schedule string      `yaml:"schedule" json:"schedule,omitempty"`
	Tasks    []QueryTask `yaml:"queries" json:"queries"`
}

// Validate checks structural invariants of the job definition. Per-task
// runtime validity (blank queries, unknown kinds) is deliberately not checked
// here; those tasks must still reach the runner and yield skipped outcomes.
func (j Job) Validate() error {
	if j.Name == "" {
		return ErrConfiguration("job name is required")
	}
	seen := make(map[string]bool, len(j.Tasks))
	for _, t := range j.Tasks {
		if t.Name == "" {
			return ErrConfiguration("job %q: every query needs a name", j.Name)
		}
		if seen[t.Name] {
			return ErrConfiguration("job %q: duplicate query name %q", j.Name, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}
