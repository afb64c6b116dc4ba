package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"crmsync/internal/domain"
)

// TargetConnection holds per-kind connection parameters from the job document.
// Credentials stay in the environment; the document only carries endpoints.
type TargetConnection struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	Directory string `yaml:"directory,omitempty"` // flat-file output directory
}

// JobDocument is the parsed YAML job configuration: connection parameters per
// target kind plus the list of sync jobs.
type JobDocument struct {
	Targets map[domain.TargetKind]TargetConnection `yaml:"targets"`
	Jobs    []domain.Job                           `yaml:"jobs"`
}

// AllJobs returns every job in declaration order.
func (d *JobDocument) AllJobs() []domain.Job {
	return d.Jobs
}

// Job returns the job with the given name.
func (d *JobDocument) Job(name string) (domain.Job, bool) {
	for _, j := range d.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return domain.Job{}, false
}

// ScheduledJobs returns the jobs that carry a non-empty schedule expression.
func (d *JobDocument) ScheduledJobs() []domain.Job {
	var out []domain.Job
	for _, j := range d.Jobs {
		if j.Schedule != "" {
			out = append(out, j)
		}
	}
	return out
}

// LoadJobsFile reads and validates the YAML job document at path.
func LoadJobsFile(path string) (*JobDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job document: %w", err)
	}
	doc, err := ParseJobDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// ParseJobDocument decodes the job document, rejecting unknown fields so that
// typos in job files surface at startup instead of silently dropping tasks.
func ParseJobDocument(data []byte) (*JobDocument, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc JobDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &JobDocument{}, nil
		}
		return nil, err
	}

	seen := make(map[string]bool, len(doc.Jobs))
	for _, j := range doc.Jobs {
		if err := j.Validate(); err != nil {
			return nil, err
		}
		if seen[j.Name] {
			return nil, domain.ErrConfiguration("duplicate job name %q", j.Name)
		}
		seen[j.Name] = true
	}
	return &doc, nil
}
