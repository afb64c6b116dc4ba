package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmsync/internal/domain"
)

const sampleDocument = `
targets:
  dashboard-server:
    base_url: https://dash.example.com
  bi-workspace:
    base_url: https://bi.example.com
  flat-file:
    directory: /var/lib/crmsync/exports
jobs:
  - name: Daily
    schedule: "0 6 * * *"
    queries:
      - name: accounts
        query_text: SELECT Id, Name FROM Account
        target:
          kind: dashboard-server
          name: Accounts
          project: sales
      - name: contacts
        query_text: SELECT Id, Email FROM Contact
        target:
          kind: bi-workspace
          name: Contacts
          workspace: crm
  - name: AdHoc
    queries:
      - name: dump
        query_text: SELECT Id FROM Lead
        target:
          kind: flat-file
          name: leads
`

func TestParseJobDocument(t *testing.T) {
	t.Parallel()

	doc, err := ParseJobDocument([]byte(sampleDocument))
	require.NoError(t, err)

	require.Len(t, doc.Jobs, 2)
	assert.Equal(t, "https://dash.example.com", doc.Targets[domain.TargetDashboardServer].BaseURL)
	assert.Equal(t, "/var/lib/crmsync/exports", doc.Targets[domain.TargetFlatFile].Directory)

	daily, ok := doc.Job("Daily")
	require.True(t, ok)
	assert.Equal(t, "0 6 * * *", daily.Schedule)
	require.Len(t, daily.Tasks, 2)

	// Task order follows declaration order.
	assert.Equal(t, "accounts", daily.Tasks[0].Name)
	assert.Equal(t, "contacts", daily.Tasks[1].Name)

	// Kind-specific parameters land in the inline Params map.
	assert.Equal(t, domain.TargetDashboardServer, daily.Tasks[0].Target.Kind)
	assert.Equal(t, "sales", daily.Tasks[0].Target.Param("project"))
	assert.Equal(t, "crm", daily.Tasks[1].Target.Param("workspace"))

	// Jobs without a schedule are on-demand only.
	scheduled := doc.ScheduledJobs()
	require.Len(t, scheduled, 1)
	assert.Equal(t, "Daily", scheduled[0].Name)
}

func TestParseJobDocument_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name: "duplicate job names",
			input: `
jobs:
  - name: Daily
    queries: []
  - name: Daily
    queries: []
`,
			wantErr: `duplicate job name "Daily"`,
		},
		{
			name: "duplicate task names within a job",
			input: `
jobs:
  - name: Daily
    queries:
      - name: t1
        query_text: SELECT 1
        target: {kind: flat-file, name: a}
      - name: t1
        query_text: SELECT 2
        target: {kind: flat-file, name: b}
`,
			wantErr: `duplicate query name "t1"`,
		},
		{
			name: "unknown field rejected",
			input: `
jobs:
  - name: Daily
    cron: "0 6 * * *"
    queries: []
`,
			wantErr: "field cron not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseJobDocument([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseJobDocument_BlankQueryTextIsAccepted(t *testing.T) {
	t.Parallel()

	// A blank query is a runtime skip, not a load error: the task must reach
	// the runner so its outcome appears in the job report.
	doc, err := ParseJobDocument([]byte(`
jobs:
  - name: Daily
    queries:
      - name: t2
        query_text: ""
        target: {kind: bi-workspace, name: x}
`))
	require.NoError(t, err)
	require.Len(t, doc.Jobs[0].Tasks, 1)
	assert.Empty(t, doc.Jobs[0].Tasks[0].QueryText)
}

func TestParseJobDocument_Empty(t *testing.T) {
	t.Parallel()

	doc, err := ParseJobDocument([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Jobs)
}

func TestLoadJobsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o600))

	doc, err := LoadJobsFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Jobs, 2)

	_, err = LoadJobsFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
