package domain

// TargetKind identifies one delivery target family. The set is closed at
// adapter-registry construction time; adding a kind means registering a new
// adapter, not editing the runners.
type TargetKind string

const (
	TargetDashboardServer TargetKind = "dashboard-server"
	TargetBIWorkspace     TargetKind = "bi-workspace"
	TargetFlatFile        TargetKind = "flat-file"
)

// TargetDescriptor identifies a delivery destination. It is parsed once from
// job configuration, immutable, and shared read-only across executions of the
// task that owns it.
type TargetDescriptor struct {
	Kind   TargetKind        `yaml:"kind" json:"kind"`
	Name   string            `yaml:"name" json:"name"`
	Params map[string]string `yaml:",inline" json:"params,omitempty"`
}

// Param returns a kind-specific parameter value, or "" when absent.
func (d TargetDescriptor) Param(key string) string {
	return d.Params[key]
}
