package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"crmsync/internal/auth"
	"crmsync/internal/domain"
)

// FlatFileAdapter writes result sets as JSON files into a local export
// directory. It needs no remote session.
type FlatFileAdapter struct {
	dir    string
	logger *slog.Logger
}

// NewFlatFileAdapter creates the flat-file adapter writing into dir.
func NewFlatFileAdapter(dir string, logger *slog.Logger) *FlatFileAdapter {
	return &FlatFileAdapter{dir: dir, logger: logger}
}

// Kind returns the target kind this adapter serves.
func (a *FlatFileAdapter) Kind() domain.TargetKind { return domain.TargetFlatFile }

// ValidateDescriptor requires a destination name usable as a file name.
func (a *FlatFileAdapter) ValidateDescriptor(d domain.TargetDescriptor) error {
	if d.Name == "" {
		return domain.ErrConfiguration("%s target: missing destination name", a.Kind())
	}
	if strings.ContainsAny(d.Name, `/\`) || d.Name == "." || d.Name == ".." {
		return domain.ErrConfiguration("%s target %q: destination name must be a plain file name", a.Kind(), d.Name)
	}
	if a.dir == "" {
		return domain.ErrConfiguration("%s target %q: no export directory configured", a.Kind(), d.Name)
	}
	return nil
}

// Deliver copies the staged spool into the export directory under the
// destination name. The spool stays owned by the caller; only the copy
// persists.
func (a *FlatFileAdapter) Deliver(ctx context.Context, sess domain.Session, p domain.Payload, d domain.TargetDescriptor) (*domain.DeliveryReceipt, error) {
	if _, ok := sess.(auth.LocalSession); !ok {
		return nil, domain.ErrDelivery(a.Kind(), nil, "session is not a local session")
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrDelivery(a.Kind(), err, "delivery aborted: %v", err)
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, domain.ErrDelivery(a.Kind(), err, "create export directory: %v", err)
	}

	dest := filepath.Join(a.dir, fmt.Sprintf("%s.json", d.Name))
	if err := copyFile(p.SpoolPath, dest); err != nil {
		return nil, domain.ErrDelivery(a.Kind(), err, "write %s: %v", dest, err)
	}

	a.logger.Debug("flat-file delivery complete", "path", dest, "rows", p.Result.RowCount())
	return &domain.DeliveryReceipt{DestinationID: dest, RecordCount: p.Result.RowCount()}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// ReadResultSet reads back a flat-file export. Rows round-trip through JSON,
// so numbers come back as float64 and timestamps as strings.
func ReadResultSet(path string) (*domain.ResultSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	var rs domain.ResultSet
	if err := json.NewDecoder(f).Decode(&rs); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return &rs, nil
}

var _ domain.TargetAdapter = (*FlatFileAdapter)(nil)
