package sync

import (
	"encoding/json"
	"fmt"
	"os"

	"crmsync/internal/domain"
)

// stageResultSet serializes the result set to a temporary JSON spool file and
// returns the delivery payload plus a cleanup func. The spool is exclusively
// owned by the calling task execution; cleanup must run on every exit path.
func stageResultSet(rs *domain.ResultSet) (domain.Payload, func(), error) {
	f, err := os.CreateTemp("", "crmsync-spool-*.json")
	if err != nil {
		return domain.Payload{}, nil, fmt.Errorf("create spool: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	enc := json.NewEncoder(f)
	if err := enc.Encode(rs); err != nil {
		_ = f.Close()
		cleanup()
		return domain.Payload{}, nil, fmt.Errorf("encode spool: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return domain.Payload{}, nil, fmt.Errorf("close spool: %w", err)
	}

	return domain.Payload{Result: rs, SpoolPath: path}, cleanup, nil
}
