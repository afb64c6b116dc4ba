package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResultSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		columns []string
		wantErr string
	}{
		{name: "simple header", columns: []string{"Id", "Name"}},
		{name: "empty header", columns: []string{}},
		{name: "duplicate column", columns: []string{"Id", "Id"}, wantErr: "duplicate column"},
		{name: "blank column", columns: []string{"Id", ""}, wantErr: "blank column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rs, err := NewResultSet(tt.columns)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.columns, rs.Columns)
			assert.Equal(t, 0, rs.RowCount())
		})
	}
}

func TestResultSet_Append(t *testing.T) {
	t.Parallel()

	rs, err := NewResultSet([]string{"A", "B"})
	require.NoError(t, err)

	require.NoError(t, rs.Append(Row{"A": float64(1), "B": "x"}))
	require.NoError(t, rs.Append(Row{"A": float64(2), "B": "y"}))
	assert.Equal(t, 2, rs.RowCount())

	// Wrong arity.
	err = rs.Append(Row{"A": float64(3)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 values")

	// Right arity, wrong column set.
	err = rs.Append(Row{"A": float64(3), "C": "z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "B"`)

	// Failed appends must not have mutated the rows.
	assert.Equal(t, 2, rs.RowCount())
}

func TestResultSet_RowOrderPreserved(t *testing.T) {
	t.Parallel()

	rs, err := NewResultSet([]string{"n"})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, rs.Append(Row{"n": float64(i)}))
	}
	for i, row := range rs.Rows {
		assert.Equal(t, float64(i), row["n"])
	}
}
