package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmsync/internal/domain"
)

func TestCRMSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		token   string
		wantErr bool
	}{
		{name: "configured", baseURL: "https://crm.example.com", token: "tok"},
		{name: "missing base url", token: "tok", wantErr: true},
		{name: "missing token", baseURL: "https://crm.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewStaticProvider(nil, tt.baseURL, tt.token, nil)
			sess, err := p.CRMSession(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				var authErr *domain.AuthError
				assert.True(t, errors.As(err, &authErr))
				return
			}
			require.NoError(t, err)
			hs, ok := sess.(*HTTPSession)
			require.True(t, ok)
			assert.Equal(t, tt.baseURL, hs.BaseURL)
			assert.Equal(t, tt.token, hs.Token)
			assert.NotNil(t, hs.Client)
		})
	}
}

func TestTargetSession(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider(nil, "", "", map[domain.TargetKind]TargetCredentials{
		domain.TargetDashboardServer: {BaseURL: "https://dash.example.com", Token: "dtok"},
		domain.TargetBIWorkspace:     {BaseURL: "https://bi.example.com"}, // no token
	})

	sess, err := p.TargetSession(context.Background(), domain.TargetDashboardServer)
	require.NoError(t, err)
	hs, ok := sess.(*HTTPSession)
	require.True(t, ok)
	assert.Equal(t, "https://dash.example.com", hs.BaseURL)

	_, err = p.TargetSession(context.Background(), domain.TargetBIWorkspace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")

	_, err = p.TargetSession(context.Background(), "unconfigured-kind")
	require.Error(t, err)
	var authErr *domain.AuthError
	assert.True(t, errors.As(err, &authErr))
}

func TestTargetSession_FlatFileNeedsNoCredentials(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider(nil, "", "", nil)
	sess, err := p.TargetSession(context.Background(), domain.TargetFlatFile)
	require.NoError(t, err)
	assert.IsType(t, LocalSession{}, sess)
}
