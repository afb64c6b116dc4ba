// Package auth establishes sessions with the CRM platform and the BI targets.
// Sessions are owned here; the pipeline only passes them through to
// collaborator calls.
package auth

import (
	"context"
	"net/http"

	"crmsync/internal/domain"
)

// HTTPSession is an authenticated handle to an HTTP-speaking external system.
type HTTPSession struct {
	Client  *http.Client
	BaseURL string
	Token   string
}

// LocalSession is the session for targets that need no remote authentication,
// such as flat-file delivery.
type LocalSession struct{}

// TargetCredentials holds the endpoint and token for one BI target kind.
type TargetCredentials struct {
	BaseURL string
	Token   string
}

// StaticProvider issues sessions from static configuration: the CRM endpoint
// and token from the environment, target endpoints from the job document.
type StaticProvider struct {
	client  *http.Client
	crmURL  string
	crmTok  string
	targets map[domain.TargetKind]TargetCredentials
}

// NewStaticProvider creates a provider. client may be nil, in which case
// http.DefaultClient is used.
func NewStaticProvider(client *http.Client, crmBaseURL, crmToken string, targets map[domain.TargetKind]TargetCredentials) *StaticProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &StaticProvider{client: client, crmURL: crmBaseURL, crmTok: crmToken, targets: targets}
}

// CRMSession returns the session for query execution.
func (p *StaticProvider) CRMSession(_ context.Context) (domain.Session, error) {
	if p.crmURL == "" {
		return nil, domain.ErrAuth(nil, "CRM session unavailable: no base URL configured")
	}
	if p.crmTok == "" {
		return nil, domain.ErrAuth(nil, "CRM session unavailable: no credentials configured")
	}
	return &HTTPSession{Client: p.client, BaseURL: p.crmURL, Token: p.crmTok}, nil
}

// TargetSession returns the session for delivery to the given target kind.
// Flat-file targets write locally and need no credentials.
func (p *StaticProvider) TargetSession(_ context.Context, kind domain.TargetKind) (domain.Session, error) {
	if kind == domain.TargetFlatFile {
		return LocalSession{}, nil
	}
	creds, ok := p.targets[kind]
	if !ok || creds.BaseURL == "" {
		return nil, domain.ErrAuth(nil, "no %s endpoint configured", kind)
	}
	if creds.Token == "" {
		return nil, domain.ErrAuth(nil, "no %s credentials configured", kind)
	}
	return &HTTPSession{Client: p.client, BaseURL: creds.BaseURL, Token: creds.Token}, nil
}

// Compile-time check that StaticProvider implements the collaborator contract.
var _ domain.AuthProvider = (*StaticProvider)(nil)
