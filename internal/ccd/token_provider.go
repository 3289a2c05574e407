package ccd

import "context"

// StaticTokenProvider returns the same pre-issued service token for every
// jurisdiction. Deployments with per-jurisdiction credentials plug in their
// own TokenProvider.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider around a pre-issued token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) Token(ctx context.Context, jurisdiction string) (string, error) {
	return p.token, nil
}
