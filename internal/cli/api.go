package cli

import (
	"context"

	"github.com/pacific-emis/emisctl/internal/emisapi"
)

// newAPIClient returns an authenticated EMIS client.
func (e *environment) newAPIClient(ctx context.Context) (*emisapi.Client, error) {
	opts := []emisapi.Option{emisapi.WithLogger(e.logger)}
	if e.cfg.APIInsecureTLS {
		e.logger.Verbose("TLS certificate verification is disabled for %s", e.cfg.BaseURL)
		opts = append(opts, emisapi.WithInsecureTLS())
	}
	client := emisapi.New(e.cfg.BaseURL, e.cfg.Username, e.cfg.Password, opts...)
	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
