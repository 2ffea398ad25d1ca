package commands

import (
	"context"

	"github.com/loosehose/sunvoy/internal/auth"
	"github.com/loosehose/sunvoy/internal/directory"
	"github.com/loosehose/sunvoy/internal/extract"
	"github.com/loosehose/sunvoy/internal/harvest"
	"github.com/loosehose/sunvoy/internal/output"
	"github.com/loosehose/sunvoy/internal/profile"
	"github.com/loosehose/sunvoy/internal/session"
	"github.com/loosehose/sunvoy/internal/transport"
	"github.com/loosehose/sunvoy/internal/ui"
)

func (a *app) harvest(ctx context.Context, opts ...transport.Option) error {
	h, err := a.newHarvester(opts...)
	if err != nil {
		return err
	}

	result, err := h.Run(ctx)
	if err != nil {
		return err
	}
	if a.table {
		ui.Records(result.Records)
	}
	return nil
}

func (a *app) newHarvester(opts ...transport.Option) (*harvest.Harvester, error) {
	cfg := a.cfg

	parser, err := extract.New(cfg.Parser)
	if err != nil {
		return nil, err
	}

	base := []transport.Option{
		transport.WithTimeout(cfg.HTTPTimeout),
		transport.WithUserAgent(cfg.UserAgent),
		transport.WithLogger(a.logger),
	}
	client, err := transport.New(cfg.BaseURL, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.CredentialsFile)
	creds := auth.Credentials{Username: cfg.Username, Password: cfg.Password}

	return harvest.New(harvest.Deps{
		Store:     store,
		Auth:      auth.NewAuthenticator(client, parser, store, creds, a.logger),
		Directory: directory.NewFetcher(client),
		Profile:   profile.NewScraper(client, parser),
		Output:    output.NewWriter(cfg.OutputFile),
		Logger:    a.logger,
	}), nil
}
