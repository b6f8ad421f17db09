package setup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/project"
)

// SoftwareRegistrar creates the software record for the local project.
type SoftwareRegistrar struct {
	deps   Deps
	logger zerolog.Logger
}

// NewSoftwareRegistrar creates a SoftwareRegistrar.
func NewSoftwareRegistrar(deps Deps) *SoftwareRegistrar {
	return &SoftwareRegistrar{
		deps:   deps,
		logger: deps.Logger.With().Str("component", "software_registrar").Logger(),
	}
}

// Register reads package.json and creates a software record for it under
// the session's publisher. With requirePublisher set, a manifest without a
// publisher field is rejected before any request is made.
func (r *SoftwareRegistrar) Register(ctx context.Context, sess config.Session, requirePublisher bool) (config.Session, *api.Software, error) {
	out := r.deps.Printer

	out.Line("Reading package.json...")
	manifest, err := project.ReadManifest(r.deps.Dir)
	if err != nil {
		return config.Session{}, nil, err
	}
	if requirePublisher {
		if err := manifest.RequirePublisher(); err != nil {
			return config.Session{}, nil, err
		}
	}

	out.Line("Creating software record...")
	software, err := r.deps.API.CreateSoftware(ctx, sess.PublisherID, api.CreateSoftwareRequest{
		Name:    manifest.Name,
		Version: manifest.Version,
		Metadata: api.SoftwareMetadata{
			Category: api.DefaultCategory,
			Platform: api.DefaultPlatform,
		},
		ExtensionID: sess.PublisherID + "." + manifest.Name,
	})
	if err != nil {
		return config.Session{}, nil, err
	}

	r.logger.Debug().Str("software_id", software.ID).Msg("software created")

	return config.Session{
		SoftwareID:    software.ID,
		ExtensionID:   manifest.Name,
		PublisherName: manifest.Publisher,
	}, software, nil
}
