package upload

import (
	"context"
	"log/slog"

	domain "github.com/mohammadpnp/contact-sync/internal/domain/contact"
	"golang.org/x/sync/errgroup"
)

type fieldTagCreator interface {
	CreateCustomField(ctx context.Context, accessToken, locationID, name string) (string, error)
	CreateTag(ctx context.Context, accessToken, locationID, name string) (string, error)
}

// Provisioner ensures every custom field and tag an upload references
// exists upstream before the job is accepted, and rewrites mapping
// placeholders to the created field keys.
type Provisioner struct {
	crm fieldTagCreator
	log *slog.Logger
}

func NewProvisioner(crm fieldTagCreator, logger *slog.Logger) *Provisioner {
	return &Provisioner{crm: crm, log: logger}
}

// Provision creates the mapping's distinct custom fields (phone-type
// columns collapse to one shared field) and every custom-prefixed tag,
// all concurrently; the set is small and caller-controlled. Any
// upstream failure aborts the whole accept flow. On success the
// returned mapping carries no placeholder entries.
func (p *Provisioner) Provision(ctx context.Context, accessToken, locationID string, mapping domain.Mapping, tags []domain.TagRef) (domain.Mapping, error) {
	names := mapping.CustomFieldNames()
	keys := make([]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			key, err := p.crm.CreateCustomField(gctx, accessToken, locationID, name)
			if err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}
	for _, tag := range tags {
		if !tag.IsCustom() {
			continue
		}
		tag := tag
		g.Go(func() error {
			_, err := p.crm.CreateTag(gctx, accessToken, locationID, tag.Name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.log.Info("provisioned upload prerequisites",
		"location_id", locationID,
		"custom_fields", len(names),
	)

	byName := make(map[string]string, len(names))
	for i, name := range names {
		byName[name] = keys[i]
	}
	return mapping.Resolve(byName)
}
