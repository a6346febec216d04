// Package seed loads the region/discipline catalog and, optionally, the
// popular-composer list into the store at startup. Everything here is
// idempotent so restarting never duplicates rows.
package seed

import (
	"context"
	"fmt"
	"os"

	"examrecord/internal/gateway/openopus"
	"examrecord/internal/logger"
	"examrecord/internal/store/gormstore"
	"examrecord/internal/store/model"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk seed file.
type Catalog struct {
	Regions     []Entry `yaml:"regions"`
	Disciplines []Entry `yaml:"disciplines"`
}

// Entry is one named, slugged catalog row.
type Entry struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

// LoadCatalog parses the YAML seed file at path.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file failed (%s): %w", path, err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parsing seed file failed (%s): %w", path, err)
	}
	return &catalog, nil
}

// Apply upserts the catalog's regions and disciplines by slug.
func Apply(ctx context.Context, store *gormstore.Store, catalog *Catalog) error {
	for _, entry := range catalog.Regions {
		if entry.Slug == "" {
			return fmt.Errorf("seed region %q has no slug", entry.Name)
		}
		if err := store.UpsertRegion(ctx, &model.Region{Name: entry.Name, Slug: entry.Slug}); err != nil {
			return err
		}
	}
	for _, entry := range catalog.Disciplines {
		if entry.Slug == "" {
			return fmt.Errorf("seed discipline %q has no slug", entry.Name)
		}
		if err := store.UpsertDiscipline(ctx, &model.Discipline{Name: entry.Name, Slug: entry.Slug}); err != nil {
			return err
		}
	}
	logger.Infof("seeded %d regions and %d disciplines", len(catalog.Regions), len(catalog.Disciplines))
	return nil
}

// ImportComposers pulls the catalog's popular composers and creates any
// that are missing locally, as verified rows. Failures here are logged and
// tolerated: the service runs fine without the import.
func ImportComposers(ctx context.Context, store *gormstore.Store, client *openopus.Client) {
	composers, err := client.PopularComposers(ctx)
	if err != nil {
		logger.Warnf("popular composer import skipped: %v", err)
		return
	}
	imported := 0
	for _, c := range composers {
		if c.ID == "" {
			continue
		}
		existing, err := store.ComposerByOpenopusID(ctx, c.ID)
		if err != nil || existing != nil {
			continue
		}
		name := c.Complete
		if name == "" {
			name = c.Name
		}
		openopusID := c.ID
		row := &model.Composer{Name: name, OpenopusID: &openopusID, IsVerified: true}
		if err := store.CreateComposer(ctx, row); err != nil {
			if !gormstore.IsDuplicate(err) {
				logger.Warnf("importing composer %s failed: %v", name, err)
			}
			continue
		}
		imported++
	}
	logger.Infof("imported %d popular composers", imported)
}
