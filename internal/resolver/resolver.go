// Package resolver turns heterogeneous composer/work references (local id,
// authority id, free text) into local records, creating verified or
// unverified rows as needed.
package resolver

import (
	"context"
	"strings"

	"examrecord/internal/apperr"
	"examrecord/internal/gateway/wikidata"
	"examrecord/internal/store/gormstore"
	"examrecord/internal/store/model"

	"gorm.io/datatypes"
)

// Authority is the external composer directory. The resolver only needs
// lookup-by-id; search stays at the transport layer.
type Authority interface {
	ComposerByID(ctx context.Context, wikidataID string) (*wikidata.Entity, error)
}

// Resolver resolves composer and work inputs inside a caller-owned
// transaction. Rows it creates are rolled back with the rest of the
// submission if a later step fails.
type Resolver struct {
	authority Authority
}

func New(authority Authority) *Resolver {
	return &Resolver{authority: authority}
}

// ComposerInput identifies a composer one of three ways, tried in order:
// local id, authority id, free-text name.
type ComposerInput struct {
	ID         uint   `json:"id"`
	WikidataID string `json:"wikidata_id"`
	Name       string `json:"name"`
}

// WorkInput mirrors ComposerInput, scoped to the resolved composer.
type WorkInput struct {
	ID         uint   `json:"id"`
	OpenopusID string `json:"openopus_id"`
	Title      string `json:"title"`
	Nickname   string `json:"nickname"`
}

// ResolveComposer locates or creates the composer for the given input.
//
// An authority id that is unknown locally triggers an authority fetch and a
// verified local row; any authority failure, including "no such entity",
// surfaces as an error rather than degrading to an unverified row. A bare
// name always creates a fresh unverified row: name dedup is deliberately
// not performed here, duplicate unverified composers are acceptable.
func (r *Resolver) ResolveComposer(ctx context.Context, tx *gormstore.Store, in ComposerInput) (*model.Composer, error) {
	switch {
	case in.ID != 0:
		composer, err := tx.ComposerByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if composer == nil {
			return nil, apperr.NotFound("composer")
		}
		return composer, nil

	case strings.TrimSpace(in.WikidataID) != "":
		wikidataID := strings.TrimSpace(in.WikidataID)
		composer, err := tx.ComposerByWikidataID(ctx, wikidataID)
		if err != nil {
			return nil, err
		}
		if composer != nil {
			return composer, nil
		}
		entity, err := r.authority.ComposerByID(ctx, wikidataID)
		if err != nil {
			return nil, apperr.ExternalLookup("wikidata", err)
		}
		name := entity.Name
		if name == "" {
			name = strings.TrimSpace(in.Name)
		}
		if name == "" {
			name = "Unknown Composer"
		}
		composer = &model.Composer{
			Name:          name,
			WikidataID:    &wikidataID,
			IsVerified:    true,
			AuthorityData: datatypes.JSON(entity.Raw),
		}
		if err := tx.CreateComposer(ctx, composer); err != nil {
			if gormstore.IsDuplicate(err) {
				// A concurrent submission imported the same id first.
				return tx.ComposerByWikidataID(ctx, wikidataID)
			}
			return nil, err
		}
		return composer, nil

	case strings.TrimSpace(in.Name) != "":
		composer := &model.Composer{
			Name:       strings.TrimSpace(in.Name),
			IsVerified: false,
		}
		if err := tx.CreateComposer(ctx, composer); err != nil {
			return nil, err
		}
		return composer, nil

	default:
		return nil, apperr.BadInput("composer identification required")
	}
}

// ResolveWork locates or creates the work for the given input, attaching
// any newly created row to composerID.
func (r *Resolver) ResolveWork(ctx context.Context, tx *gormstore.Store, in WorkInput, composerID uint) (*model.Work, error) {
	switch {
	case in.ID != 0:
		work, err := tx.WorkByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if work == nil {
			return nil, apperr.NotFound("work")
		}
		return work, nil

	case strings.TrimSpace(in.OpenopusID) != "":
		openopusID := strings.TrimSpace(in.OpenopusID)
		work, err := tx.WorkByOpenopusID(ctx, openopusID)
		if err != nil {
			return nil, err
		}
		if work != nil {
			return work, nil
		}
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, apperr.BadInput("work title required for a new catalog work")
		}
		work = &model.Work{
			Title:      title,
			Nickname:   strings.TrimSpace(in.Nickname),
			OpenopusID: &openopusID,
			ComposerID: composerID,
			IsVerified: true,
		}
		if err := tx.CreateWork(ctx, work); err != nil {
			if gormstore.IsDuplicate(err) {
				return tx.WorkByOpenopusID(ctx, openopusID)
			}
			return nil, err
		}
		return work, nil

	case strings.TrimSpace(in.Title) != "":
		work := &model.Work{
			Title:      strings.TrimSpace(in.Title),
			Nickname:   strings.TrimSpace(in.Nickname),
			ComposerID: composerID,
			IsVerified: false,
		}
		if err := tx.CreateWork(ctx, work); err != nil {
			return nil, err
		}
		return work, nil

	default:
		return nil, apperr.BadInput("work identification required")
	}
}
