package taxonomy

import (
	"context"
)

// Entity is a tag or a category: a name shared across posts, owned by no
// single post. Entities appear lazily on first use and disappear only via
// Sweep, never through a direct user action.
type Entity struct {
	ID   interface{} `bson:"_id,omitempty"`
	Name string      `bson:"name"`
}

type Repo interface {
	GetOrCreate(ctx context.Context, name string) (*Entity, error)
	GetAll(ctx context.Context) ([]*Entity, error)
	GetByIDs(ctx context.Context, ids []interface{}) ([]*Entity, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
}

// RefCounter reports how many posts reference a taxonomy entity through
// the given post field ("tags" or "categories"). The posts repo
// implements it.
type RefCounter interface {
	CountByTaxonomy(ctx context.Context, field string, id interface{}) (int64, error)
}

// Service resolves names to entity ids and collects orphans for one
// taxonomy kind. One Service instance serves tags, another categories.
type Service struct {
	repo  Repo
	refs  RefCounter
	field string
}

func NewService(repo Repo, refs RefCounter, field string) *Service {
	return &Service{repo: repo, refs: refs, field: field}
}

// Resolve maps names to entity ids, creating missing entities. The result
// preserves input order, one id per name; duplicate names collapse to the
// same id. Resolving is idempotent and never deletes.
func (s *Service) Resolve(ctx context.Context, names []string) ([]interface{}, error) {
	ids := make([]interface{}, 0, len(names))
	seen := make(map[string]interface{}, len(names))

	for _, name := range names {
		if id, ok := seen[name]; ok {
			ids = append(ids, id)
			continue
		}

		entity, err := s.repo.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}

		seen[name] = entity.ID
		ids = append(ids, entity.ID)
	}

	return ids, nil
}

// Sweep deletes every entity of this kind that no post references. It is
// idempotent and safe to re-run; a failure mid-sweep leaves some orphans
// behind for the next run and must not undo the deletion that triggered
// it.
func (s *Service) Sweep(ctx context.Context) error {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, entity := range all {
		refs, err := s.refs.CountByTaxonomy(ctx, s.field, entity.ID)
		if err != nil {
			return err
		}

		if refs > 0 {
			continue
		}

		if _, err := s.repo.Delete(ctx, entity.ID); err != nil {
			return err
		}
	}

	return nil
}

// GetByIDs loads entities for response shaping (resolving reference ids
// back to names).
func (s *Service) GetByIDs(ctx context.Context, ids []interface{}) ([]*Entity, error) {
	return s.repo.GetByIDs(ctx, ids)
}
