package studystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ directory.Studies = (*Store)(nil)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("studies")}
}

func pathTaken(op, path string) error {
	return domainerr.Conflictf(op, "path %q is taken", path)
}

// fillSets replaces nil sets with empty ones so documents always carry
// arrays (the collection validator requires them).
func fillSets(s *models.Study) {
	for _, set := range []*models.IDSet{&s.ManagerIDs, &s.MemberIDs, &s.TagIDs, &s.ZoneIDs} {
		if *set == nil {
			*set = models.IDSet{}
		}
	}
}

// Create inserts a new study at version 0.
func (s *Store) Create(ctx context.Context, st models.Study) (models.Study, error) {
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	fillSets(&st)
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now
	st.Version = 0
	st.MemberCount = st.MemberIDs.Len()

	if _, err := s.c.InsertOne(ctx, st); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Study{}, pathTaken("create study", st.Path)
		}
		return models.Study{}, fmt.Errorf("insert study: %w", err)
	}
	return st, nil
}

// ExistsByPath reports whether a study already uses path.
func (s *Store) ExistsByPath(ctx context.Context, path string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"path": path}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count studies: %w", err)
	}
	return n > 0, nil
}

// GetByPath loads a study by its public path.
func (s *Store) GetByPath(ctx context.Context, path string) (*models.Study, error) {
	var st models.Study
	if err := s.c.FindOne(ctx, bson.M{"path": path}).Decode(&st); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainerr.NotFoundf("study", path)
		}
		return nil, fmt.Errorf("find study: %w", err)
	}
	return &st, nil
}

// Save replaces the stored study if its version still equals st.Version and
// bumps the version on success. Otherwise it reports NotFound when the study
// is gone or Conflict when another writer got there first.
func (s *Store) Save(ctx context.Context, st *models.Study) error {
	next := *st
	fillSets(&next)
	next.Version = st.Version + 1
	next.UpdatedAt = time.Now().UTC()
	next.MemberCount = next.MemberIDs.Len()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": st.ID, "version": st.Version}, next)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return pathTaken("save study", st.Path)
		}
		return fmt.Errorf("replace study: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": st.ID})
		if err != nil {
			return fmt.Errorf("count study: %w", err)
		}
		if n == 0 {
			return domainerr.NotFoundf("study", st.Path)
		}
		return domainerr.Conflictf("save study", "study %q was modified concurrently", st.Path)
	}

	*st = next
	return nil
}

// Delete removes a study by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete study: %w", err)
	}
	if res.DeletedCount == 0 {
		return domainerr.NotFoundf("study", id.Hex())
	}
	return nil
}

// ListPublished returns open published studies, newest first.
func (s *Store) ListPublished(ctx context.Context, limit int) ([]models.Study, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.c.Find(ctx, bson.M{"published": true, "closed": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("find published studies: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Study, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode studies: %w", err)
	}
	return out, nil
}
