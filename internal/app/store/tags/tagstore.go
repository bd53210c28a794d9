package tagstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ directory.Tags = (*Store)(nil)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tags")}
}

// FindOrCreate returns the tag with the given title, inserting it if needed.
// Concurrent callers racing on the same title all receive the same tag.
func (s *Store) FindOrCreate(ctx context.Context, title string) (models.Tag, error) {
	title = normalize.TagTitle(title)
	if title == "" {
		return models.Tag{}, domainerr.Invalidf("find or create tag", "tag title is empty")
	}

	filter := bson.M{"title": title}
	update := bson.M{"$setOnInsert": bson.M{"_id": primitive.NewObjectID()}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var t models.Tag
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if err == nil {
		return t, nil
	}
	if !wafflemongo.IsDup(err) {
		return models.Tag{}, fmt.Errorf("upsert tag: %w", err)
	}
	// Lost the insert race; the winner's document is there now.
	if err := s.c.FindOne(ctx, filter).Decode(&t); err != nil {
		return models.Tag{}, fmt.Errorf("find tag after race: %w", err)
	}
	return t, nil
}

func (s *Store) FindByTitle(ctx context.Context, title string) (*models.Tag, error) {
	var t models.Tag
	err := s.c.FindOne(ctx, bson.M{"title": normalize.TagTitle(title)}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainerr.NotFoundf("tag", title)
	}
	if err != nil {
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return &t, nil
}

// List returns every tag sorted by title. Used for the whitelist on
// tag settings screens.
func (s *Store) List(ctx context.Context) ([]models.Tag, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
}

// GetByIDs returns tags in the order of ids, skipping unknown ids.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Tag, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tag, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tags: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Tag, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return out, nil
}
