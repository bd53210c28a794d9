package accountstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

var _ directory.Accounts = (*Store)(nil)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("accounts")}
}

// ErrDuplicateAccount is returned when the email or nickname is taken.
var ErrDuplicateAccount = domainerr.Conflictf("save account", "email or nickname is already in use")

func prepare(a *models.Account) {
	a.Nickname = normalize.Name(a.Nickname)
	a.NicknameCI = normalize.NicknameCI(a.Nickname)
	a.Email = normalize.Email(a.Email)
	if a.TagIDs == nil {
		a.TagIDs = models.IDSet{}
	}
	if a.ZoneIDs == nil {
		a.ZoneIDs = models.IDSet{}
	}
}

// Create inserts a new account after normalizing the lookup fields.
func (s *Store) Create(ctx context.Context, a models.Account) (models.Account, error) {
	a.ID = primitive.NewObjectID()
	prepare(&a)
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, ErrDuplicateAccount
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M, key string) (*models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainerr.NotFoundf("account", key)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &a, nil
}

// GetByID loads an account by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

// GetByNickname looks up an account by case-insensitive nickname.
func (s *Store) GetByNickname(ctx context.Context, nickname string) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"nickname_ci": normalize.NicknameCI(nickname)}, nickname)
}

// GetByEmail looks up an account by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)}, email)
}

// GetByLogin treats anything containing "@" as an email, else a nickname.
func (s *Store) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	if strings.Contains(login, "@") {
		return s.GetByEmail(ctx, login)
	}
	return s.GetByNickname(ctx, login)
}

// Save replaces the stored account.
func (s *Store) Save(ctx context.Context, a *models.Account) error {
	prepare(a)
	a.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("replace account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domainerr.NotFoundf("account", a.ID.Hex())
	}
	return nil
}

// GetByIDs loads accounts in the order of ids. Unknown ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Account, error) {
	out := make([]models.Account, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Account, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// FindInterested returns accounts whose interests overlap tagIDs AND zoneIDs.
func (s *Store) FindInterested(ctx context.Context, tagIDs, zoneIDs []primitive.ObjectID) ([]models.Account, error) {
	if len(tagIDs) == 0 || len(zoneIDs) == 0 {
		return []models.Account{}, nil
	}
	filter := bson.M{
		"tag_ids":  bson.M{"$in": tagIDs},
		"zone_ids": bson.M{"$in": zoneIDs},
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "nickname_ci", Value: 1}}))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Account, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Account, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return out, nil
}
