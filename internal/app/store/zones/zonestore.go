package zonestore

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

//go:embed zones_kr.csv
var seedCSV []byte

var _ directory.Zones = (*Store)(nil)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("zones")}
}

// Seed returns the built-in zone catalog (city,local name,province).
func Seed() ([]models.Zone, error) {
	return ParseCSV(bytes.NewReader(seedCSV))
}

// ParseCSV reads city,localNameOfCity,province rows.
func ParseCSV(r io.Reader) ([]models.Zone, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []models.Zone
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse zones: %w", err)
		}
		out = append(out, models.Zone{
			City:            strings.TrimSpace(rec[0]),
			LocalNameOfCity: strings.TrimSpace(rec[1]),
			Province:        strings.TrimSpace(rec[2]),
		})
	}
	return out, nil
}

// SeedIfEmpty loads the built-in catalog when the collection has no zones.
// It returns the number of zones inserted.
func (s *Store) SeedIfEmpty(ctx context.Context, logger *zap.Logger) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{}, options.Count().SetLimit(1))
	if err != nil {
		return 0, fmt.Errorf("count zones: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	zones, err := Seed()
	if err != nil {
		return 0, err
	}
	docs := make([]interface{}, 0, len(zones))
	for _, z := range zones {
		z.ID = primitive.NewObjectID()
		docs = append(docs, z)
	}
	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("seed zones: %w", err)
	}
	logger.Info("zones seeded", zap.Int("count", len(docs)))
	return len(docs), nil
}

func (s *Store) FindByCityAndProvince(ctx context.Context, city, province string) (*models.Zone, error) {
	var z models.Zone
	err := s.c.FindOne(ctx, bson.M{"city": city, "province": province}).Decode(&z)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainerr.NotFoundf("zone", city+"/"+province)
	}
	if err != nil {
		return nil, fmt.Errorf("find zone: %w", err)
	}
	return &z, nil
}

// List returns the whole catalog sorted by city, then province.
func (s *Store) List(ctx context.Context) ([]models.Zone, error) {
	sort := bson.D{{Key: "city", Value: 1}, {Key: "province", Value: 1}}
	return s.find(ctx, bson.M{}, options.Find().SetSort(sort))
}

// GetByIDs returns zones in the order of ids, skipping unknown ids.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Zone, error) {
	out := make([]models.Zone, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Zone, len(found))
	for _, z := range found {
		byID[z.ID] = z
	}
	for _, id := range ids {
		if z, ok := byID[id]; ok {
			out = append(out, z)
		}
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Zone, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find zones: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Zone, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}
	return out, nil
}
