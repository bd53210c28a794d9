// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("studies", studiesSchema())
	ensure("accounts", accountsSchema())
	ensure("tags", tagsSchema())
	ensure("zones", zonesSchema())
	ensure("events", eventsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		zap.L().Info("collection exists", zap.String("collection", name))
		return nil
	}
	// Listing failed or the collection is missing: create and tolerate a race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if hasCode(err, 48) || containsAny(err, "already exists", "namespace exists") {
			zap.L().Info("collection exists", zap.String("collection", name))
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func hasCode(err error, codes ...int32) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

func containsAny(err error, needles ...string) bool {
	s := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// isUnsupported matches "no such command" (59) and "not implemented" (115).
func isUnsupported(err error) bool {
	return hasCode(err, 59, 115) || containsAny(err, "no such command", "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	idArray  = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}}
	optDate  = bson.M{"bsonType": bson.A{"date", "null"}}
)

func studiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"path", "title", "manager_ids", "member_ids", "published", "closed", "recruiting", "version"},
			"properties": bson.M{
				"path":                  bson.M{"bsonType": "string", "pattern": models.StudyPathPattern},
				"title":                 bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.StudyTitleMax},
				"short_description":     bson.M{"bsonType": "string", "maxLength": models.StudyShortDescriptionMax},
				"full_description":      bson.M{"bsonType": "string"},
				"manager_ids":           idArray,
				"member_ids":            idArray,
				"tag_ids":               idArray,
				"zone_ids":              idArray,
				"published":             bson.M{"bsonType": "bool"},
				"closed":                bson.M{"bsonType": "bool"},
				"recruiting":            bson.M{"bsonType": "bool"},
				"published_at":          optDate,
				"closed_at":             optDate,
				"recruiting_updated_at": optDate,
				"member_count":          bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"version":               bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func accountsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"nickname", "nickname_ci", "email", "password_hash"},
			"properties": bson.M{
				"nickname":       nonBlank,
				"nickname_ci":    nonBlank,
				"email":          bson.M{"bsonType": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
				"password_hash":  nonBlank,
				"email_verified": bson.M{"bsonType": "bool"},
				"tag_ids":        idArray,
				"zone_ids":       idArray,
			},
		},
	}
}

func tagsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   bson.A{"title"},
			"properties": bson.M{"title": nonBlank},
		},
	}
}

func zonesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"city", "local_name_of_city", "province"},
			"properties": bson.M{
				"city":               nonBlank,
				"local_name_of_city": nonBlank,
				"province":           bson.M{"bsonType": "string"},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"study_id", "created_by", "title", "type", "limit", "end_enrollment_at", "start_at", "end_at"},
			"properties": bson.M{
				"study_id":          bson.M{"bsonType": "objectId"},
				"created_by":        bson.M{"bsonType": "objectId"},
				"title":             bson.M{"bsonType": "string", "minLength": 1, "maxLength": models.EventTitleMax},
				"description":       bson.M{"bsonType": "string"},
				"type":              bson.M{"enum": bson.A{string(models.EventFCFS), string(models.EventConfirmative)}},
				"limit":             bson.M{"bsonType": bson.A{"int", "long"}, "minimum": models.EventMinLimit},
				"end_enrollment_at": bson.M{"bsonType": "date"},
				"start_at":          bson.M{"bsonType": "date"},
				"end_at":            bson.M{"bsonType": "date"},
			},
		},
	}
}
