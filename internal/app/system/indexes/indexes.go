// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, c := range []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"studies", ensureStudies},
		{"accounts", ensureAccounts},
		{"tags", ensureTags},
		{"zones", ensureZones},
		{"events", ensureEvents},
	} {
		if err := c.ensure(ctx, db); err != nil {
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isTrue(b *bool) bool { return b != nil && *b }

// isDuplicateKeyErr is a best-effort duplicate detector that works across
// Mongo-compatible vendors.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

// duplicateFinder returns an aggregation users can paste into the shell to
// find the documents blocking a unique index.
func duplicateFinder(coll string, keys bson.D) string {
	group := make([]string, 0, len(keys))
	for _, kv := range keys {
		group = append(group, fmt.Sprintf("%s: \"$%s\"", kv.Key, kv.Key))
	}
	return fmt.Sprintf(`db.%s.aggregate([{ $group: { _id: { %s }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
		coll, strings.Join(group, ", "))
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// create builds m and turns a duplicate-key failure on a unique index into
// an actionable message.
func create(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, name string, unique bool) error {
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if unique && isDuplicateKeyErr(err) {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present), find them with:\n%s",
				coll.Name(), name, duplicateFinder(coll.Name(), m.Keys.(bson.D)))
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}
	return nil
}

func replace(ctx context.Context, coll *mongo.Collection, old string, m mongo.IndexModel, name string, unique bool) error {
	if _, err := coll.Indexes().DropOne(ctx, old); err != nil {
		zap.L().Warn("drop existing index failed",
			zap.String("collection", coll.Name()),
			zap.String("name", old),
			zap.Error(err))
		return fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), name, err)
	}
	return create(ctx, coll, m, name, unique)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var name string
		var uniquePtr *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			uniquePtr = m.Options.Unique
		}
		unique := isTrue(uniquePtr)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))
		log.Info("ensuring index")

		ex, found := listIndexes(ctx, coll)[sig]
		var err error
		var action string
		switch {
		case found && isTrue(ex.Unique) == unique && (name == "" || ex.Name == name):
			action = "reused"
		case found && isTrue(ex.Unique) == unique:
			action = "renamed"
			err = replace(ctx, coll, ex.Name, m, name, unique)
		case found:
			// options differ, e.g. upgrading to unique
			action = "recreated"
			err = replace(ctx, coll, ex.Name, m, name, unique)
		default:
			action = "created"
			err = create(ctx, coll, m, name, unique)
			if isOptionsConflictErr(err) {
				// Created concurrently or under another name; reconcile once more.
				if again, ok := listIndexes(ctx, coll)[sig]; ok {
					if isTrue(again.Unique) == unique {
						action, err = "reused", nil
					} else {
						action = "recreated"
						err = replace(ctx, coll, again.Name, m, name, unique)
					}
				}
			}
		}

		if err != nil {
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			errs = append(errs, err.Error())
			continue
		}
		log.Info("index "+action, zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureStudies(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("studies"), []mongo.IndexModel{
		// Path is the public identifier of a study
		{
			Keys:    bson.D{{Key: "path", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_studies_path"),
		},
		// Recommendation queries match on interests (multikey)
		{
			Keys:    bson.D{{Key: "tag_ids", Value: 1}},
			Options: options.Index().SetName("idx_studies_tags"),
		},
		{
			Keys:    bson.D{{Key: "zone_ids", Value: 1}},
			Options: options.Index().SetName("idx_studies_zones"),
		},
		// Home listing: newest published first
		{
			Keys: bson.D{
				{Key: "published", Value: 1},
				{Key: "closed", Value: 1},
				{Key: "published_at", Value: -1},
			},
			Options: options.Index().SetName("idx_studies_published_closed_publishedat"),
		},
		// "My studies" lookups
		{
			Keys:    bson.D{{Key: "manager_ids", Value: 1}},
			Options: options.Index().SetName("idx_studies_managers"),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_studies_members"),
		},
	})
}

func ensureAccounts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("accounts"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_email"),
		},
		{
			Keys:    bson.D{{Key: "nickname_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_nicknameci"),
		},
		// Notification fan-out on publish
		{
			Keys:    bson.D{{Key: "tag_ids", Value: 1}},
			Options: options.Index().SetName("idx_accounts_tags"),
		},
		{
			Keys:    bson.D{{Key: "zone_ids", Value: 1}},
			Options: options.Index().SetName("idx_accounts_zones"),
		},
	})
}

func ensureTags(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("tags"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tags_title"),
		},
	})
}

func ensureZones(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("zones"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "city", Value: 1},
				{Key: "province", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_zones_city_province"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("events"), []mongo.IndexModel{
		// Study event list, earliest first
		{
			Keys: bson.D{
				{Key: "study_id", Value: 1},
				{Key: "start_at", Value: 1},
			},
			Options: options.Index().SetName("idx_events_study_start"),
		},
	})
}
