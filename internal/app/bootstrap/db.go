// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/studyhub/internal/app/directory"
	accountstore "github.com/dalemusser/studyhub/internal/app/store/accounts"
	eventstore "github.com/dalemusser/studyhub/internal/app/store/events"
	"github.com/dalemusser/studyhub/internal/app/store/memory"
	studystore "github.com/dalemusser/studyhub/internal/app/store/studies"
	tagstore "github.com/dalemusser/studyhub/internal/app/store/tags"
	zonestore "github.com/dalemusser/studyhub/internal/app/store/zones"
	"github.com/dalemusser/studyhub/internal/app/system/indexes"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/app/system/validators"
	"github.com/dalemusser/studyhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Background job queue sizing. Jobs are notification mail batches.
const (
	jobQueueSize    = 256
	jobWorkers      = 4
	jobTimeout      = 2 * time.Minute
	loginIPWindow   = time.Minute
	loginAcctWindow = 5 * time.Minute
)

// ConnectDB opens the configured store backend and builds the services
// that live for the whole process.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{
		Jobs:         workers.NewQueue(jobQueueSize, jobWorkers, jobTimeout, logger),
		LoginLimiter: ratelimit.NewLoginLimiterWithConfig(appCfg.LoginIPLimit, loginIPWindow, appCfg.LoginAccountLimit, loginAcctWindow),
	}

	if appCfg.StoreBackend == BackendMemory {
		deps.Memory = memory.New()
		deps.Directory = deps.Memory.Directory()
		logger.Info("in-memory store ready")
		return deps, nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(connCtx, opts)
	if err != nil {
		deps.LoginLimiter.Stop()
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, timeouts.Ping())
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		deps.LoginLimiter.Stop()
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	deps.MongoClient = client
	deps.MongoDatabase = db
	deps.Directory = directory.Directory{
		Studies:  studystore.New(db),
		Accounts: accountstore.New(db),
		Tags:     tagstore.New(db),
		Zones:    zonestore.New(db),
		Events:   eventstore.New(db),
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))
	return deps, nil
}

// EnsureSchema creates indexes and collection validators. Both are
// idempotent. The memory backend has no schema.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Batch(), logger, "ensure schema")
	defer cancel()

	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured")
	return nil
}
