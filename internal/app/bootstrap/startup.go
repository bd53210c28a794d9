// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	zonestore "github.com/dalemusser/studyhub/internal/app/store/zones"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It seeds
// the zone catalog and starts the background job workers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SeedZones {
		if err := seedZones(ctx, deps, logger); err != nil {
			logger.Error("zone seeding failed", zap.Error(err))
			return err
		}
	}

	deps.Jobs.Start()
	return nil
}

// seedZones loads the bundled zone catalog into whichever backend is active.
func seedZones(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	if deps.Memory != nil {
		zones, err := zonestore.Seed()
		if err != nil {
			return err
		}
		for _, z := range zones {
			deps.Memory.PutZone(z)
		}
		logger.Info("zones seeded", zap.Int("count", len(zones)))
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "seed zones")
	defer cancel()
	_, err := zonestore.New(deps.MongoDatabase).SeedIfEmpty(ctx, logger)
	return err
}
