// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/store/memory"
	"github.com/dalemusser/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/studyhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Exactly one backend is populated: MongoClient/MongoDatabase for
// store_backend=mongo, Memory for store_backend=memory. Directory is set in
// both cases and is what handlers use.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Memory        *memory.Store

	Directory directory.Directory

	// Long-lived services that need an explicit stop at shutdown.
	Jobs         *workers.Queue
	LoginLimiter *ratelimit.LoginLimiter
}
