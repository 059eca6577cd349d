package watchdog

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rikonaka/watchdog/internal/pkg/snapshot"
)

// Cache is the volatile latest-state tier the handlers read and write.
// Entries carry a TTL owned by the store; only live entries come back.
type Cache interface {
	Put(ctx context.Context, hostname string, s *snapshot.Snapshot) error
	Get(ctx context.Context, hostname string) (*snapshot.Snapshot, bool, error)
	GetAll(ctx context.Context) (map[string]*snapshot.Snapshot, error)
}

// History is the durable append-only tier. Absence is a nil result, not an
// error.
type History interface {
	AppendSnapshot(ctx context.Context, s *snapshot.Snapshot, now time.Time) error
	AppendSlots(ctx context.Context, recs []snapshot.SlotRecord) error
	FindPath(ctx context.Context, hostname, pid string) ([]string, error)
}

// Router carries the watchdog endpoints and their storage tiers.
type Router struct {
	cache   Cache
	history History
	secret  string
	logger  *slog.Logger
	now     func() time.Time
}

// NewRouter wires the watchdog endpoints to their storage tiers. secret is
// the shared agent password checked on every update.
func NewRouter(cache Cache, history History, secret string, logger *slog.Logger) *Router {
	return &Router{
		cache:   cache,
		history: history,
		secret:  secret,
		logger:  logger,
		now:     time.Now,
	}
}

// Register mounts the endpoints. Paths are part of the agent protocol and
// must not move.
func (rt *Router) Register(r *gin.Engine) {
	r.GET("/hello/:name", rt.HandlerHello)
	r.GET("/ping/:num", rt.HandlerPing)
	r.POST("/update", rt.HandlerUpdate)
	r.GET("/info", rt.HandlerInfo)
	r.GET("/info2", rt.HandlerInfoRaw)
	r.GET("/searchpid/:hostname/:pid", rt.HandlerSearchPID)
}
