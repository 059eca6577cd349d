package watchdog

import (
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rikonaka/watchdog/internal/pkg/report"
	"github.com/rikonaka/watchdog/internal/pkg/response"
	"github.com/rikonaka/watchdog/internal/pkg/snapshot"
)

// HandlerHello greets a caller.
// @Summary Greet a caller.
// @Tags misc
// @Produce plain
// @Param name path string true "caller name"
// @Success 200 {string} string
// @Router /hello/{name} [get]
func (rt *Router) HandlerHello(c *gin.Context) {
	c.String(http.StatusOK, "Hello %s", html.EscapeString(c.Param("name")))
}

// HandlerPing answers an agent liveness probe with num+1.
// @Summary Liveness probe.
// @Tags misc
// @Produce plain
// @Param num path int true "probe number"
// @Success 200 {string} string
// @Router /ping/{num} [get]
func (rt *Router) HandlerPing(c *gin.Context) {
	num, err := strconv.Atoi(c.Param("num"))
	if err != nil {
		c.JSON(http.StatusOK, response.Failure())
		return
	}
	c.String(http.StatusOK, strconv.Itoa(num+1))
}

// HandlerUpdate ingests one status snapshot: normalize, write through to the
// cache with the configured TTL, append to history. The two tiers are
// independent: either write may fail while the other sticks, so a storage
// failure is logged and the update still acknowledged.
// @Summary Ingest a host status snapshot.
// @Tags watchdog
// @Accept json
// @Produce json
// @Param data body snapshot.UpdateRequest true "status payload"
// @Success 200 {object} response.Status
// @Router /update [post]
func (rt *Router) HandlerUpdate(c *gin.Context) {
	// Exact header match: media-type parameters like "; charset=utf-8" are
	// not accepted either.
	if c.GetHeader("Content-Type") != "application/json" {
		c.String(http.StatusOK, "Content-Type not supported!")
		return
	}
	var req snapshot.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, response.Failure())
		return
	}

	now := rt.now()
	s, err := snapshot.Normalize(req, rt.secret, now)
	if err != nil {
		// Auth failure and malformed payload answer identically on purpose.
		rt.logger.Warn("rejected update", "hostname", req.Hostname, "err", err)
		c.JSON(http.StatusOK, response.Failure())
		return
	}

	ctx := c.Request.Context()
	if err := rt.cache.Put(ctx, s.Hostname, s); err != nil {
		rt.logger.Error("cache write failed", "hostname", s.Hostname, "err", err)
	}
	if err := rt.history.AppendSnapshot(ctx, s, now); err != nil {
		rt.logger.Error("history write failed", "hostname", s.Hostname, "err", err)
	}
	if recs := snapshot.Slots(s.Hostname, s.GPU, now); len(recs) > 0 {
		if err := rt.history.AppendSlots(ctx, recs); err != nil {
			rt.logger.Error("slot history write failed", "hostname", s.Hostname, "err", err)
		}
	}
	c.JSON(http.StatusOK, response.Success("UPDATED"))
}

// HandlerInfo renders the aligned status table over every live snapshot.
// @Summary Render the fleet status table.
// @Tags watchdog
// @Produce plain
// @Success 200 {string} string
// @Router /info [get]
func (rt *Router) HandlerInfo(c *gin.Context) {
	all, err := rt.cache.GetAll(c.Request.Context())
	if err != nil {
		rt.logger.Error("cache read failed", "err", err)
		all = map[string]*snapshot.Snapshot{}
	}
	c.String(http.StatusOK, report.Render(all, rt.now()))
}

// HandlerInfoRaw dumps the volatile store as hostname to snapshot.
// @Summary Dump all live snapshots.
// @Tags watchdog
// @Produce json
// @Success 200 {object} map[string]snapshot.Snapshot
// @Router /info2 [get]
func (rt *Router) HandlerInfoRaw(c *gin.Context) {
	all, err := rt.cache.GetAll(c.Request.Context())
	if err != nil {
		rt.logger.Error("cache read failed", "err", err)
		all = map[string]*snapshot.Snapshot{}
	}
	c.JSON(http.StatusOK, all)
}

// HandlerSearchPID answers which path a pid occupies on a host from slot
// history. A miss is the "null" status, never a failure; the endpoint always
// answers 200.
// @Summary Look up the recorded path for a host/pid pair.
// @Tags watchdog
// @Produce json
// @Param hostname path string true "hostname"
// @Param pid path string true "process id"
// @Success 200 {object} response.Status
// @Router /searchpid/{hostname}/{pid} [get]
func (rt *Router) HandlerSearchPID(c *gin.Context) {
	hostname := c.Param("hostname")
	pid := c.Param("pid")
	paths, err := rt.history.FindPath(c.Request.Context(), hostname, pid)
	if err != nil {
		rt.logger.Error("slot lookup failed", "hostname", hostname, "pid", pid, "err", err)
	}
	if len(paths) == 0 {
		c.JSON(http.StatusOK, response.Success(snapshot.NullSlot))
		return
	}
	c.JSON(http.StatusOK, response.Success(strings.Join(paths, "\n")))
}
