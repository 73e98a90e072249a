package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"focus-tracker/internal/api"
	"focus-tracker/internal/auth"
	"focus-tracker/internal/service"
)

func (h *Handler) location(c *gin.Context) (*time.Location, bool) {
	loc, err := service.LoadLocation(c.Query("tz"), h.loc)
	if err != nil {
		h.failErr(c, err)
		return nil, false
	}
	return loc, true
}

func (h *Handler) summary(c *gin.Context, caller auth.Identity) {
	loc, ok := h.location(c)
	if !ok {
		return
	}

	summary, err := h.svc.Stats.Summary(c.Request.Context(), caller.Username, loc)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved successfully", summary)
}

func (h *Handler) heatmap(c *gin.Context, caller auth.Identity) {
	loc, ok := h.location(c)
	if !ok {
		return
	}

	fields := map[string]string{}
	var from, to time.Time
	if t := h.parseDate(c.Query("from"), "from", loc, fields); t != nil {
		from = *t
	}
	if t := h.parseDate(c.Query("to"), "to", loc, fields); t != nil {
		to = *t
	}
	if len(fields) > 0 {
		fail(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	cells, from, to, err := h.svc.Stats.Heatmap(c.Request.Context(), caller.Username, from, to, loc)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Heatmap retrieved successfully", api.HeatmapResponse{
		From:     from.In(loc).Format(time.DateOnly),
		To:       to.In(loc).Format(time.DateOnly),
		Timezone: loc.String(),
		Cells:    cells,
	})
}

func (h *Handler) exportSnapshot(c *gin.Context, caller auth.Identity) {
	snapshot, err := h.svc.Exports.Snapshot(c.Request.Context(), caller.Username)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Export generated successfully", snapshot)
}

func (h *Handler) exportArchive(c *gin.Context, caller auth.Identity) {
	archive, err := h.svc.Exports.Archive(c.Request.Context(), caller.Username)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Export archived successfully", archive)
}

func (h *Handler) listArchives(c *gin.Context, caller auth.Identity) {
	objects, err := h.svc.Exports.Archives(c.Request.Context(), caller.Username)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Archives retrieved successfully", objects)
}

func (h *Handler) health(c *gin.Context) {
	health := api.Health{Status: "ok", Database: "ok", Storage: "disabled"}
	if h.storage {
		health.Storage = "enabled"
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.log(c).WithError(err).Warn("database ping failed")
			fail(c, http.StatusServiceUnavailable, "Database unavailable", nil)
			return
		}
	}
	respond(c, http.StatusOK, "OK", health)
}
