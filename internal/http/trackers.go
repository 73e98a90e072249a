package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focus-tracker/internal/api"
	"focus-tracker/internal/auth"
	"focus-tracker/internal/service"
)

func (h *Handler) listTrackers(c *gin.Context, caller auth.Identity) {
	trackers, err := h.svc.Trackers.List(c.Request.Context(), caller.Username)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Trackers retrieved successfully", api.FromTrackers(trackers))
}

func (h *Handler) getTracker(c *gin.Context, caller auth.Identity) {
	tracker, err := h.svc.Trackers.Get(c.Request.Context(), caller.Username, c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Tracker retrieved successfully", api.FromTracker(*tracker))
}

func (h *Handler) createTracker(c *gin.Context, caller auth.Identity) {
	var req api.TrackerRequest
	if !h.bind(c, &req) {
		return
	}

	fields := map[string]string{}
	in := service.CreateTrackerInput{}
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.Duration != nil {
		in.Duration = *req.Duration
	}
	if req.Date != nil {
		in.Date = h.parseDate(*req.Date, "date", h.loc, fields)
	}
	if req.TaskID.Valid {
		in.TaskID = &req.TaskID.Value
	}
	if len(fields) > 0 {
		fail(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	tracker, err := h.svc.Trackers.Create(c.Request.Context(), caller.Username, in)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Tracker created successfully", api.FromTracker(*tracker))
}

func (h *Handler) updateTracker(c *gin.Context, caller auth.Identity) {
	var req api.TrackerRequest
	if !h.bind(c, &req) {
		return
	}

	fields := map[string]string{}
	in := service.UpdateTrackerInput{
		Type:     req.Type,
		Duration: req.Duration,
	}
	if req.Date != nil {
		in.Date = h.parseDate(*req.Date, "date", h.loc, fields)
	}
	if req.TaskID.Set {
		// null unlinks, same as ""
		taskID := ""
		if req.TaskID.Valid {
			taskID = req.TaskID.Value
		}
		in.TaskID = &taskID
	}
	if len(fields) > 0 {
		fail(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	tracker, err := h.svc.Trackers.Update(c.Request.Context(), caller.Username, c.Param("id"), in)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Tracker updated successfully", api.FromTracker(*tracker))
}

func (h *Handler) deleteTracker(c *gin.Context, caller auth.Identity) {
	tracker, err := h.svc.Trackers.Delete(c.Request.Context(), caller.Username, c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Tracker deleted successfully", api.DeletedTracker{
		ID:   tracker.ID,
		Type: tracker.Type,
	})
}
