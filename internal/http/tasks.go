package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focus-tracker/internal/api"
	"focus-tracker/internal/auth"
	"focus-tracker/internal/service"
)

func (h *Handler) listTasks(c *gin.Context, caller auth.Identity) {
	tasks, err := h.svc.Tasks.List(c.Request.Context(), caller.Username)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Tasks retrieved successfully", api.FromTasks(tasks))
}

func (h *Handler) getTask(c *gin.Context, caller auth.Identity) {
	task, err := h.svc.Tasks.Get(c.Request.Context(), caller.Username, c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Task retrieved successfully", api.FromTask(*task))
}

func (h *Handler) createTask(c *gin.Context, caller auth.Identity) {
	var req api.TaskRequest
	if !h.bind(c, &req) {
		return
	}

	fields := map[string]string{}
	in := service.CreateTaskInput{
		Status:    req.Status,
		Completed: req.Completed,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.DueDate.Valid {
		in.DueDate = h.parseDate(req.DueDate.Value, "due_date", h.loc, fields)
	}
	if len(fields) > 0 {
		fail(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	task, err := h.svc.Tasks.Create(c.Request.Context(), caller.Username, in)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Task created successfully", api.FromTask(*task))
}

func (h *Handler) updateTask(c *gin.Context, caller auth.Identity) {
	var req api.TaskRequest
	if !h.bind(c, &req) {
		return
	}

	fields := map[string]string{}
	in := service.UpdateTaskInput{
		Name:      req.Name,
		Status:    req.Status,
		Completed: req.Completed,
	}
	if req.DueDate.Set {
		if req.DueDate.Valid {
			in.DueDate = h.parseDate(req.DueDate.Value, "due_date", h.loc, fields)
		}
		// null or "" removes the due date
		in.ClearDueDate = in.DueDate == nil
	}
	if len(fields) > 0 {
		fail(c, http.StatusBadRequest, "Validation failed", fields)
		return
	}

	task, err := h.svc.Tasks.Update(c.Request.Context(), caller.Username, c.Param("id"), in)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Task updated successfully", api.FromTask(*task))
}

func (h *Handler) deleteTask(c *gin.Context, caller auth.Identity) {
	task, err := h.svc.Tasks.Delete(c.Request.Context(), caller.Username, c.Param("id"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Task deleted successfully", api.DeletedTask{
		ID:   task.ID,
		Name: task.Name,
	})
}
