package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focus-tracker/internal/api"
	"focus-tracker/internal/auth"
	"focus-tracker/internal/service"
)

func (h *Handler) register(c *gin.Context) {
	var req api.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.svc.Auth.Register(c.Request.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.failErr(c, err)
		return
	}
	h.log(c).WithField("user", session.User.Username).Info("user registered")
	respond(c, http.StatusCreated, "User registered successfully", toSession(session))
}

func (h *Handler) login(c *gin.Context) {
	var req api.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.svc.Auth.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", toSession(session))
}

func (h *Handler) verify(c *gin.Context, caller auth.Identity) {
	user, err := h.svc.Users.Get(c.Request.Context(), caller.Username)
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Token is valid", api.Verification{
		Valid: true,
		User:  api.FromUser(*user),
	})
}

func (h *Handler) listUsers(c *gin.Context, _ auth.Identity) {
	users, err := h.svc.Users.List(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Users retrieved successfully", api.FromUsers(users))
}

func (h *Handler) createUser(c *gin.Context, _ auth.Identity) {
	var req api.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.svc.Users.Create(c.Request.Context(), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully", api.FromUser(*user))
}

func (h *Handler) getUser(c *gin.Context, _ auth.Identity) {
	user, err := h.svc.Users.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved successfully", api.FromUser(*user))
}

func (h *Handler) updateUser(c *gin.Context, caller auth.Identity) {
	var req api.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.svc.Users.Update(c.Request.Context(), caller.Username, c.Param("username"), service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated successfully", api.FromUser(*user))
}

func (h *Handler) deleteUser(c *gin.Context, caller auth.Identity) {
	user, err := h.svc.Users.Delete(c.Request.Context(), caller.Username, c.Param("username"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	h.log(c).WithField("user", user.Username).Info("user deleted")
	respond(c, http.StatusOK, "User deleted successfully", api.DeletedUser{
		Username: user.Username,
		Email:    user.Email,
	})
}

func toSession(s *service.Session) api.Session {
	return api.Session{
		User:  api.FromUser(*s.User),
		Token: s.Token,
	}
}
