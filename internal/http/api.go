package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"focus-tracker/internal/service"
)

// Services groups everything the handlers call into.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Tasks    service.TaskService
	Trackers service.TrackerService
	Stats    service.StatsService
	Exports  service.ExportService
}

// Options tunes the HTTP layer. Zero values fall back to sensible defaults.
type Options struct {
	Logger *logrus.Logger
	// Location buckets stats by day when the request names no tz.
	Location *time.Location
	// AuthPerMinute and AuthBurst limit register/login attempts per client IP.
	AuthPerMinute int
	AuthBurst     int
	// Ping reports database health.
	Ping           func(ctx context.Context) error
	StorageEnabled bool
	Now            func() time.Time
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	svc     Services
	logger  *logrus.Logger
	loc     *time.Location
	limiter *ipLimiter
	ping    func(ctx context.Context) error
	storage bool
	now     func() time.Time
}

func NewHandler(svc Services, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AuthPerMinute <= 0 {
		opts.AuthPerMinute = 10
	}
	if opts.AuthBurst <= 0 {
		opts.AuthBurst = 5
	}

	return &Handler{
		svc:     svc,
		logger:  opts.Logger,
		loc:     opts.Location,
		limiter: newIPLimiter(rate.Every(time.Minute/time.Duration(opts.AuthPerMinute)), opts.AuthBurst),
		ping:    opts.Ping,
		storage: opts.StorageEnabled,
		now:     opts.Now,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), h.recovery(), corsMiddleware())
	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route not found", nil)
	})

	api := router.Group("/api")
	{
		api.GET("/health", h.health)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.rateLimit(), h.register)
		authGroup.POST("/login", h.rateLimit(), h.login)
		authGroup.GET("/verify", h.authed(h.verify))

		api.GET("/users", h.authed(h.listUsers))
		api.POST("/users", h.authed(h.createUser))
		api.GET("/users/:username", h.authed(h.getUser))
		api.PUT("/users/:username", h.authed(h.updateUser))
		api.DELETE("/users/:username", h.authed(h.deleteUser))

		api.GET("/tasks", h.authed(h.listTasks))
		api.POST("/tasks", h.authed(h.createTask))
		api.GET("/tasks/:id", h.authed(h.getTask))
		api.PUT("/tasks/:id", h.authed(h.updateTask))
		api.DELETE("/tasks/:id", h.authed(h.deleteTask))

		api.GET("/trackers", h.authed(h.listTrackers))
		api.POST("/trackers", h.authed(h.createTracker))
		api.GET("/trackers/:id", h.authed(h.getTracker))
		api.PUT("/trackers/:id", h.authed(h.updateTracker))
		api.DELETE("/trackers/:id", h.authed(h.deleteTracker))

		api.GET("/stats", h.authed(h.summary))
		api.GET("/stats/heatmap", h.authed(h.heatmap))

		api.GET("/export", h.authed(h.exportSnapshot))
		api.POST("/export", h.authed(h.exportArchive))
		api.GET("/export/archives", h.authed(h.listArchives))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
