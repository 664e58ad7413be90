package api

import (
	"github.com/gin-gonic/gin"

	"github.com/codearena/arena/internal/config"
	"github.com/codearena/arena/internal/contest"
)

// Handler holds the dependencies for the API handlers.
type Handler struct {
	cfg *config.Config
	svc *contest.Service
}

func NewHandler(cfg *config.Config, svc *contest.Service) *Handler {
	return &Handler{cfg: cfg, svc: svc}
}

// NewRouter creates and configures the Gin engine. The API layer is thin
// glue: every route delegates to the contest service.
func NewRouter(cfg *config.Config, svc *contest.Service) *gin.Engine {
	r := gin.Default()

	r.Use(CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, svc)

	v1 := r.Group("/api/v1")
	{
		// Publicly accessible info
		v1.GET("/contests", h.searchContests)
		v1.GET("/contests/:id", h.getContest)
		v1.GET("/contests/:id/leaderboard", h.getLeaderboard)

		// Authenticated routes
		authed := v1.Group("/")
		authed.Use(AuthMiddleware(cfg.Auth.JWT.Secret))
		{
			authed.POST("/contests", h.createContest)
			authed.PATCH("/contests/:id", h.updateContest)
			authed.DELETE("/contests/:id", h.deleteContest)
			authed.POST("/contests/:id/publish", h.publishContest)
			authed.POST("/contests/:id/cancel", h.cancelContest)

			authed.POST("/contests/:id/register", h.registerForContest)
			authed.POST("/contests/:id/submissions", h.submitSolution)
			authed.GET("/submissions/:id", h.getSubmission)
		}
	}

	return r
}
