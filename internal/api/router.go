package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/persondir/internal/api/handlers"
	"github.com/your-org/persondir/internal/api/ws"
	"github.com/your-org/persondir/internal/auth"
	"github.com/your-org/persondir/internal/friends"
	"github.com/your-org/persondir/internal/listing"
	"github.com/your-org/persondir/internal/persons"
)

type RouterConfig struct {
	APIKey      string
	CORSOrigins []string
	Repository  *persons.Repository
	Graph       *friends.Manager
	Engine      *listing.Engine
	Presenter   *persons.Presenter
	// Hub is optional; /api/ws is only mounted when set.
	Hub    *ws.Hub
	Checks []handlers.Check
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.Checks...)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(auth.APIKeyMiddleware(cfg.APIKey))

	if cfg.Hub != nil {
		api.GET("/ws", cfg.Hub.HandleWS)
	}

	// Persons
	personH := handlers.NewPersonHandler(cfg.Repository, cfg.Engine, cfg.Presenter)
	api.GET("/person", personH.List)
	api.GET("/person/:id", personH.Get)
	api.POST("/person", personH.Create)
	api.PUT("/person/:id", personH.Update)
	api.DELETE("/person/:id", personH.Delete)

	// Friends
	friendH := handlers.NewFriendHandler(cfg.Graph, cfg.Presenter)
	api.POST("/friend/:id/add/:friendId", friendH.Add)
	api.DELETE("/friend/:id/remove/:friendId", friendH.Remove)
	api.POST("/friend/repair", friendH.Repair)

	// Greetings
	greetH := handlers.NewGreetingsHandler()
	api.GET("/greetings", greetH.Index)
	api.GET("/greetings/:name", greetH.Greet)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-API-Key"},
		ExposeHeaders: []string{"Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
