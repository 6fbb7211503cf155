package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ruanout1/Projeto-Hive-sub004/internal/config"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/db"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/http/handlers"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/http/middleware"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/notify"
	"github.com/ruanout1/Projeto-Hive-sub004/internal/service"

	_ "github.com/ruanout1/Projeto-Hive-sub004/docs"
)

func Router(cfg config.Config, store *db.Store, notifier notify.Notifier, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor-Id", "X-Actor-Role", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	engine := &service.Engine{Store: store, Logger: logger}
	h := &handlers.Handler{
		Store:     store,
		Lifecycle: &service.Lifecycle{Store: store, Engine: engine, Notifier: notifier, Logger: logger},
		Engine:    engine,
		Photos:    &service.Photos{Store: store, Notifier: notifier, Logger: logger},
		Agenda:    &service.Agenda{Store: store},
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.Actor(cfg.AuthSecret))
	{
		api.POST("/requests", h.CreateRequest)
		api.GET("/requests", h.ListRequests)
		api.GET("/requests/:id", h.GetRequest)
		api.POST("/requests/:id/delegate", h.DelegateRequest)
		api.POST("/requests/:id/approve", h.ApproveRequest)
		api.POST("/requests/:id/refuse", h.RefuseRequest)
		api.POST("/requests/:id/escalate", h.EscalateRequest)
		api.POST("/requests/:id/confirm-date", h.ConfirmDate)
		api.POST("/requests/:id/decline-date", h.DeclineDate)
		api.POST("/requests/:id/reject", h.RejectRequest)

		api.POST("/allocations", h.CreateAllocation)
		api.GET("/allocations", h.ListAllocations)
		api.POST("/allocations/:id/release", h.ReleaseAllocation)

		api.GET("/services", h.ListServices)
		api.POST("/services/:id/start", h.StartService)
		api.POST("/services/:id/complete", h.CompleteService)
		api.POST("/services/:id/cancel", h.CancelService)
		api.POST("/services/:id/photos", h.SubmitPhotos)
		api.GET("/services/:id/photos", h.GetServicePhotos)
		api.PATCH("/photo-submissions/:id/notes", h.EditSubmissionNotes)
		api.DELETE("/photo-submissions/:id/photos/:ref", h.RemovePhoto)
		api.POST("/photo-submissions/:id/send", h.SendSubmission)

		api.GET("/agenda", h.GetAgenda)
		api.POST("/events", h.CreateEvent)

		api.POST("/catalog", h.CreateCatalogService)
		api.GET("/catalog", h.ListCatalog)
		api.POST("/clients", h.CreateClient)
		api.GET("/clients", h.ListClients)
		api.POST("/collaborators", h.CreateCollaborator)
		api.GET("/collaborators", h.ListCollaborators)
		api.POST("/teams", h.CreateTeam)
		api.GET("/teams", h.ListTeams)
		api.POST("/teams/:id/members", h.SetTeamMembers)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
