package server

import (
	"context"
	"net/http"
	"time"

	"github.com/agencyhq/opscore/internal/alert"
	alertdomain "github.com/agencyhq/opscore/internal/alert/domain"
	"github.com/agencyhq/opscore/internal/budget"
	budgetdomain "github.com/agencyhq/opscore/internal/budget/domain"
	"github.com/agencyhq/opscore/internal/client"
	clientdomain "github.com/agencyhq/opscore/internal/client/domain"
	"github.com/agencyhq/opscore/internal/config"
	"github.com/agencyhq/opscore/internal/dispatch"
	dispatchdomain "github.com/agencyhq/opscore/internal/dispatch/domain"
	"github.com/agencyhq/opscore/internal/evaluator"
	"github.com/agencyhq/opscore/internal/notification"
	notificationdomain "github.com/agencyhq/opscore/internal/notification/domain"
	"github.com/agencyhq/opscore/internal/offering"
	offeringdomain "github.com/agencyhq/opscore/internal/offering/domain"
	"github.com/agencyhq/opscore/internal/profile"
	profiledomain "github.com/agencyhq/opscore/internal/profile/domain"
	"github.com/agencyhq/opscore/internal/providers/email"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	client.Module,
	offering.Module,
	budget.Module,
	profile.Module,
	alert.Module,
	notification.Module,
	email.Module,
	dispatch.Module,
	evaluator.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	clientSvc       clientdomain.Service
	offeringSvc     offeringdomain.Service
	budgetSvc       budgetdomain.Service
	profileSvc      profiledomain.Service
	alertSvc        alertdomain.Service
	notificationSvc notificationdomain.Service
	dispatchSvc     dispatchdomain.Service
	evaluator       *evaluator.Evaluator
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	ClientSvc       clientdomain.Service
	OfferingSvc     offeringdomain.Service
	BudgetSvc       budgetdomain.Service
	ProfileSvc      profiledomain.Service
	AlertSvc        alertdomain.Service
	NotificationSvc notificationdomain.Service
	DispatchSvc     dispatchdomain.Service
	Evaluator       *evaluator.Evaluator
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		clientSvc:       p.ClientSvc,
		offeringSvc:     p.OfferingSvc,
		budgetSvc:       p.BudgetSvc,
		profileSvc:      p.ProfileSvc,
		alertSvc:        p.AlertSvc,
		notificationSvc: p.NotificationSvc,
		dispatchSvc:     p.DispatchSvc,
		evaluator:       p.Evaluator,
	}

	svc.registerInternalRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerInternalRoutes() {
	internal := s.engine.Group("/internal")

	// The trigger is method-agnostic so both schedulers and humans can hit it.
	internal.POST("/evaluator/run", s.RunEvaluator)
	internal.GET("/evaluator/run", s.RunEvaluator)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.ArchiveClient)

	// -------- Services --------
	api.GET("/services", s.ListOfferings)
	api.POST("/services", s.CreateOffering)
	api.GET("/services/:id", s.GetOfferingByID)
	api.PATCH("/services/:id", s.UpdateOffering)

	// -------- Budget allocations --------
	api.GET("/budget-allocations", s.ListAllocations)
	api.POST("/budget-allocations", s.CreateAllocation)
	api.GET("/budget-allocations/:id", s.GetAllocationByID)
	api.PATCH("/budget-allocations/:id", s.UpdateAllocation)
	api.DELETE("/budget-allocations/:id", s.ArchiveAllocation)

	// -------- Profiles --------
	api.GET("/profiles", s.ListProfiles)
	api.POST("/profiles", s.CreateProfile)
	api.GET("/profiles/:id", s.GetProfileByID)
	api.PATCH("/profiles/:id", s.UpdateProfile)
	api.POST("/profiles/:id/deactivate", s.DeactivateProfile)

	// -------- Budget alerts --------
	api.GET("/budget-alerts", s.ListAlerts)
	api.GET("/budget-alerts/:id", s.GetAlertByID)
	api.POST("/budget-alerts/:id/dismiss", s.DismissAlert)

	// -------- Notifications --------
	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.POST("/notifications/send", s.SendNotification)
}
