package api

import (
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/docs"
	v1 "github.com/yizeng/gab/gin/gorm/ticket-gate/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/config"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/monitoring"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/repository"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/sealer"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/service"
)

type Server struct {
	Config   *config.AppConfig
	Router   *gin.Engine
	Feed     *v1.ScanFeed
	Registry *prometheus.Registry
}

// NewServer wires the ticket stack on top of ticketDAO. The caller must run
// s.Feed.Run for the live scan feed to deliver messages.
func NewServer(conf *config.AppConfig, ticketDAO repository.TicketDAO) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	s := &Server{
		Config:   conf,
		Router:   engine,
		Feed:     v1.NewScanFeed(conf.API.AllowedCORSDomains, metrics),
		Registry: registry,
	}

	s.MountMiddlewares()

	ticketHandler, err := s.initTicketHandler(ticketDAO, metrics)
	if err != nil {
		return nil, err
	}
	s.MountHandlers(ticketHandler)

	return s, nil
}

func (s *Server) initTicketHandler(ticketDAO repository.TicketDAO, metrics *monitoring.Metrics) (*v1.TicketHandler, error) {
	keySealer, err := sealer.FromBase64(s.Config.Ticket.SealingKey)
	if err != nil {
		return nil, fmt.Errorf("sealer.FromBase64 -> %w", err)
	}

	repo := repository.NewTicketRepository(ticketDAO, keySealer)
	svc := service.NewTicketService(repo, s.Config.Ticket, metrics, s.Feed)
	handler := v1.NewTicketHandler(svc)

	return handler, nil
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.NewString()
	})))
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(ticketHandler *v1.TicketHandler) {
	const basePath = "/api"

	api := s.Router.Group(basePath)
	{
		api.POST("/tickets/create", ticketHandler.HandleCreateTicket)
		api.POST("/tickets/scan", ticketHandler.HandleScanTicket)
		api.GET("/tickets", ticketHandler.HandleListTickets)
		api.GET("/tickets/:ticketID", ticketHandler.HandleGetTicket)
		api.GET("/stats", ticketHandler.HandleGetStats)
		api.GET("/export/csv", ticketHandler.HandleExportCSV)
		api.GET("/scans/feed", s.Feed.HandleScanFeed)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Ticket Gate API"
	docs.SwaggerInfo.Description = "Issues event tickets with QR credentials and validates them at the door."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
