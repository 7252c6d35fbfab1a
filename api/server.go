// Package api serves the HTTP interface: the sensor ingest endpoint, the read
// endpoints used by the front end, stored photos and the live update stream.
package api

import (
	"net/http"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/ingest"
	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/ZamarianPatrick/plantwatch-backend/metrics"
	"github.com/ZamarianPatrick/plantwatch-backend/query"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func logger() *zerolog.Logger {
	l := logging.Module("api")
	return &l
}

type Config struct {
	Version      string
	MaxBodyBytes int64
	PhotoRoot    string
}

type Server struct {
	version  string
	db       *gorm.DB
	queries  *query.Service
	pipeline *ingest.Pipeline
	metrics  *metrics.Metrics
	maxBody  int64
	photos   string
	engine   *gin.Engine
}

func NewServer(cfg Config, db *gorm.DB, pipeline *ingest.Pipeline, m *metrics.Metrics) *Server {
	s := &Server{
		version:  cfg.Version,
		db:       db,
		queries:  query.NewService(db),
		pipeline: pipeline,
		metrics:  m,
		maxBody:  cfg.MaxBodyBytes,
		photos:   cfg.PhotoRoot,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// WithQueries replaces the read service, mainly so tests can pin its clock.
func (s *Server) WithQueries(q *query.Service) *Server {
	s.queries = q
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = false
	r.Use(
		gin.CustomRecovery(s.recovered),
		requestID(),
		requestLogger(),
		s.observe(),
		cors(),
		bodyLimit(s.maxBody),
	)

	r.POST("/sensor-data", s.postSensorData)

	r.GET("/GetPlantList", s.getPlantList)
	r.GET("/GetPlantInfos", s.getPlantInfos)
	r.GET("/GetPlantBesoins", s.getPlantNeeds)
	r.GET("/GetPlantInterventions", s.getPlantInterventions)
	r.GET("/GetInterventionInfos", s.getInterventionInfos)
	r.GET("/GetLatestIntervention", s.getLatestIntervention)
	r.GET("/GetAllRapports", s.getAllReports)
	r.GET("/GetRapport", s.getReport)
	r.GET("/GetLatestRapport", s.getLatestReport)
	r.GET("/GetListeMembre", s.getMembers)
	r.GET("/GetMembreInfos", s.getMemberInfos)
	r.GET("/GetHierarchie", s.getHierarchy)
	r.GET("/GetAgendaClasse", s.getClassAgenda)

	if s.photos != "" {
		r.Static("/photos", s.photos)
	}
	r.GET("/ws/plants", s.livePlants)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.GET("/health", s.health)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return r
}

func (s *Server) health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logger().Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "version": s.version})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

func (s *Server) recovered(c *gin.Context, err any) {
	logger().Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("handler panicked")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// HTTPServer wraps the router in an http.Server listening on listen. The
// caller owns ListenAndServe and Shutdown.
func (s *Server) HTTPServer(listen string) *http.Server {
	return &http.Server{
		Addr:              listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
