package api

import (
	"time"

	"pdf_toolkit/download"
	pdfPkg "pdf_toolkit/pdf"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	Port         string
	MaxFileSize  int64
	MaxFiles     int
	PagePolicy   pdfPkg.PagePolicy
	DownloadTTL  time.Duration
	ReleaseDelay time.Duration
}

// Service carries the dependencies shared by all handlers.
type Service struct {
	config *Config
	store  *download.Store
	logger *logrus.Logger
	busy   *busyGuard
}

// NewService creates the handler set. store holds the download references.
func NewService(config *Config, store *download.Store, logger *logrus.Logger) *Service {
	if config.MaxFiles <= 0 {
		config.MaxFiles = DefaultMaxFiles
	}
	if config.ReleaseDelay < 0 {
		config.ReleaseDelay = DefaultReleaseDelay
	}
	return &Service{
		config: config,
		store:  store,
		logger: logger,
		busy:   newBusyGuard(),
	}
}

func SetupRoutes(r *gin.Engine, s *Service) {
	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.POST("/info", s.HandleInfo)
		apiGroup.POST("/merge", s.HandleMerge)
		apiGroup.POST("/split", s.HandleSplit)
		apiGroup.POST("/extract", s.HandleExtract)
		apiGroup.POST("/rotate", s.HandleRotate)
		apiGroup.POST("/watermark", s.HandleWatermark)
		apiGroup.POST("/compress", s.HandleCompress)
		apiGroup.POST("/remove-pages", s.HandleRemovePages)
		apiGroup.GET("/download/:id", s.HandleDownload)
		apiGroup.DELETE("/download/:id", s.HandleRelease)
	}
}
