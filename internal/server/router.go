package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/bookfriends/internal/drafts"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/groups"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/kvstore"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/metrics"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/records"
	"github.com/MarcoPoloResearchLab/bookfriends/internal/sessions"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	errorCodeInvalidRequest    = "invalid_request"
	errorCodeGroupNotFound     = "group_not_found"
	errorCodeGroupNotJoined    = "group_not_joined"
	errorCodeNoActiveSession   = "no_active_session"
	errorCodeNoDraft           = "no_draft"
	errorCodeForbidden         = "forbidden"
	errorCodeCodeExhausted     = "group_code_exhausted"
	errorCodeRecordBuildFailed = "record_build_failed"
	errorCodeStorageFailed     = "storage_failed"
)

var (
	errMissingRegistry = errors.New("group registry dependency required")
	errMissingRecords  = errors.New("record repository dependency required")
	errMissingFactory  = errors.New("record factory dependency required")
	errMissingSessions = errors.New("session manager dependency required")
	errMissingDrafts   = errors.New("draft cache dependency required")
)

// Dependencies lists the collaborators the HTTP handler calls into.
type Dependencies struct {
	Registry *groups.Registry
	Records  *records.Repository
	Factory  *records.Factory
	Sessions *sessions.Manager
	Drafts   *drafts.Cache
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewHTTPHandler wires the JSON API over the persistence layer.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	switch {
	case deps.Registry == nil:
		return nil, errMissingRegistry
	case deps.Records == nil:
		return nil, errMissingRecords
	case deps.Factory == nil:
		return nil, errMissingFactory
	case deps.Sessions == nil:
		return nil, errMissingSessions
	case deps.Drafts == nil:
		return nil, errMissingDrafts
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	handler := &httpHandler{
		registry: deps.Registry,
		records:  deps.Records,
		factory:  deps.Factory,
		sessions: deps.Sessions,
		drafts:   deps.Drafts,
		logger:   logger,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	router.GET("/genres", handler.handleListGenres)

	router.GET("/groups", handler.handleListGroups)
	router.POST("/groups", handler.handleCreateGroup)
	router.GET("/groups/:code", handler.handleGetGroup)
	router.POST("/groups/:code/members", handler.handleJoinGroup)
	router.GET("/groups/:code/records", handler.handleListGroupRecords)
	router.GET("/groups/:code/shelf", handler.handleGroupShelf)
	router.GET("/groups/:code/calendar", handler.handleGroupCalendar)

	router.GET("/records", handler.handleListAuthorRecords)
	router.POST("/records", handler.handleCreateRecord)
	router.DELETE("/records/:id", handler.handleDeleteRecord)

	router.GET("/session", handler.handleGetSession)
	router.PUT("/session", handler.handleSwitchSession)
	router.DELETE("/session", handler.handleClearSession)
	router.GET("/session/joined", handler.handleListJoined)

	router.GET("/draft", handler.handleGetDraft)
	router.PUT("/draft", handler.handleSaveDraft)
	router.DELETE("/draft", handler.handleClearDraft)

	return router, nil
}

type httpHandler struct {
	registry *groups.Registry
	records  *records.Repository
	factory  *records.Factory
	sessions *sessions.Manager
	drafts   *drafts.Cache
	logger   *zap.Logger
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	})
}

// respondStorageError logs err and answers 500 with the stable storage error code.
func (h *httpHandler) respondStorageError(c *gin.Context, message string, err error) {
	h.logger.Error(message,
		zap.String("path", c.FullPath()),
		zap.String("code", kvstore.ErrorCode(err)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": errorCodeStorageFailed})
}

func respondError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{"error": code})
}
