package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/command"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
	"github.com/alexanderjulianmartinez/sqlite-schema/pkg/types"
)

// Runner is the dispatch surface the server exposes.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (*types.CommandOutput, error)
	Commands() []string
}

type commandRequest struct {
	Args []string `json:"args"`
}

// NewRouter exposes runner over HTTP:
//
//	GET  /healthz
//	GET  /commands
//	POST /commands/:name  {"args": ["path/to.db"]}
func NewRouter(runner Runner, log logrus.FieldLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		success(c, http.StatusOK, nil, "ok")
	})
	router.GET("/commands", func(c *gin.Context) {
		success(c, http.StatusOK, runner.Commands(), "")
	})
	router.POST("/commands/:name", func(c *gin.Context) {
		var req commandRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				fail(c, http.StatusBadRequest, err, "Invalid request body")
				return
			}
		}

		name := c.Param("name")
		out, err := runner.Run(c.Request.Context(), name, req.Args)
		if err != nil {
			fail(c, statusFor(err), err, "Command "+name+" failed")
			return
		}
		success(c, http.StatusOK, out, "")
	})
	return router
}

func statusFor(err error) int {
	var unknown *command.UnknownCommandError
	switch {
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.Is(err, source.ErrMissingArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Info("request")
	}
}

// NewServer wraps the router in an http.Server with the usual timeouts.
func NewServer(addr string, runner Runner, log logrus.FieldLogger) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewRouter(runner, log),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
