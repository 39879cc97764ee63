// Package server is the dev server: it serves bundled entry points over HTTP
// and streams build results to websocket subscribers. Each rebuild starts a
// fresh build invocation, so remote fetch caching never leaks across builds.
package server

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"remap.dev/internal/compile"
	"remap.dev/internal/health"
	"remap.dev/internal/log"
	"remap.dev/internal/project"
)

var logger log.Logger = log.New("server")

type Server struct {
	BindAddress string
	Port        int
	Config      project.Config

	engine  *gin.Engine
	bundler compile.Bundler
	events  eventHub
}

func (server *Server) loadRoutes() {
	server.engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": project.Version})
	})

	server.engine.GET("/api/entrypoints", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"entrypoints": server.Config.Entrypoints})
	})

	server.engine.POST("/api/rebuild", func(c *gin.Context) {
		server.bundler.Invalidate()

		results := make([]buildEvent, 0, len(server.Config.Entrypoints))
		for _, entryPoint := range server.Config.Entrypoints {
			_, event := server.buildEntry(entryPoint)
			results = append(results, event)
		}
		c.JSON(http.StatusOK, gin.H{"builds": results})
	})

	server.engine.GET("/api/events", server.events.Handler())

	server.engine.GET("/assets/:filename", func(c *gin.Context) {
		filename := c.Param("filename")

		// A broken entry point must not block assets of the ones that still
		// build; its error is only reported if the file never turns up.
		var firstBuildError string
		for _, entryPoint := range server.Config.Entrypoints {
			bundle, event := server.buildEntry(entryPoint)
			if bundle == nil {
				if firstBuildError == "" {
					firstBuildError = event.Error
				}
				continue
			}

			for _, file := range bundle.Files {
				if path.Base(file.Path) == filename {
					if bundle.Cached {
						c.Header("X-Cache", "HIT")
					} else {
						c.Header("X-Cache", "MISS")
					}
					c.Data(http.StatusOK, contentType(filename), file.Contents)
					return
				}
			}
		}

		if firstBuildError != "" {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(firstBuildError))
			return
		}
		c.Data(http.StatusNotFound, "text/plain; charset=utf-8", []byte(fmt.Sprintf("no bundle output named %s", filename)))
	})
}

// buildEntry builds one entry point and broadcasts the outcome to event
// subscribers.
func (server *Server) buildEntry(entryPoint string) (*compile.Bundle, buildEvent) {
	pluginOpts, err := server.Config.PluginOptions()
	if err == nil {
		var bundle *compile.Bundle
		bundle, err = server.bundler.Build(compile.Options{
			EntryPoint: entryPoint,
			WorkingDir: server.Config.ProjectPath,
			Plugin:     pluginOpts,
		})
		if err == nil {
			event := buildEvent{Kind: "build", EntryPoint: entryPoint, Cached: bundle.Cached}
			for _, file := range bundle.Files {
				event.Files = append(event.Files, path.Base(file.Path))
			}
			if !bundle.Cached {
				server.events.Broadcast(event)
			}
			return bundle, event
		}
	}

	event := buildEvent{Kind: "error", EntryPoint: entryPoint, Error: err.Error()}
	server.events.Broadcast(event)
	return nil, event
}

func contentType(filename string) string {
	switch path.Ext(filename) {
	case ".js", ".mjs":
		return "application/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".map", ".json":
		return "application/json; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (server *Server) Run() error {
	logger.Print("Starting remap dev server", log.Ctx{
		"projectPath": server.Config.ProjectPath,
		"pid":         os.Getpid(),
	})

	gin.SetMode(gin.ReleaseMode)
	server.engine = gin.New()
	server.engine.Use(gin.Recovery())
	server.loadRoutes()

	portBinding := fmt.Sprintf("%s:%d", server.BindAddress, server.Port)

	go func() {
		healthCheck := health.HttpHealthCheck{
			Method: "GET",
			Url:    fmt.Sprintf("http://%s/api/health", portBinding),
		}
		for !health.CheckHttp(healthCheck) {
			time.Sleep(1 * time.Second)
		}
		logger.Print(fmt.Sprintf("Started remap dev server on http://%s", portBinding), log.Ctx{})
	}()

	if err := http.ListenAndServe(portBinding, server.engine); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
