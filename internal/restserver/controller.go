// Package restserver serves the HTTP API: water level feature queries and
// on-demand S-104 product generation.
package restserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/oceanobs/tidewriter/internal/provider"
	"github.com/oceanobs/tidewriter/internal/s100"
	"github.com/oceanobs/tidewriter/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	provider   *provider.Provider
	generator  *s100.Generator
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, prov *provider.Provider, gen *s100.Generator, logger *zap.SugaredLogger) (*Controller, error) {
	if prov == nil {
		return nil, fmt.Errorf("rest server requires a feature provider")
	}
	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		provider:   prov,
		generator:  gen,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)
	ctrl.Server.Handler = ctrl.newRouter()
	return ctrl, nil
}

func (c *Controller) newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.requestLogger)

	router.HandleFunc("/collections/waterlevels/items", c.handlers.GetItems).Methods(http.MethodGet)
	router.HandleFunc("/collections/waterlevels/items/{id}", c.handlers.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/products/s104", c.handlers.GenerateProducts).Methods(http.MethodPost)
	router.HandleFunc("/health", c.handlers.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return router
}

// Handler exposes the router, primarily for tests.
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// StartController starts the HTTP listener and arranges a graceful
// shutdown when the controller's context is cancelled.
func (c *Controller) StartController() error {
	listenAddr := net.JoinHostPort(c.restConfig.ListenAddr, strconv.Itoa(c.restConfig.Port))
	c.Server.Addr = listenAddr

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Infow("starting REST server", "addr", listenAddr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Errorw("REST server failed", "error", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			c.logger.Errorw("REST server shutdown failed", "error", err)
		}
	}()
	return nil
}
