// Package handler exposes the API as a single net/http function for
// serverless deployments.
package handler

import (
	"net/http"
	"sync"

	_ "github.com/amirasaad/studentrelief/docs"
	infraeventbus "github.com/amirasaad/studentrelief/infra/eventbus"
	"github.com/amirasaad/studentrelief/infra/initializer"
	"github.com/amirasaad/studentrelief/pkg/app"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/webapi"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var (
	once    sync.Once
	served  http.HandlerFunc
	initErr error
)

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	once.Do(func() { served, initErr = build() })
	if initErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	served.ServeHTTP(w, r)
}

// build wires the app once per instance. Function instances are frozen between
// requests, so background consumers and the scheduler are not started and
// notifications are delivered on the request path.
func build() (http.HandlerFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Bus == nil {
		cfg.Bus = &config.Bus{}
	}
	cfg.Bus.Driver = infraeventbus.DriverMemorySync

	deps, _, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, err
	}
	return adaptor.FiberApp(webapi.SetupApp(app.New(deps, cfg))), nil
}
