// Package health contiene los controllers de / y /healthz.
package health

import (
	"net/http"

	"github.com/dropDatabas3/authbridge/internal/cache"
	dto "github.com/dropDatabas3/authbridge/internal/http/dto/health"
	"github.com/dropDatabas3/authbridge/internal/http/helpers"
)

// Source expone lo que el health check informa.
type Source interface {
	Providers() []string
	Stats() []cache.Stats
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	source  Source
	version string
}

func NewHealthController(source Source, version string) *HealthController {
	return &HealthController{source: source, version: version}
}

// Root maneja GET /.
func (c *HealthController) Root(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.RootResponse{Message: "Server Running"})
}

// Healthz maneja GET /healthz. El broker es in-memory: si responde, está ok.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	resp := dto.HealthResponse{Status: "ok", Version: c.version, Providers: []string{}}
	if c.source != nil {
		resp.Providers = c.source.Providers()
		for _, s := range c.source.Stats() {
			resp.Stores = append(resp.Stores, dto.StoreStats{Name: s.Name, Keys: s.Keys})
		}
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
