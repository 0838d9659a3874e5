// Package health contiene los DTOs de health check.
package health

// RootResponse es la respuesta de GET /.
type RootResponse struct {
	Message string `json:"message"`
}

// HealthResponse es la respuesta de GET /healthz.
type HealthResponse struct {
	Status    string       `json:"status"`
	Version   string       `json:"version,omitempty"`
	Providers []string     `json:"providers"`
	Stores    []StoreStats `json:"stores,omitempty"`
}

// StoreStats resume una tabla del broker.
type StoreStats struct {
	Name string `json:"name"`
	Keys int    `json:"keys"`
}
