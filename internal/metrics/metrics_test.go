package metrics

import (
	"strings"
	"testing"

	"github.com/dropDatabas3/authbridge/internal/cache"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterBroker(reg))
	require.NoError(t, RegisterBroker(reg))
	require.NoError(t, RegisterHTTP(reg))
	require.NoError(t, RegisterHTTP(reg))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Redemptions.WithLabelValues("github", "ok"))
	Redemptions.WithLabelValues("github", "ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Redemptions.WithLabelValues("github", "ok")))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", NormalizePath(""))
	assert.Equal(t, "/api/oauth/github/callback", NormalizePath("/api/oauth/github/callback"))
	assert.Equal(t, "/api/items/:n", NormalizePath("/api/items/12345"))
	assert.Equal(t, "/x/:id", NormalizePath("/x/abcdefghijklmnopqrstuvwxyz0123"))
}

func TestStoreCollector(t *testing.T) {
	c := NewStoreCollector(func() []cache.Stats {
		return []cache.Stats{
			{Name: "github:state", Driver: "memory", Keys: 2, Hits: 5},
			{Name: "github:resource", Driver: "memory", Keys: 1, Expired: 1},
		}
	})
	assert.Equal(t, 8, testutil.CollectAndCount(c))

	expected := `
# HELP authbridge_store_keys Entradas vivas por tabla
# TYPE authbridge_store_keys gauge
authbridge_store_keys{driver="memory",store="github:resource"} 1
authbridge_store_keys{driver="memory",store="github:state"} 2
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "authbridge_store_keys"))
}
