package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torosent/crankbench/internal/backend"
)

func TestDefaultRegistryOrder(t *testing.T) {
	r := backend.DefaultRegistry()
	assert.Equal(t, []string{"goroutine", "errgroup", "conc"}, r.Names())

	b, ok := r.Lookup("errgroup")
	require.True(t, ok)
	assert.Equal(t, "errgroup", b.Name())

	_, ok = r.Lookup("asyncio")
	assert.False(t, ok)
}

func TestDefaultRegistryIsFreshEachCall(t *testing.T) {
	a, _ := backend.DefaultRegistry().Lookup("conc")
	b, _ := backend.DefaultRegistry().Lookup("conc")
	assert.NotSame(t, a, b)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := backend.NewRegistry(backend.NewConcBackend(), backend.NewConcBackend())
	assert.ErrorContains(t, err, `"conc" registered twice`)

	_, err = backend.NewRegistry(nil)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	r := backend.DefaultRegistry()

	all, err := r.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, r.Names(), all)

	picked, err := r.Resolve([]string{"conc", "goroutine"})
	require.NoError(t, err)
	assert.Equal(t, []string{"conc", "goroutine"}, picked)

	_, err = r.Resolve([]string{"goroutine", "trio"})
	assert.ErrorContains(t, err, "unknown libraries trio")
}

func TestNamesReturnsCopy(t *testing.T) {
	r := backend.DefaultRegistry()
	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, "goroutine", r.Names()[0])
}
