package idgen_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-advancement/internal/pkg/idgen"
)

func TestUUIDGenerator(t *testing.T) {
	gen := idgen.NewUUID("hist")
	a, b := gen.Generate(), gen.Generate()

	assert.True(t, strings.HasPrefix(a, "hist_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, idgen.NewUUID("").Generate(), 36)
}

func TestSequentialGeneratorIsUniqueAcrossGoroutines(t *testing.T) {
	gen := idgen.NewSequential("pend")

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Generate()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, 50)
	assert.True(t, seen["pend_1"])
	assert.True(t, seen["pend_50"])
}
