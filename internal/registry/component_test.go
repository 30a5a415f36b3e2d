package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComponentRegistry(t *testing.T) {
	registry := NewComponentRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.Catalog())
	assert.Equal(t, 0, registry.Count())
	assert.Equal(t, 0, len(registry.watchers))
}

func TestComponentRegistry_Publish(t *testing.T) {
	registry := NewComponentRegistry()

	emitted := registry.Publish(Build(sampleManifest()))
	assert.Equal(t, 5, emitted)
	assert.Equal(t, 5, registry.Count())

	comp, exists := registry.Get("accordion")
	assert.True(t, exists)
	assert.Equal(t, "accordion", comp.Name)

	// Publishing the same manifest again changes nothing
	assert.Equal(t, 0, registry.Publish(Build(sampleManifest())))
}

func TestComponentRegistry_EventTypes(t *testing.T) {
	registry := NewComponentRegistry()
	registry.Publish(Build(Manifest{Fragments: []string{
		"components/accordion/base/index.html",
		"components/button/base/index.html",
	}}))

	watcher := registry.Watch()
	defer registry.UnWatch(watcher)

	registry.Publish(Build(Manifest{Fragments: []string{
		"components/accordion/base/index.html",
		"components/accordion/outline/index.html",
		"components/card/base/index.html",
	}}))

	got := map[string]EventType{}
	timeout := time.After(time.Second)
	for len(got) < 3 {
		select {
		case event := <-watcher:
			got[event.Component.ID] = event.Type
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}

	assert.Equal(t, EventTypeUpdated, got["accordion"])
	assert.Equal(t, EventTypeAdded, got["card"])
	assert.Equal(t, EventTypeRemoved, got["button"])
}

func TestComponentRegistry_UnWatch(t *testing.T) {
	registry := NewComponentRegistry()

	watcher := registry.Watch()
	assert.Len(t, registry.watchers, 1)

	registry.UnWatch(watcher)
	assert.Len(t, registry.watchers, 0)

	_, open := <-watcher
	assert.False(t, open)
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "added", EventTypeAdded.String())
	assert.Equal(t, "updated", EventTypeUpdated.String())
	assert.Equal(t, "removed", EventTypeRemoved.String())
	assert.Equal(t, "unknown", EventType(9).String())
}

func TestComponentRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewComponentRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			registry.Publish(Build(Manifest{Fragments: []string{
				fmt.Sprintf("components/comp%d/base/index.html", i),
			}}))
		}(i)
		go func() {
			defer wg.Done()
			_ = registry.Count()
			_, _ = registry.Get("comp0")
		}()
	}
	wg.Wait()

	require.Equal(t, 1, registry.Count())
}
