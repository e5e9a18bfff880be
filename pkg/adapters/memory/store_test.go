package memory_test

import (
	"testing"

	"github.com/aretw0/regtrain/pkg/adapters/memory"
	"github.com/aretw0/regtrain/pkg/ports"
)

// Ensure Store implements TrackingStore
var _ ports.TrackingStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunTrackingStoreContract(t, store)
}
