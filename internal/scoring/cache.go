package scoring

import (
	"sync"

	"github.com/asifah/stormwatch/internal/models"
)

// Cache holds the latest assessment per target. Each slot stores an immutable
// *ThreatAssessment that is replaced atomically under the lock; readers never
// observe a partially updated assessment, and no cross-target locking exists
// beyond the map guard itself.
type Cache struct {
	mu    sync.RWMutex
	slots map[string]*models.ThreatAssessment
}

// NewCache creates an empty assessment cache.
func NewCache() *Cache {
	return &Cache{slots: make(map[string]*models.ThreatAssessment)}
}

// Get returns the latest assessment for a target, or nil when none exists.
// The returned record is immutable; callers must not modify it.
func (c *Cache) Get(target string) *models.ThreatAssessment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slots[CanonicalTarget(target)]
}

// Put replaces the target's slot with a new immutable assessment.
func (c *Cache) Put(assessment *models.ThreatAssessment) {
	if assessment == nil {
		return
	}
	c.mu.Lock()
	c.slots[CanonicalTarget(assessment.Target)] = assessment
	c.mu.Unlock()
}
