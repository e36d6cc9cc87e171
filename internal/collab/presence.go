package collab

import (
	"maps"
	"slices"
	"sync"
)

// connectionColors are handed out to connections round robin.
var connectionColors = []string{"#D97706", "#059669", "#7C3AED", "#DB2777", "#DC2626"}

// ConnectionColor returns the cursor and selection color of a connection.
func ConnectionColor(connectionID int) string {
	i := connectionID % len(connectionColors)
	if i < 0 {
		i += len(connectionColors)
	}
	return connectionColors[i]
}

type PresenceManager struct {
	mu        sync.RWMutex
	presences map[int]*Presence // connectionID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[int]*Presence),
	}
}

func (pm *PresenceManager) Update(connectionID int, p *Presence) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[connectionID] = p
}

func (pm *PresenceManager) Remove(connectionID int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, connectionID)
}

func (pm *PresenceManager) Get(connectionID int) (*Presence, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.presences[connectionID]
	return p, ok
}

func (pm *PresenceManager) GetAll() map[int]*Presence {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.presences)
}

// SelectionColors maps every layer selected by another connection to that
// connection's color, then paints the layers in self's own selection with
// selfColor.
func (pm *PresenceManager) SelectionColors(self int, selfColor string) map[string]string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	colors := map[string]string{}
	for _, id := range slices.Sorted(maps.Keys(pm.presences)) {
		if id == self {
			continue
		}
		for _, layerID := range pm.presences[id].Selection {
			colors[layerID] = ConnectionColor(id)
		}
	}
	if me, ok := pm.presences[self]; ok {
		for _, layerID := range me.Selection {
			colors[layerID] = selfColor
		}
	}
	return colors
}
