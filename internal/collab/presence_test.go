package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionColor(t *testing.T) {
	assert.Equal(t, "#D97706", ConnectionColor(0))
	assert.Equal(t, "#DC2626", ConnectionColor(4))
	assert.Equal(t, "#D97706", ConnectionColor(5))
	assert.Equal(t, "#059669", ConnectionColor(6))
	assert.Equal(t, "#DC2626", ConnectionColor(-1))
}

func TestSelectionColors(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update(1, &Presence{Selection: []string{"a", "b"}})
	pm.Update(2, &Presence{Selection: []string{"b", "c"}})
	pm.Update(7, &Presence{Selection: []string{"c", "d"}})

	colors := pm.SelectionColors(7, "#3b82f6")
	assert.Equal(t, map[string]string{
		"a": ConnectionColor(1),
		"b": ConnectionColor(2),
		"c": "#3b82f6",
		"d": "#3b82f6",
	}, colors)

	pm.Remove(2)
	colors = pm.SelectionColors(7, "#3b82f6")
	assert.Equal(t, ConnectionColor(1), colors["b"])
}

func TestPresenceGetAll(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update(3, &Presence{Selection: []string{"a"}})

	all := pm.GetAll()
	require.Contains(t, all, 3)
	assert.Equal(t, []string{"a"}, all[3].Selection)

	p, ok := pm.Get(3)
	require.True(t, ok)
	assert.Nil(t, p.Cursor)

	pm.Remove(3)
	_, ok = pm.Get(3)
	assert.False(t, ok)
}
