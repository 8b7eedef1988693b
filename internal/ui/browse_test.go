package ui

import (
	"encoding/json"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/tagdex/internal/ui/components"
)

// browsePageHandler serves a fixed browse page and records the filters it
// was asked for.
func browsePageHandler(filters *[]string, files ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/browse" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		*filters = append(*filters, r.URL.Query().Get("filter"))
		results := make([]map[string]any, len(files))
		for i, f := range files {
			results[i] = map[string]any{"filename": f, "tags": []string{"cat"}, "md5": "00112233aabb"}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results, "total": len(files)})
	}
}

func TestBrowseInitLoads(t *testing.T) {
	var filters []string
	_, client := testClient(t, browsePageHandler(&filters, "a.png", "b.png"))
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)

	cmd := model.Init()
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())

	assert.Equal(t, []string{"all"}, filters)
	assert.True(t, model.loaded)
	require.Len(t, model.items, 2)
	assert.Equal(t, "a.png", model.items[0].Filename)
}

func TestBrowseFilterCycleReloads(t *testing.T) {
	var filters []string
	_, client := testClient(t, browsePageHandler(&filters, "a.png"))
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())

	assert.Equal(t, []string{"tagged"}, filters)
	assert.Equal(t, 1, model.filterIdx)
}

func TestBrowseStaleLoadDropped(t *testing.T) {
	_, client := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)

	// Echo of a load fired before the user cycled the filter away.
	model, _ = model.Update(browseLoadedMsg{filter: "tagged", items: nil, total: 0})

	assert.False(t, model.loaded)
}

func TestBrowseDeleteFlow(t *testing.T) {
	var filters []string
	var deleted string
	_, client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/delete_image" {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			deleted = body["filename"]
			json.NewEncoder(w).Encode(map[string]any{"success": true})
			return
		}
		browsePageHandler(&filters, "a.png", "b.png")(w, r)
	})
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)

	cmd := model.Init()
	model, _ = model.Update(cmd())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, browseFocusList, model.focus)

	model, _ = model.Update(runeKey('d'))
	require.True(t, model.confirmDelete)

	model, cmd = model.Update(runeKey('y'))
	require.NotNil(t, cmd)
	model, cmd = model.Update(cmd())
	assert.Equal(t, "a.png", deleted)
	assert.False(t, model.confirmDelete)

	// The delete triggers a reload of the same page.
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	assert.Len(t, filters, 2)
}

func TestBrowseDeleteConfirmDeclined(t *testing.T) {
	var filters []string
	_, client := testClient(t, browsePageHandler(&filters, "a.png"))
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)

	cmd := model.Init()
	model, _ = model.Update(cmd())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(runeKey('d'))
	require.True(t, model.confirmDelete)

	model, cmd = model.Update(runeKey('n'))

	assert.False(t, model.confirmDelete)
	assert.Nil(t, cmd)
}

func TestBrowseDeleteKeyTypesIntoFilter(t *testing.T) {
	_, client := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)
	require.Equal(t, browseFocusFilter, model.focus)

	model, _ = model.Update(runeKey('d'))

	assert.False(t, model.confirmDelete)
	assert.Equal(t, "d", model.tagField.Value())
}

func TestBrowseEscClearsFilterField(t *testing.T) {
	var filters []string
	_, client := testClient(t, browsePageHandler(&filters))
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)
	model.tagField.SetValue("cat ")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, "", model.tagField.Value())
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	assert.True(t, model.loaded)
}

func TestBrowsePagingBounds(t *testing.T) {
	_, client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"filename": "a.png"}, {"filename": "b.png"}},
			"total":   3,
		})
	})
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 2)

	cmd := model.Init()
	model, _ = model.Update(cmd())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, browseFocusList, model.focus)

	model, cmd = model.Update(runeKey('n'))
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	assert.Equal(t, 2, model.offset)

	// Page 2 is the last one.
	model, cmd = model.Update(runeKey('n'))
	assert.Nil(t, cmd)

	model, cmd = model.Update(runeKey('p'))
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	assert.Equal(t, 0, model.offset)
}

func TestBrowseAtTop(t *testing.T) {
	var filters []string
	_, client := testClient(t, browsePageHandler(&filters, "a.png"))
	model := NewBrowseModel(client, components.NewOverlayManager(), quickUIOptions(), 50)
	assert.True(t, model.atTop())

	cmd := model.Init()
	model, _ = model.Update(cmd())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.False(t, model.atTop())
}
