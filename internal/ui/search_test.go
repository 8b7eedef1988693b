package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *api.Client) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, api.NewClient(srv.URL)
}

// quickUIOptions shrinks the debounce window so lookup chains settle fast.
func quickUIOptions() components.Options {
	return components.Options{QuietPeriod: time.Millisecond, MaxRows: 8}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newSearchForTest(t *testing.T, handler http.HandlerFunc) SearchModel {
	_, client := testClient(t, handler)
	return NewSearchModel(client, components.NewOverlayManager(), quickUIOptions(), 50)
}

func TestSearchRunOnEnter(t *testing.T) {
	var path, include, exclude string
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		include = r.URL.Query().Get("include")
		exclude = r.URL.Query().Get("exclude")
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"filename": "a.png", "tags": []string{"cat"}, "md5": "0001", "score": 2.5},
				{"filename": "b.png", "tags": []string{"cat", "cute"}, "md5": "0002"},
			},
			"total": 2,
		})
	})
	model.include.SetValue("cat cute ")
	model.exclude.SetValue("wip ")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, model.loading)

	model, _ = model.Update(cmd())

	assert.Equal(t, "/api/search", path)
	assert.Equal(t, "cat,cute", include)
	assert.Equal(t, "wip", exclude)
	assert.False(t, model.loading)
	assert.True(t, model.ran)
	require.Len(t, model.items, 2)
	assert.Equal(t, "a.png", model.items[0].Filename)
	assert.Equal(t, 2, model.total)
}

func TestSearchEnterWithNoTagsIsNoop(t *testing.T) {
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, model.loading)
}

func TestSearchStaleResultsDropped(t *testing.T) {
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {})
	model.include.SetValue("cat ")

	// A result echoing a field state the user has since edited away.
	model, _ = model.Update(searchResultsMsg{
		include: "dog ",
		items:   []api.Image{{Filename: "stale.png"}},
		total:   1,
	})

	assert.False(t, model.ran)
	assert.Empty(t, model.items)
}

func TestSearchSuggestionCommitSplices(t *testing.T) {
	var query string
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		json.NewEncoder(w).Encode(map[string]any{
			"tags":  []map[string]any{{"tag": "cateye", "count": 9, "synonyms": []string{"cat-eye"}}},
			"total": 1,
		})
	})

	// Keystroke arms the debounce; the tick fires the lookup; the results
	// open the list.
	model, cmd := model.Update(runeKey('c'))
	require.NotNil(t, cmd)
	model, cmd = model.Update(cmd())
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	require.True(t, model.include.Open())
	assert.Equal(t, "c", query)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "cateye ", model.include.Value())
	assert.False(t, model.include.Open())
}

// loadedSearch fakes a finished search with n result rows.
func loadedSearch(t *testing.T, model SearchModel, n int) SearchModel {
	t.Helper()
	items := make([]api.Image, n)
	for i := range items {
		items[i] = api.Image{Filename: string(rune('a'+i)) + ".png"}
	}
	model.include.SetValue("cat ")
	model, _ = model.Update(searchResultsMsg{include: "cat ", items: items, total: n})
	require.True(t, model.ran)
	return model
}

func TestSearchFocusWalk(t *testing.T) {
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {})
	model = loadedSearch(t, model, 3)

	assert.Equal(t, searchFocusInclude, model.focus)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, searchFocusExclude, model.focus)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, searchFocusResults, model.focus)

	// Scrolling inside the results, then back out at the top row.
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, model.list.Selected())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, model.list.Selected())
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, searchFocusExclude, model.focus)
}

func TestSearchFocusSkipsEmptyResults(t *testing.T) {
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {})

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, searchFocusExclude, model.focus)

	// No results yet, so Down stays on the exclude field.
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, searchFocusExclude, model.focus)
}

func TestSearchPagingKeys(t *testing.T) {
	var offsets []string
	_, client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("offset"))
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"filename": "a.png"}, {"filename": "b.png"}},
			"total":   5,
		})
	})
	model := NewSearchModel(client, components.NewOverlayManager(), quickUIOptions(), 2)
	model.include.SetValue("cat ")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, searchFocusResults, model.focus)

	model, cmd = model.Update(runeKey('n'))
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	assert.Equal(t, 2, model.offset)

	model, cmd = model.Update(runeKey('p'))
	require.NotNil(t, cmd)
	model, _ = model.Update(cmd())
	assert.Equal(t, 0, model.offset)

	assert.Equal(t, []string{"", "2", ""}, offsets)
}

func TestSearchEscClearsFocusedField(t *testing.T) {
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {})
	model.include.SetValue("cat ")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, "", model.include.Value())
}

func TestSearchErrStopsLoading(t *testing.T) {
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {})
	model.include.SetValue("cat ")
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, model.loading)

	model, _ = model.Update(errMsg{err: assert.AnError})

	assert.False(t, model.loading)
}

func TestSearchAtTop(t *testing.T) {
	model := newSearchForTest(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.True(t, model.atTop())

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.False(t, model.atTop())
}
