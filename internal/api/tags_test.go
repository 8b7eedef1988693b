package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonTags(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/get_common_tags", r.URL.Path)
		assert.Equal(t, "ca", r.URL.Query().Get("query"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		writeJSON(w, map[string]any{
			"tags": []map[string]any{
				{"tag": "cat", "count": 12, "synonyms": []string{"kitty", "feline", "mouser"}},
				{"tag": "camel", "count": 3, "synonyms": []string{}},
			},
			"total": 2,
		})
	})

	page, err := client.CommonTags("ca", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Tags, 2)
	assert.Equal(t, "cat", page.Tags[0].Tag)
	assert.Equal(t, 12, page.Tags[0].Count)
	assert.Equal(t, []string{"kitty", "feline", "mouser"}, page.Tags[0].Synonyms)
}

func TestAddCommonTag(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/add_common_tag", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "otter", body["tag"])
		writeJSON(w, map[string]any{"success": true})
	})

	require.NoError(t, client.AddCommonTag("otter"))
}

func TestAddCommonTagBlankRejected(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false})
	})

	assert.ErrorIs(t, client.AddCommonTag("   "), ErrRejected)
}

func TestDeleteCommonTag(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/delete_common_tag", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "otter", body["tag"])
		writeJSON(w, map[string]any{"success": true})
	})

	require.NoError(t, client.DeleteCommonTag("otter"))
}

func TestUpdateSynonyms(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/update_synonyms", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cat", body["main_tag"])
		assert.Equal(t, []any{"kitty", "feline"}, body["synonyms"])
		writeJSON(w, map[string]any{"success": true})
	})

	require.NoError(t, client.UpdateSynonyms("cat", []string{"kitty", "feline"}))
}

func TestUpdateSynonymsEmptyGroup(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{}, body["synonyms"])
		writeJSON(w, map[string]any{"success": true})
	})

	require.NoError(t, client.UpdateSynonyms("cat", []string{}))
}
