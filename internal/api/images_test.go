package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowse(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/browse", r.URL.Path)
		assert.Equal(t, "untagged", r.URL.Query().Get("filter"))
		assert.Equal(t, "cat", r.URL.Query().Get("tag"))
		writeJSON(w, map[string]any{
			"results": []map[string]any{
				{"filename": "b.png", "tags": []string{}, "url": "/images/b.png", "md5": "bb"},
			},
			"total": 1,
		})
	})

	page, err := client.Browse(FilterUntagged, []string{"cat"}, 0, 50)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "b.png", page.Results[0].Filename)
	assert.Empty(t, page.Results[0].Tags)
}

func TestNextImage(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get_next_untagged_image", r.URL.Path)
		assert.Equal(t, "a.png", r.URL.Query().Get("current"))
		assert.Equal(t, "untagged", r.URL.Query().Get("filter"))
		writeJSON(w, map[string]any{
			"success":   true,
			"filename":  "b.png",
			"url":       "/images/b.png",
			"tags":      []string{},
			"md5":       "bb",
			"is_review": false,
		})
	})

	img, err := client.NextImage("a.png", FilterUntagged)
	require.NoError(t, err)
	assert.Equal(t, "b.png", img.Filename)
	assert.False(t, img.IsReview)
}

func TestNextImageReviewMode(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("filter"))
		writeJSON(w, map[string]any{
			"success":   true,
			"filename":  "c.png",
			"url":       "/images/c.png",
			"tags":      []string{"cat"},
			"md5":       "cc",
			"is_review": true,
			"message":   "all View: 3/10",
		})
	})

	img, err := client.NextImage("b.png", FilterAll)
	require.NoError(t, err)
	assert.True(t, img.IsReview)
	assert.Equal(t, []string{"cat"}, img.Tags)
	assert.Equal(t, "all View: 3/10", img.Message)
}

func TestNextImageQueueEmpty(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "message": "nothing left to tag"})
	})

	_, err := client.NextImage("", FilterUntagged)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.Contains(t, err.Error(), "nothing left to tag")
}

func TestSaveTags(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/save_tags", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a.png", body["filename"])
		assert.Equal(t, []any{"cat", "dog"}, body["tags"])
		writeJSON(w, map[string]any{"success": true})
	})

	require.NoError(t, client.SaveTags("a.png", []string{"cat", "dog"}))
}

func TestDeleteImage(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/delete_image", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a.png", body["filename"])
		writeJSON(w, map[string]any{"success": true})
	})

	require.NoError(t, client.DeleteImage("a.png"))
}

func TestDeleteImageUnknown(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false})
	})

	err := client.DeleteImage("ghost.png")
	assert.ErrorIs(t, err, ErrRejected)
}
