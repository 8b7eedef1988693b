package api

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/check_upload", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "new.png", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), content)
		writeJSON(w, map[string]any{
			"exists":   false,
			"filename": "new.png",
			"tags":     []string{},
			"url":      "/images/new.png",
			"md5":      "d1e2",
			"message":  "stored",
		})
	})

	res, err := client.Upload("new.png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.False(t, res.Exists)
	assert.Equal(t, "new.png", res.Filename)
	assert.Equal(t, "d1e2", res.MD5)
}

func TestUploadDuplicate(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"exists":   true,
			"filename": "old.png",
			"tags":     []string{"cat", "grumpy"},
			"url":      "/images/old.png",
			"md5":      "d1e2",
			"message":  "already stored",
		})
	})

	res, err := client.Upload("copy.png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, "old.png", res.Filename)
	assert.Equal(t, []string{"cat", "grumpy"}, res.Tags)
}

func TestUploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.webp")
	require.NoError(t, os.WriteFile(path, []byte("webp-bytes"), 0o644))

	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "shot.webp", header.Filename)
		writeJSON(w, map[string]any{
			"exists": false, "filename": "shot.webp", "tags": []string{},
			"url": "/images/shot.webp", "md5": "ff", "message": "stored",
		})
	})

	res, err := client.UploadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "shot.webp", res.Filename)
}

func TestUploadFileRejectsExtension(t *testing.T) {
	client := NewClient("http://example.com")
	_, err := client.UploadFile("/tmp/notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image type")
}

func TestAllowedImage(t *testing.T) {
	assert.True(t, AllowedImage("a.png"))
	assert.True(t, AllowedImage("b.JPG"))
	assert.True(t, AllowedImage("c.webp"))
	assert.False(t, AllowedImage("d.txt"))
	assert.False(t, AllowedImage("e"))
}
