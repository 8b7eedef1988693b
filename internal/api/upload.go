package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// allowedImageExts mirrors the extensions the backend accepts.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AllowedImage reports whether the path carries an accepted image extension.
func AllowedImage(path string) bool {
	return allowedImageExts[strings.ToLower(filepath.Ext(path))]
}

// Upload sends a named stream through the MD5 dedup check. Existing bytes
// come back with Exists set and the stored image's tags; new bytes are saved
// and queued untagged.
func (c *Client) Upload(filename string, r io.Reader) (*UploadResult, error) {
	data, err := c.postMultipart("/api/check_upload", "file", filename, r)
	if err != nil {
		return nil, err
	}
	return decode[UploadResult](data)
}

// UploadFile uploads a local image file.
func (c *Client) UploadFile(path string) (*UploadResult, error) {
	if !AllowedImage(path) {
		return nil, fmt.Errorf("unsupported image type: %s", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return c.Upload(filepath.Base(path), f)
}
