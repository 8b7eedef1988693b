package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExportLibrary downloads the full library snapshot.
func (c *Client) ExportLibrary() (*LibrarySnapshot, error) {
	data, err := c.get("/api/export_json")
	if err != nil {
		return nil, err
	}
	return decode[LibrarySnapshot](data)
}

// ExportLibraryRaw downloads the snapshot bytes verbatim, preserving the
// backend's formatting for file dumps.
func (c *Client) ExportLibraryRaw() ([]byte, error) {
	return c.get("/api/export_json")
}

// ImportLibrary uploads a snapshot stream. The backend merges it into the
// live library and reindexes.
func (c *Client) ImportLibrary(filename string, r io.Reader) (*ImportResult, error) {
	data, err := c.postMultipart("/api/import_json", "file", filename, r)
	if err != nil {
		return nil, err
	}
	res, err := decode[ImportResult](data)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		if res.Message != "" {
			return nil, fmt.Errorf("import: %w: %s", ErrRejected, res.Message)
		}
		return nil, fmt.Errorf("import: %w", ErrRejected)
	}
	return res, nil
}

// ImportLibraryFile uploads a local snapshot file.
func (c *Client) ImportLibraryFile(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return c.ImportLibrary(filepath.Base(path), f)
}
