package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Browse filters: every image, only tagged ones, or only the untagged queue.
const (
	FilterAll      = "all"
	FilterTagged   = "tagged"
	FilterUntagged = "untagged"
)

// ErrQueueEmpty reports that the tagging queue has no image matching the
// requested filter.
var ErrQueueEmpty = errors.New("no image matches the filter")

// Browse lists stored images under the given filter, optionally narrowed to
// images matching every tag (synonym groups expanded server-side).
func (c *Client) Browse(filter string, tags []string, offset, limit int) (*ResultPage, error) {
	params := QueryParams{
		"filter": filter,
		"tag":    strings.Join(tags, ","),
	}
	if offset > 0 {
		params["offset"] = fmt.Sprintf("%d", offset)
	}
	if limit > 0 {
		params["limit"] = fmt.Sprintf("%d", limit)
	}
	data, err := c.get(buildQuery("/api/browse", params))
	if err != nil {
		return nil, err
	}
	return decode[ResultPage](data)
}

// NextImage asks the tagging queue for the image after current under the
// given filter, wrapping around at the end. An exhausted queue yields
// ErrQueueEmpty with the backend's note attached.
func (c *Client) NextImage(current, filter string) (*QueueImage, error) {
	data, err := c.get(buildQuery("/api/get_next_untagged_image", QueryParams{
		"current": current,
		"filter":  filter,
	}))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success  bool     `json:"success"`
		Message  string   `json:"message"`
		Filename string   `json:"filename"`
		URL      string   `json:"url"`
		Tags     []string `json:"tags"`
		MD5      string   `json:"md5"`
		IsReview bool     `json:"is_review"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !resp.Success {
		if msg := strings.TrimSpace(resp.Message); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrQueueEmpty, msg)
		}
		return nil, ErrQueueEmpty
	}
	return &QueueImage{
		Filename: resp.Filename,
		URL:      resp.URL,
		Tags:     resp.Tags,
		MD5:      resp.MD5,
		IsReview: resp.IsReview,
		Message:  resp.Message,
	}, nil
}

// SaveTags replaces an image's tag set. The backend trims, dedupes and sorts
// the tags, moves the image in or out of the untagged queue, and bumps the
// library counts.
func (c *Client) SaveTags(filename string, tags []string) error {
	data, err := c.post("/api/save_tags", map[string]any{
		"filename": filename,
		"tags":     tags,
	})
	if err != nil {
		return err
	}
	return decodeStatus(data, "save tags")
}

// DeleteImage removes an image; the backend moves the file to its trash bin.
func (c *Client) DeleteImage(filename string) error {
	data, err := c.post("/api/delete_image", map[string]any{
		"filename": filename,
	})
	if err != nil {
		return err
	}
	return decodeStatus(data, "delete image")
}
