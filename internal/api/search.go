package api

import (
	"fmt"
	"strings"
)

// Search runs a tag search. Include and exclude are literal tags; the
// backend expands each to its full synonym group before matching, requires
// every include group and drops anything matching an exclude group.
func (c *Client) Search(include, exclude []string, offset, limit int) (*ResultPage, error) {
	params := QueryParams{
		"include": strings.Join(include, ","),
		"exclude": strings.Join(exclude, ","),
	}
	if offset > 0 {
		params["offset"] = fmt.Sprintf("%d", offset)
	}
	if limit > 0 {
		params["limit"] = fmt.Sprintf("%d", limit)
	}
	data, err := c.get(buildQuery("/api/search", params))
	if err != nil {
		return nil, err
	}
	return decode[ResultPage](data)
}
