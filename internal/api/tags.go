package api

import "fmt"

// CommonTags lists root tags of the library ordered by aggregated use count.
// Query filters server-side against the main tag and every synonym; synonym
// members themselves never appear as rows.
func (c *Client) CommonTags(query string, limit, offset int) (*TagPage, error) {
	params := QueryParams{"query": query}
	if limit > 0 {
		params["limit"] = fmt.Sprintf("%d", limit)
	}
	if offset > 0 {
		params["offset"] = fmt.Sprintf("%d", offset)
	}
	data, err := c.get(buildQuery("/api/get_common_tags", params))
	if err != nil {
		return nil, err
	}
	return decode[TagPage](data)
}

// AddCommonTag registers a tag in the library (or bumps its count).
func (c *Client) AddCommonTag(tag string) error {
	data, err := c.post("/api/add_common_tag", map[string]any{"tag": tag})
	if err != nil {
		return err
	}
	return decodeStatus(data, "add tag")
}

// DeleteCommonTag removes a tag from the library. Deleting a group's main
// tag disbands the group; deleting a synonym detaches it.
func (c *Client) DeleteCommonTag(tag string) error {
	data, err := c.post("/api/delete_common_tag", map[string]any{"tag": tag})
	if err != nil {
		return err
	}
	return decodeStatus(data, "delete tag")
}

// UpdateSynonyms rebuilds the synonym group rooted at mainTag. Members are
// pulled out of any group they belonged to before; an empty member list
// leaves mainTag a standalone tag.
func (c *Client) UpdateSynonyms(mainTag string, synonyms []string) error {
	data, err := c.post("/api/update_synonyms", map[string]any{
		"main_tag": mainTag,
		"synonyms": synonyms,
	})
	if err != nil {
		return err
	}
	return decodeStatus(data, "update synonyms")
}
