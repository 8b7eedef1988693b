package ui

import (
	"github.com/gravitrone/tagdex/internal/api"
	"github.com/gravitrone/tagdex/internal/ui/components"
)

// suggestLimit caps how many candidates a suggestion lookup requests; the
// widget clamps rendering to its own MaxRows anyway.
const suggestLimit = 8

// tagLookup adapts the common-tags endpoint to the autocomplete contract.
// The backend matches the query against main tags and synonyms and returns
// root tags with their synonym groups.
func tagLookup(client *api.Client) components.LookupFunc {
	return func(query string) ([]components.Candidate, error) {
		page, err := client.CommonTags(query, suggestLimit, 0)
		if err != nil {
			return nil, err
		}
		out := make([]components.Candidate, 0, len(page.Tags))
		for _, t := range page.Tags {
			out = append(out, components.Candidate{Tag: t.Tag, Synonyms: t.Synonyms})
		}
		return out, nil
	}
}
