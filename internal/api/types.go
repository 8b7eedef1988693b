package api

// --- Images ---

// Image is one stored picture with its tag set as returned by search/browse.
type Image struct {
	Filename string   `json:"filename"`
	Tags     []string `json:"tags"`
	URL      string   `json:"url"`
	MD5      string   `json:"md5"`
	Score    float64  `json:"score,omitempty"`
}

// ResultPage is one page of search or browse results.
type ResultPage struct {
	Results []Image `json:"results"`
	Total   int     `json:"total"`
}

// QueueImage is the image the tagging queue hands out next. IsReview is set
// when the queue cycles already-tagged images (all/tagged filters); Message
// then carries the backend's position note ("all View: 3/10").
type QueueImage struct {
	Filename string   `json:"filename"`
	URL      string   `json:"url"`
	Tags     []string `json:"tags"`
	MD5      string   `json:"md5"`
	IsReview bool     `json:"is_review"`
	Message  string   `json:"message"`
}

// UploadResult reports the outcome of an upload round trip. The backend
// dedupes by MD5: Exists means the bytes were already stored and Tags holds
// the existing image's tags for editing.
type UploadResult struct {
	Exists   bool     `json:"exists"`
	Filename string   `json:"filename"`
	Tags     []string `json:"tags"`
	URL      string   `json:"url"`
	MD5      string   `json:"md5"`
	Message  string   `json:"message"`
}

// --- Tag library ---

// CommonTag is one root tag of the library with its aggregated use count and
// synonym group members.
type CommonTag struct {
	Tag      string   `json:"tag"`
	Count    int      `json:"count"`
	Synonyms []string `json:"synonyms"`
}

// TagPage is one page of the common-tag listing.
type TagPage struct {
	Tags  []CommonTag `json:"tags"`
	Total int         `json:"total"`
}

// --- Transfer ---

// ImageRecord is the stored per-image state inside a library snapshot.
type ImageRecord struct {
	Tags []string `json:"tags"`
	MD5  string   `json:"md5"`
}

// LibrarySnapshot is the full library dump used by export/import.
type LibrarySnapshot struct {
	Images     map[string]ImageRecord `json:"images"`
	CommonTags map[string]int         `json:"common_tags"`
	Synonyms   map[string][]string    `json:"tag_synonyms"`
}

// ImportResult is the backend's verdict on an imported snapshot.
type ImportResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusResult is the bare {"success": ...} body most mutation endpoints
// answer with.
type statusResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Query ---

// QueryParams is a map of URL query parameters.
type QueryParams map[string]string
