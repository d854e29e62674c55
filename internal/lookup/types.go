package lookup

// Result is one book candidate from the lookup service.
type Result struct {
	Key         string   `json:"key"`         // stable work key, e.g. "works-OL45883W"
	Title       string   `json:"title"`       // may be empty
	Description string   `json:"description"` // first sentence when present, else empty
	Subjects    []string `json:"subjects"`    // tag list, may be empty
	CoverURL    string   `json:"cover_url"`   // may be empty
}

// searchResponse is the raw lookup API response.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

// searchDoc is a single work document from the search endpoint.
type searchDoc struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	FirstSentence []string `json:"first_sentence,omitempty"`
	Subject       []string `json:"subject,omitempty"`
	AuthorName    []string `json:"author_name,omitempty"`
	CoverID       int64    `json:"cover_i,omitempty"`
}
