package model

// MaxPageTextLen bounds page text at search ingestion so the downstream
// prompt size stays predictable regardless of what the provider returns.
const MaxPageTextLen = 6000

// Page is a normalized search result: a URL and a bounded slice of the
// page's rendered content.
type Page struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// NewPage builds a Page, truncating text to MaxPageTextLen.
func NewPage(url, text string) Page {
	if len(text) > MaxPageTextLen {
		text = text[:MaxPageTextLen]
	}
	return Page{URL: url, Text: text}
}
