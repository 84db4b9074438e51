package model

// PersonalizationVariant classifies the length/style of an outreach angle.
type PersonalizationVariant string

const (
	VariantOneLiner PersonalizationVariant = "one_liner"
	VariantShort    PersonalizationVariant = "short"
	VariantCustom   PersonalizationVariant = "custom"
)

// Source points at the page a fact or answer was drawn from.
type Source struct {
	URL     string `json:"url,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Fact is a single sourced, named data point about the subject.
type Fact struct {
	Name        string   `json:"name"`
	Value       string   `json:"value"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Source      *Source  `json:"source,omitempty"`
	RetrievedAt string   `json:"retrieved_at,omitempty"`
}

// Personalization is a sales-outreach-ready sentence derived from facts.
type Personalization struct {
	Variant PersonalizationVariant `json:"variant"`
	Text    string                 `json:"text"`
}

// Coaching is an outreach hint, optionally tied to supporting facts by index.
type Coaching struct {
	Hint                string `json:"hint"`
	EvidenceFactIndices []int  `json:"evidence_fact_indices,omitempty"`
}

// SubjectCanonical carries the model's best identification of the subject.
type SubjectCanonical struct {
	CompanyLegalName string `json:"company_legal_name,omitempty"`
	Domain           string `json:"domain,omitempty"`
}

// EnrichmentResponse is the strict envelope for the enrichment flow.
// Facts and Personalization are always non-nil, possibly empty.
type EnrichmentResponse struct {
	SubjectCanonical *SubjectCanonical `json:"subject_canonical,omitempty"`
	Facts            []Fact            `json:"facts"`
	Personalization  []Personalization `json:"personalization"`
	Coaching         []Coaching        `json:"coaching,omitempty"`
	TargetAttributes map[string]any    `json:"target_attributes,omitempty"`
}
