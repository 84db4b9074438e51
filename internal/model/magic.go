package model

// SubjectType classifies what kind of entity a magic-variables subject is.
type SubjectType string

const (
	SubjectCompany SubjectType = "company"
	SubjectPerson  SubjectType = "person"
	SubjectUnknown SubjectType = "unknown"
)

// MagicSubject identifies the researched entity.
type MagicSubject struct {
	Name string      `json:"name"`
	Type SubjectType `json:"type,omitempty"`
}

// MagicVariableAnswer is one extracted question/answer pair. Value is a JSON
// scalar: string, number, bool, or nil when the pages did not answer the
// question.
type MagicVariableAnswer struct {
	Question   string         `json:"question"`
	Name       string         `json:"name,omitempty"`
	Value      any            `json:"value"`
	Unit       string         `json:"unit,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Source     *Source        `json:"source,omitempty"`
	Evidence   string         `json:"evidence,omitempty"`
	Normalized map[string]any `json:"normalized,omitempty"`
}

// MagicVariablesResponse is the strict envelope for the magic-variables flow.
type MagicVariablesResponse struct {
	Subject   *MagicSubject         `json:"subject"`
	Variables []MagicVariableAnswer `json:"variables"`
}

// UnifiedResult joins both extraction flows over one shared page corpus.
// Enrichment and Magic are independently nil when their flow failed.
type UnifiedResult struct {
	Subject       string                  `json:"subject"`
	IsDomain      bool                    `json:"isDomain"`
	Enrichment    *EnrichmentResponse     `json:"enrichment"`
	Magic         *MagicVariablesResponse `json:"magic"`
	Sources       int                     `json:"sources"`
	SearchQueries []string                `json:"searchQueries"`
}
