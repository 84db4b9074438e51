package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// DecodeEnrichment validates and normalizes a decoded JSON value into an
// EnrichmentResponse. Fields are checked and coerced individually rather
// than cast wholesale: confidences are clamped to [0,1], unknown
// personalization variants become "custom", and the mandatory arrays are
// always non-nil. target_attributes is passed through opaquely.
func DecodeEnrichment(raw any) (*EnrichmentResponse, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.New("model: enrichment response is not a JSON object")
	}

	resp := &EnrichmentResponse{
		Facts:           []Fact{},
		Personalization: []Personalization{},
	}

	if sc, ok := obj["subject_canonical"].(map[string]any); ok {
		resp.SubjectCanonical = &SubjectCanonical{
			CompanyLegalName: asString(sc["company_legal_name"]),
			Domain:           asString(sc["domain"]),
		}
	}

	for _, item := range asSlice(obj["facts"]) {
		f, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fact := Fact{
			Name:        asString(f["name"]),
			Value:       scalarString(f["value"]),
			Confidence:  asConfidence(f["confidence"]),
			Source:      decodeSource(f["source"]),
			RetrievedAt: asString(f["retrieved_at"]),
		}
		if fact.Name == "" && fact.Value == "" {
			continue
		}
		resp.Facts = append(resp.Facts, fact)
	}

	for _, item := range asSlice(obj["personalization"]) {
		p, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text := asString(p["text"])
		if text == "" {
			continue
		}
		variant := PersonalizationVariant(asString(p["variant"]))
		switch variant {
		case VariantOneLiner, VariantShort, VariantCustom:
		default:
			variant = VariantCustom
		}
		resp.Personalization = append(resp.Personalization, Personalization{
			Variant: variant,
			Text:    text,
		})
	}

	for _, item := range asSlice(obj["coaching"]) {
		c, ok := item.(map[string]any)
		if !ok {
			continue
		}
		hint := asString(c["hint"])
		if hint == "" {
			continue
		}
		coaching := Coaching{Hint: hint}
		for _, idx := range asSlice(c["evidence_fact_indices"]) {
			if n, ok := asFloat(idx); ok && n >= 0 && int(n) < len(resp.Facts) {
				coaching.EvidenceFactIndices = append(coaching.EvidenceFactIndices, int(n))
			}
		}
		resp.Coaching = append(resp.Coaching, coaching)
	}

	if ta, ok := obj["target_attributes"].(map[string]any); ok && len(ta) > 0 {
		resp.TargetAttributes = ta
	}

	return resp, nil
}

// DecodeMagic validates and normalizes a decoded JSON value into a
// MagicVariablesResponse. Non-scalar variable values are flattened to
// compact JSON strings; normalized maps pass through opaquely.
func DecodeMagic(raw any) (*MagicVariablesResponse, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.New("model: magic response is not a JSON object")
	}

	resp := &MagicVariablesResponse{
		Variables: []MagicVariableAnswer{},
	}

	if s, ok := obj["subject"].(map[string]any); ok {
		subj := &MagicSubject{Name: asString(s["name"])}
		switch t := SubjectType(asString(s["type"])); t {
		case SubjectCompany, SubjectPerson, SubjectUnknown:
			subj.Type = t
		}
		if subj.Name != "" || subj.Type != "" {
			resp.Subject = subj
		}
	}

	for _, item := range asSlice(obj["variables"]) {
		v, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ans := MagicVariableAnswer{
			Question:   asString(v["question"]),
			Name:       asString(v["name"]),
			Value:      scalarValue(v["value"]),
			Unit:       asString(v["unit"]),
			Confidence: asConfidence(v["confidence"]),
			Source:     decodeSource(v["source"]),
			Evidence:   asString(v["evidence"]),
		}
		if norm, ok := v["normalized"].(map[string]any); ok && len(norm) > 0 {
			ans.Normalized = norm
		}
		if ans.Question == "" && ans.Name == "" {
			continue
		}
		resp.Variables = append(resp.Variables, ans)
	}

	return resp, nil
}

func decodeSource(raw any) *Source {
	s, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	src := &Source{
		URL:     asString(s["url"]),
		Excerpt: asString(s["excerpt"]),
	}
	if src.URL == "" && src.Excerpt == "" {
		return nil
	}
	return src
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// asConfidence coerces a confidence value to a clamped [0,1] pointer, or nil
// when absent or non-numeric.
func asConfidence(v any) *float64 {
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return &f
}

// scalarValue keeps JSON scalars as-is and flattens objects/arrays into a
// compact JSON string so callers always see string|number|bool|nil.
func scalarValue(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	}
}

// scalarString renders any JSON value as a display string; objects and
// arrays become compact JSON.
func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
