package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnrichment_Full(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"subject_canonical": map[string]any{
			"company_legal_name": "Acme Inc.",
			"domain":             "acme.com",
		},
		"facts": []any{
			map[string]any{
				"name":       "Founded",
				"value":      "2019",
				"confidence": 0.9,
				"source":     map[string]any{"url": "https://acme.com/about"},
			},
			map[string]any{
				"name":  "Headquarters",
				"value": "Austin, TX",
			},
		},
		"personalization": []any{
			map[string]any{"variant": "one_liner", "text": "Congrats on the Series A."},
			map[string]any{"variant": "short", "text": "Saw the hiring push on your careers page."},
		},
		"coaching": []any{
			map[string]any{
				"hint":                  "Lead with the funding news.",
				"evidence_fact_indices": []any{float64(0)},
			},
		},
		"target_attributes": map[string]any{"founding_year": "2019"},
	}

	resp, err := DecodeEnrichment(raw)
	require.NoError(t, err)

	require.NotNil(t, resp.SubjectCanonical)
	assert.Equal(t, "Acme Inc.", resp.SubjectCanonical.CompanyLegalName)
	assert.Equal(t, "acme.com", resp.SubjectCanonical.Domain)

	require.Len(t, resp.Facts, 2)
	assert.Equal(t, "Founded", resp.Facts[0].Name)
	require.NotNil(t, resp.Facts[0].Confidence)
	assert.InDelta(t, 0.9, *resp.Facts[0].Confidence, 0.001)
	require.NotNil(t, resp.Facts[0].Source)
	assert.Equal(t, "https://acme.com/about", resp.Facts[0].Source.URL)
	assert.Nil(t, resp.Facts[1].Confidence)
	assert.Nil(t, resp.Facts[1].Source)

	require.Len(t, resp.Personalization, 2)
	assert.Equal(t, VariantOneLiner, resp.Personalization[0].Variant)
	assert.Equal(t, VariantShort, resp.Personalization[1].Variant)

	require.Len(t, resp.Coaching, 1)
	assert.Equal(t, []int{0}, resp.Coaching[0].EvidenceFactIndices)

	assert.Equal(t, map[string]any{"founding_year": "2019"}, resp.TargetAttributes)
}

func TestDecodeEnrichment_NotAnObject(t *testing.T) {
	t.Parallel()

	_, err := DecodeEnrichment([]any{"not", "an", "object"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}

func TestDecodeEnrichment_ArraysAlwaysNonNil(t *testing.T) {
	t.Parallel()

	resp, err := DecodeEnrichment(map[string]any{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Facts)
	assert.NotNil(t, resp.Personalization)
	assert.Empty(t, resp.Facts)
	assert.Empty(t, resp.Personalization)
	assert.Nil(t, resp.SubjectCanonical)
}

func TestDecodeEnrichment_UnknownVariantBecomesCustom(t *testing.T) {
	t.Parallel()

	resp, err := DecodeEnrichment(map[string]any{
		"personalization": []any{
			map[string]any{"variant": "paragraph", "text": "Some longer angle."},
			map[string]any{"variant": "", "text": "No variant at all."},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Personalization, 2)
	assert.Equal(t, VariantCustom, resp.Personalization[0].Variant)
	assert.Equal(t, VariantCustom, resp.Personalization[1].Variant)
}

func TestDecodeEnrichment_SkipsEmptyItems(t *testing.T) {
	t.Parallel()

	resp, err := DecodeEnrichment(map[string]any{
		"facts": []any{
			map[string]any{"name": "", "value": ""},
			"not an object",
			map[string]any{"name": "Kept", "value": "yes"},
		},
		"personalization": []any{
			map[string]any{"variant": "short", "text": ""},
		},
		"coaching": []any{
			map[string]any{"hint": ""},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Facts, 1)
	assert.Equal(t, "Kept", resp.Facts[0].Name)
	assert.Empty(t, resp.Personalization)
	assert.Empty(t, resp.Coaching)
}

func TestDecodeEnrichment_ConfidenceClamped(t *testing.T) {
	t.Parallel()

	resp, err := DecodeEnrichment(map[string]any{
		"facts": []any{
			map[string]any{"name": "High", "value": "v", "confidence": 1.7},
			map[string]any{"name": "Low", "value": "v", "confidence": -0.3},
			map[string]any{"name": "NonNumeric", "value": "v", "confidence": "high"},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Facts, 3)
	assert.Equal(t, 1.0, *resp.Facts[0].Confidence)
	assert.Equal(t, 0.0, *resp.Facts[1].Confidence)
	assert.Nil(t, resp.Facts[2].Confidence)
}

func TestDecodeEnrichment_EvidenceIndicesBoundsChecked(t *testing.T) {
	t.Parallel()

	resp, err := DecodeEnrichment(map[string]any{
		"facts": []any{
			map[string]any{"name": "Only", "value": "fact"},
		},
		"coaching": []any{
			map[string]any{
				"hint":                  "Use the fact.",
				"evidence_fact_indices": []any{float64(0), float64(1), float64(-1), "zero"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Coaching, 1)
	assert.Equal(t, []int{0}, resp.Coaching[0].EvidenceFactIndices)
}

func TestDecodeEnrichment_NonStringFactValueFlattened(t *testing.T) {
	t.Parallel()

	resp, err := DecodeEnrichment(map[string]any{
		"facts": []any{
			map[string]any{"name": "Employees", "value": float64(42)},
			map[string]any{"name": "Topics", "value": []any{"ai", "sales"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Facts, 2)
	assert.Equal(t, "42", resp.Facts[0].Value)
	assert.Equal(t, `["ai","sales"]`, resp.Facts[1].Value)
}

func TestDecodeMagic_Full(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"subject": map[string]any{"name": "Acme", "type": "company"},
		"variables": []any{
			map[string]any{
				"question":   "What year was the company founded?",
				"name":       "founded_year",
				"value":      float64(2019),
				"confidence": 0.8,
				"source":     map[string]any{"url": "https://acme.com", "excerpt": "Founded in 2019"},
				"evidence":   "Founded in 2019 by two engineers.",
				"normalized": map[string]any{"year": float64(2019)},
			},
			map[string]any{
				"question":   "What is their latest funding round?",
				"name":       "recent_funding",
				"value":      nil,
				"confidence": float64(0),
			},
		},
	}

	resp, err := DecodeMagic(raw)
	require.NoError(t, err)

	require.NotNil(t, resp.Subject)
	assert.Equal(t, "Acme", resp.Subject.Name)
	assert.Equal(t, SubjectCompany, resp.Subject.Type)

	require.Len(t, resp.Variables, 2)
	v := resp.Variables[0]
	assert.Equal(t, "founded_year", v.Name)
	assert.Equal(t, float64(2019), v.Value)
	require.NotNil(t, v.Source)
	assert.Equal(t, "Founded in 2019", v.Source.Excerpt)
	assert.Equal(t, map[string]any{"year": float64(2019)}, v.Normalized)

	unanswered := resp.Variables[1]
	assert.Nil(t, unanswered.Value)
	require.NotNil(t, unanswered.Confidence)
	assert.Equal(t, 0.0, *unanswered.Confidence)
}

func TestDecodeMagic_NotAnObject(t *testing.T) {
	t.Parallel()

	_, err := DecodeMagic("just a string")
	require.Error(t, err)
}

func TestDecodeMagic_InvalidSubjectTypeDropped(t *testing.T) {
	t.Parallel()

	resp, err := DecodeMagic(map[string]any{
		"subject": map[string]any{"name": "Jane Doe", "type": "robot"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Subject)
	assert.Equal(t, "Jane Doe", resp.Subject.Name)
	assert.Equal(t, SubjectType(""), resp.Subject.Type)
}

func TestDecodeMagic_NonScalarValueFlattened(t *testing.T) {
	t.Parallel()

	resp, err := DecodeMagic(map[string]any{
		"variables": []any{
			map[string]any{
				"question": "Who are the executives?",
				"name":     "leadership_team",
				"value":    map[string]any{"ceo": "Jane"},
			},
			map[string]any{
				"question": "What are the products?",
				"name":     "main_products",
				"value":    []any{"Widget", "Gadget"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Variables, 2)
	assert.Equal(t, `{"ceo":"Jane"}`, resp.Variables[0].Value)
	assert.Equal(t, `["Widget","Gadget"]`, resp.Variables[1].Value)
}

func TestDecodeMagic_VariablesAlwaysNonNil(t *testing.T) {
	t.Parallel()

	resp, err := DecodeMagic(map[string]any{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Variables)
	assert.Empty(t, resp.Variables)
	assert.Nil(t, resp.Subject)
}

func TestDecodeMagic_SkipsUnidentifiedVariables(t *testing.T) {
	t.Parallel()

	resp, err := DecodeMagic(map[string]any{
		"variables": []any{
			map[string]any{"value": "orphaned"},
			map[string]any{"question": "Kept?", "value": true},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Variables, 1)
	assert.Equal(t, "Kept?", resp.Variables[0].Question)
}
