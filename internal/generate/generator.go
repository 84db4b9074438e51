// Package generate produces short string lists (search queries, research
// questions, search hints) with a model call, degrading to deterministic
// keyword heuristics whenever the model is unavailable or misbehaves.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-enrich/pkg/anthropic"
)

// Result-length caps per generator instance.
const (
	maxQueries         = 5
	maxFallbackQueries = 4
	maxQuestions       = 8
	maxHints           = 6
)

const queryGenPrompt = `You are a web search optimization expert that generates targeted search queries for research.

Given a subject and optional search queries, generate 3-5 specific web search queries that will find the most relevant information.

IMPORTANT: The current year is 2025. When searching for recent information, use 2025 and 2024 as the relevant time periods.

Rules:
- Generate queries that are likely to return relevant web pages
- Include the subject name in each query
- Make queries specific enough to find targeted information
- Use natural language that people would actually search for
- Include variations and synonyms
- Focus on finding recent, authoritative sources (2024-2025)
- Return ONLY a JSON array of strings, no other text`

const questionGenPrompt = `You are a research assistant that generates intelligent questions for company/person analysis.

Given a subject (company name, person name, or domain), generate 5-7 specific, researchable questions that would provide valuable insights for sales and business development.

Question categories to consider:
1. Company basics (founding year, size, location, industry)
2. Leadership and team (CEO, founders, key executives)
3. Business model and products (main offerings, revenue model)
4. Recent developments (news, funding, partnerships, hiring)
5. Market position (competitors, growth stage, funding status)
6. Culture and values (mission, values, company culture)
7. Challenges and opportunities (pain points, growth areas)

Rules:
- Generate questions that can be answered from web search
- Make questions specific and actionable
- Avoid questions that require private/internal information
- Focus on information useful for sales outreach
- Return ONLY a JSON array of strings, no other text`

const hintGenPrompt = `You are a search optimization assistant that generates relevant search keywords and hints based on research questions.

Given a subject and a list of questions, generate 3-4 specific search keywords/hints that would help find the most relevant information.

Rules:
- Generate keywords that are likely to appear in relevant web pages
- Include industry-specific terms, company types, and common phrases
- Focus on terms that would appear in official sources, news, and documentation
- Make keywords specific enough to find relevant content but broad enough to catch variations
- Return ONLY a JSON array of strings, no other text`

// Generator calls the model for dynamic list generation. A Generator with a
// nil client or empty model skips straight to the heuristic fallbacks.
type Generator struct {
	AI    anthropic.Client
	Model string
}

// SearchQueries generates web search queries for the subject, using any
// caller-supplied seed queries as context. Never fails and never returns an
// empty list.
func (g *Generator) SearchQueries(ctx context.Context, subject string, seeds []string) []string {
	seedBlock := "No specific search queries provided - generate general research queries."
	if len(seeds) > 0 {
		seedBlock = "Search Queries: " + jsonList(seeds)
	}
	user := fmt.Sprintf("Subject: %s\n%s\n\nGenerate 3-5 specific web search queries that will find the most relevant information about this subject.", subject, seedBlock)

	list, err := g.stringList(ctx, queryGenPrompt, user, 800, 0.3)
	if err != nil {
		zap.L().Warn("generate: search query generation failed, using fallback",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fallbackQueries(subject, seeds)
	}
	return dedupeCap(list, maxQueries)
}

// Questions generates research questions about the subject. Never fails and
// never returns an empty list.
func (g *Generator) Questions(ctx context.Context, subject, contextText string) []string {
	user := fmt.Sprintf("Subject: %s\n", subject)
	if contextText != "" {
		user += "Context: " + contextText + "\n"
	}
	user += "\nGenerate 6-8 specific, researchable questions about this subject that would be valuable for sales and business development."

	list, err := g.stringList(ctx, questionGenPrompt, user, 1000, 0.3)
	if err != nil {
		zap.L().Warn("generate: question generation failed, using fallback",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fallbackQuestions()
	}
	return dedupeCap(list, maxQuestions)
}

// Hints generates short search keywords from the research questions. Never
// fails and never returns an empty list.
func (g *Generator) Hints(ctx context.Context, subject string, questions []string) []string {
	user := fmt.Sprintf("Subject: %s\nQuestions: %s\n\nGenerate 3-4 specific search keywords/hints that would help find relevant information for these questions.",
		subject, jsonList(questions))

	list, err := g.stringList(ctx, hintGenPrompt, user, 500, 0.2)
	if err != nil {
		zap.L().Warn("generate: hint generation failed, using fallback",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fallbackHints(subject, questions)
	}
	return dedupeCap(list, maxHints)
}

// stringList invokes the model and parses its output as a JSON array of
// strings: first a bracketed span, then the whole response.
func (g *Generator) stringList(ctx context.Context, system, user string, maxTokens int64, temperature float64) ([]string, error) {
	if g.AI == nil || g.Model == "" {
		return nil, eris.New("generate: model client not configured")
	}

	resp, err := g.AI.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.Model,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		System:      anthropic.BuildCachedSystemBlocks(system),
		Messages: []anthropic.Message{
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "generate: create message")
	}
	resp.Usage.LogCost(g.Model, "generate")

	text := responseText(resp)
	if text == "" {
		return nil, eris.New("generate: no text in model response")
	}

	return parseStringList(text)
}

// parseStringList extracts a JSON array of strings from model output.
func parseStringList(text string) ([]string, error) {
	first := strings.IndexByte(text, '[')
	last := strings.LastIndexByte(text, ']')
	if first >= 0 && last > first {
		if list, ok := stringSlice(text[first : last+1]); ok {
			return list, nil
		}
	}

	if list, ok := stringSlice(text); ok {
		return list, nil
	}

	return nil, eris.New("generate: response is not a JSON array of strings")
}

func stringSlice(s string) ([]string, bool) {
	var raw []any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &raw); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, str)
	}
	return out, true
}

// responseText concatenates all text content blocks from a message response.
func responseText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

func jsonList(items []string) string {
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
