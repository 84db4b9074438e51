package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/sells-group/prospect-enrich/internal/model"
)

// promptPageTextLimit bounds page text inside prompts. Tighter than the
// search-time cap so multi-page prompts stay within the model's budget.
const promptPageTextLimit = 4000

const enrichSystemPrompt = `You are an enrichment extractor.
Return STRICT JSON ONLY that matches the 'EnrichmentResponse' shape.

CRITICAL: Your response must be valid JSON. Do not include any text before or after the JSON.
Do not use markdown code blocks. Do not include explanations or commentary.

Rules:
- Only include facts supported by the provided page texts or quoted snippets.
- Each fact MUST include a source.url from the pages list when possible.
- Prefer items from 2024-2025 for personalization hooks (current year is 2025).
- Avoid speculation or PII. If uncertain, omit the fact.
- Output ONLY the JSON object, nothing else.

PERSONALIZATION REQUIREMENTS:
- MUST generate 2-3 personalization angles minimum
- Use different variants: "one_liner", "short", "custom"
- Base angles on recent news, product launches, hiring, funding, partnerships, or company changes
- Make angles specific and actionable for sales outreach
- Each angle should reference specific facts from the source material

TARGET ATTRIBUTES REQUIREMENTS:
- MUST be based on the user's search query/ask parameter
- MUST be consistent with the facts you extract
- Analyze the user's query to understand what they're looking for:
  * Podcast queries (podcast, interview, appearance) → podcast-related attributes
  * Media queries (media, press, coverage) → media-related attributes
  * Company queries (founding, funding, employees) → company-related attributes
  * Product queries (product, service, offering) → product-related attributes
- If user asks about "podcast" and you find "Tech Finance podcast", include "recent_podcast": "Tech Finance"
- If user asks about "founding year" and you find "Founded: 2023", include "founding_year": "2023"
- If user asks about "YC company" and you find "Y Combinator: Yes", include "yc_company": true
- Only include attributes that directly relate to the user's search query
- Use the actual data from facts, don't make assumptions

EMPLOYEE COUNT RANGES:
- 1-10: "1-10 employees"
- 11-50: "11-50 employees"
- 51-200: "51-200 employees"
- 201-500: "201-500 employees"
- 500+: "500+ employees"

FUNDING STAGES:
- Pre-seed: "Pre-seed"
- Seed: "Seed"
- Series A: "Series A"
- Series B: "Series B"
- Series C+: "Series C+"
- Public: "Public"

QUERY-BASED TARGET ATTRIBUTES:
- Podcast queries → "recent_podcast": "Podcast Name", "podcast_date": "Date", "podcast_topics": ["topic1", "topic2"]
- Media appearance queries → "recent_media": "Media Type", "media_date": "Date", "media_topics": ["topic1", "topic2"]
- Interview queries → "recent_interview": "Interview Type", "interview_date": "Date", "interview_topics": ["topic1", "topic2"]
- Speaking queries → "recent_speaking": "Event Name", "speaking_date": "Date", "speaking_topics": ["topic1", "topic2"]
- Founding year queries → "founding_year": "2023"
- YC/accelerator queries → "yc_company": true/false, "accelerator": "Y Combinator"
- Employee count queries → "employee_count_range": "11-50 employees"
- Funding queries → "funding_stage": "Series A", "total_funding": "$25M"
- Product queries → "main_product": "Product Name", "industry": "Industry"
- Location queries → "headquarters": "City, State", "country": "Country"
- Revenue queries → "revenue_range": "$1M-$10M", "arr": "$5M"
- Customer queries → "customer_count": "250+", "target_market": "B2B SaaS"

Example format:
If user asks: "Has he been on a podcast this year? What is the name of the last podcast he went on? What did he talk about?"

{
  "subject_canonical": {"domain": "example.com"},
  "facts": [
    {"name": "Recent Podcast Appearance", "value": "Tech Finance podcast with Sasha Orloff", "source": {"url": "https://example.com"}},
    {"name": "Podcast Date", "value": "April 30, 2025", "source": {"url": "https://example.com"}},
    {"name": "Podcast Topics", "value": "AI employees, future of work, sales automation", "source": {"url": "https://example.com"}}
  ],
  "personalization": [
    {"variant": "one_liner", "text": "Personalization text 1"},
    {"variant": "short", "text": "Personalization text 2"},
    {"variant": "custom", "text": "Personalization text 3"}
  ],
  "coaching": [{"hint": "Coaching hint"}],
  "target_attributes": {
    "recent_podcast": "Tech Finance",
    "podcast_date": "April 30, 2025",
    "podcast_topics": ["AI employees", "future of work", "sales automation"]
  }
}`

const magicSystemPrompt = `You are a precise extraction system that returns STRICT JSON ONLY.
Your task is to answer user-provided questions about a subject (company or person) by using ONLY the provided web page texts.
- Do not fabricate. If a question cannot be answered from the pages, set value to null and confidence to 0.
- Include a source.url for each answered variable when possible, and include a short quoted excerpt when available.
- Prefer authoritative sources (official site, blog, press releases, reputable profiles).
- Prefer recent evidence for time-sensitive questions (e.g., "this year" refers to 2025).
- Output JSON that matches the 'MagicVariablesResponse' shape EXACTLY.
- No markdown, no prose, no extra keys.
- NEVER return objects or arrays as values - always convert to readable strings.
- If you find multiple items (like executives), format as a readable string like "John Smith (CEO), Jane Doe (CTO)".
- Only return data that is complete and meaningful - avoid partial or unclear information.

NAME GENERATION GUIDELINES:
- ALWAYS provide a meaningful, descriptive name for each variable
- Use snake_case format for names
- Make names specific and clear about what information they contain
- Examples of good names:
  * "current_role" for job title/position
  * "current_company" for company affiliation
  * "founded_year" for founding year
  * "is_yc_company" for Y Combinator participation
  * "last_podcast_name" for podcast appearance
  * "last_podcast_topic" for podcast discussion topics
  * "areas_of_expertise" for skills/specialization
  * "notable_projects" for key initiatives
  * "published_works" for articles/books
  * "professional_networks" for associations
  * "recent_funding" for latest funding round
  * "company_size" for employee count
  * "headquarters_location" for company location
  * "main_products" for key products/services
  * "target_market" for customer base
  * "revenue_figures" for financial metrics
  * "key_partnerships" for business relationships
  * "recent_news" for latest developments
  * "leadership_team" for management structure
  * "company_culture" for work environment
  * "growth_stage" for business maturity

Return ONLY valid JSON.`

// promptPages bounds page text for prompt inclusion and serializes the
// corpus as pretty JSON.
func promptPages(pages []model.Page) string {
	limited := make([]model.Page, len(pages))
	for i, p := range pages {
		text := p.Text
		if len(text) > promptPageTextLimit {
			text = text[:promptPageTextLimit]
		}
		limited[i] = model.Page{URL: p.URL, Text: text}
	}
	b, err := json.MarshalIndent(limited, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func enrichUserPrompt(subject, ask string, pages []model.Page) string {
	return fmt.Sprintf(`Domain: %s
User Ask: %s

PAGES:
%s

You must return a valid JSON object of type EnrichmentResponse with fields:
- subject_canonical (optional)
- facts (array of {name, value, confidence?, source:{url?,excerpt?}, retrieved_at?})
- personalization (array of {variant, text}) - REQUIRED: Generate 2-3 angles minimum
- coaching (optional array of {hint, evidence_fact_indices?})
- target_attributes (optional object)

PERSONALIZATION GUIDANCE:
Look for these types of angles in the source material:
1. Recent news, announcements, or press releases
2. New product launches, features, or updates
3. Hiring announcements, team growth, or job postings
4. Funding rounds, acquisitions, or partnerships
5. Industry trends, challenges, or opportunities they're addressing
6. Company culture, values, or mission statements
7. Customer success stories or case studies
8. Awards, recognition, or achievements

Each personalization angle should be:
- Specific and factual (based on the source material)
- Actionable for sales outreach
- Different from the others (varied approaches)
- Recent or timely when possible`, subject, ask, promptPages(pages))
}

func magicUserPrompt(subject string, questions []string, pages []model.Page) string {
	qs, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		qs = []byte("[]")
	}
	return fmt.Sprintf(`SUBJECT: %s

QUESTIONS:
%s

PAGES:
%s

Output a JSON object of type MagicVariablesResponse with fields:
- subject: { name, type? }
- variables: Array<{ question, name, value, unit?, confidence?, source:{url?,excerpt?}, evidence?, normalized? }>

IMPORTANT: Each variable MUST have a meaningful name that describes what the information represents. Never use "(n/a)" or leave the name field empty.`, subject, string(qs), promptPages(pages))
}
