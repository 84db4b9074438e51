package generate

import (
	"fmt"
	"regexp"
	"strings"
)

// category pairs a context-matching pattern with the search hints and query
// templates it unlocks. One table feeds all three generator fallbacks so the
// keyword heuristics cannot drift apart between them.
type category struct {
	pattern *regexp.Regexp
	hints   []string
	queries []string // fmt templates, %s = subject
}

var categories = []category{
	{
		pattern: regexp.MustCompile(`found(ed|ing)|incorporat|launched|started|established`),
		hints:   []string{"founded year", "about us", "press release", "company history"},
	},
	{
		pattern: regexp.MustCompile(`ceo|founder|leadership|executive|president`),
		hints:   []string{"CEO", "founder", "leadership", "executive team", "management"},
		queries: []string{"%s CEO founder", "%s leadership team"},
	},
	{
		pattern: regexp.MustCompile(`product|service|offering|platform|software|launch|announcement|feature`),
		hints:   []string{"product", "service", "platform", "technology", "solution"},
		queries: []string{"%s product launch 2025", "%s new features"},
	},
	{
		pattern: regexp.MustCompile(`employee|staff|team|hiring|jobs`),
		hints:   []string{"employees", "team size", "hiring", "careers", "jobs"},
	},
	{
		pattern: regexp.MustCompile(`funding|investment|venture|capital|raised`),
		hints:   []string{"funding", "investment", "venture capital", "funding round", "raised"},
		queries: []string{"%s funding investment", "%s venture capital"},
	},
	{
		pattern: regexp.MustCompile(`news|announcement|update|recent|latest`),
		hints:   []string{"news", "announcement", "press release", "recent updates", "latest"},
		queries: []string{"%s news 2025", "%s recent updates"},
	},
	{
		pattern: regexp.MustCompile(`culture|values|mission|vision`),
		hints:   []string{"company culture", "values", "mission", "vision"},
	},
	{
		pattern: regexp.MustCompile(`challenge|problem|issue|pain`),
		hints:   []string{"challenges", "problems", "pain points", "issues"},
	},
	{
		pattern: regexp.MustCompile(`yc|y combinator|accelerator|incubator`),
		hints:   []string{"Y Combinator", "YC batch", "accelerator", "startup"},
	},
	{
		pattern: regexp.MustCompile(`podcast|interview|episode|media`),
		hints:   []string{"podcast", "interview", "episode", "spotify", "youtube"},
		queries: []string{"%s podcast interview", "%s podcast appearance 2025"},
	},
}

// subjectHint adds hints triggered by keywords in the subject itself.
type subjectHint struct {
	keywords []string
	hints    []string
}

var subjectHints = []subjectHint{
	{keywords: []string{"ai", "artificial intelligence"}, hints: []string{"artificial intelligence", "AI", "machine learning"}},
	{keywords: []string{"fintech", "payment"}, hints: []string{"fintech", "payments", "financial technology"}},
	{keywords: []string{"saas", "software"}, hints: []string{"SaaS", "software", "cloud", "platform"}},
}

// fallbackHints derives search hints from the question text without any
// network call. Always terminates and never returns an empty slice; when no
// keyword matches, a generic broadening set is used.
func fallbackHints(subject string, questions []string) []string {
	qtext := strings.ToLower(strings.Join(questions, " "))

	var hints []string
	for _, c := range categories {
		if c.pattern.MatchString(qtext) {
			hints = append(hints, c.hints...)
		}
	}

	lowerSubject := strings.ToLower(subject)
	for _, sh := range subjectHints {
		for _, kw := range sh.keywords {
			if strings.Contains(lowerSubject, kw) {
				hints = append(hints, sh.hints...)
				break
			}
		}
	}

	if len(hints) == 0 {
		hints = []string{"company information", "news", "about", "official website"}
	}

	return dedupeCap(hints, maxHints)
}

// fallbackQueries derives search queries from the subject and any
// caller-supplied seed queries.
func fallbackQueries(subject string, seeds []string) []string {
	queries := []string{subject}

	seedText := strings.ToLower(strings.Join(seeds, " "))
	if seedText != "" {
		for _, c := range categories {
			if len(c.queries) == 0 || !c.pattern.MatchString(seedText) {
				continue
			}
			for _, tmpl := range c.queries {
				queries = append(queries, fmt.Sprintf(tmpl, subject))
			}
		}
	}

	queries = append(queries,
		subject+" company information",
		subject+" recent news",
	)

	return dedupeCap(queries, maxFallbackQueries)
}

// fallbackQuestions is the fixed research question set used when question
// generation is unavailable.
func fallbackQuestions() []string {
	return []string{
		"What year was the company founded?",
		"Who is the CEO or founder?",
		"What is their main product or service?",
		"How many employees do they have?",
		"What is their latest funding round?",
		"What are their recent achievements or news?",
		"What is their company culture like?",
		"What challenges are they facing?",
	}
}

// dedupeCap removes duplicates preserving first occurrence and caps length.
func dedupeCap(items []string, max int) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
		if len(out) == max {
			break
		}
	}
	return out
}
