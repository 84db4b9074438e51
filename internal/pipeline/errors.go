package pipeline

import "github.com/rotisserie/eris"

// ErrNoPages signals that search produced zero usable pages. It is an
// expected, actionable outcome (try a different subject or query), not a
// generic failure, and maps to 404 at the HTTP surface.
var ErrNoPages = eris.New("no readable pages found via web search")
