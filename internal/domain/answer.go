package domain

// Source is a retrieved passage as shown to the caller.
type Source struct {
	Content        string
	Metadata       Metadata
	RelevanceScore float64
}

// Answer is the combined output of one query. Built fresh per request, never persisted.
type Answer struct {
	Answer     string
	Sources    []Source
	Confidence float64
	Degraded   bool // synthesis failed and Answer carries the apology text
}
