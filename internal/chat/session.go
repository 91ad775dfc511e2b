// Package chat implements the book recommendation dialogue as a finite-state machine.
package chat

import (
	"errors"

	"bookchat/internal/domain"
)

// Step is a dialogue state.
type Step string

const (
	StepChoosePreference    Step = "choose_preference"
	StepFilterGenre         Step = "filter_genre"
	StepFilterAuthor        Step = "filter_author"
	StepSelectBook          Step = "select_book"
	StepKeywords            Step = "keywords"
	StepMoreRecommendations Step = "more_recommendations"
	StepDone                Step = "done"
)

// Preference is how the user wants to narrow the catalog.
type Preference string

const (
	PreferenceNone   Preference = ""
	PreferenceGenre  Preference = "genre"
	PreferenceAuthor Preference = "author"
)

const (
	// MaxCandidates bounds the candidate list; the entry past PageSize*2 only
	// signals that more than ten books matched and is never shown.
	MaxCandidates = 11
	PageSize      = 5
)

// Errors attached to replies. None of them end the conversation.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmptyResult    = errors.New("no matching books")
	ErrRecommendation = errors.New("recommendation failed")
)

// Selection is what the recommendations were computed from.
type Selection = domain.Selection

// Session is the per-conversation state. It is a value; transitions return a new one.
type Session struct {
	Step       Step                    `json:"step"`
	Preference Preference              `json:"preference,omitempty"`
	Selection  Selection               `json:"selection"`
	Candidates []domain.CandidateEntry `json:"candidates,omitempty"`
}

// NewSession returns a session at the start of the flow.
func NewSession() Session {
	return Session{Step: StepChoosePreference}
}

// Reset clears everything and restarts the flow.
func (s *Session) Reset() {
	*s = NewSession()
}

// Page returns candidate window n (0 or 1). The eleventh entry is never part of a page.
func (s Session) Page(n int) []domain.CandidateEntry {
	lo, hi := n*PageSize, (n+1)*PageSize
	if lo >= len(s.Candidates) || n < 0 || n > 1 {
		return nil
	}
	if hi > len(s.Candidates) {
		hi = len(s.Candidates)
	}
	return s.Candidates[lo:hi]
}

// Candidate finds a listed entry by book id.
func (s Session) Candidate(id int) (domain.CandidateEntry, bool) {
	for _, c := range s.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return domain.CandidateEntry{}, false
}

// Reply is the outcome of one turn.
type Reply struct {
	Text string
	// Err is nil on progress, otherwise one of the package error values.
	Err  error
	From Step
	To   Step
}
