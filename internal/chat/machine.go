package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"bookchat/internal/domain"
)

// Prompts shown to the user.
const (
	Greeting            = "Hi! Do you want recommendations by genre or author?"
	msgChoosePreference = "Invalid choice. Please type 'genre' or 'author'."
	msgAskGenre         = "What kind of book genre do you like? If you want to put in 2 or more genres please separate them with a comma."
	msgAskAuthor        = "Who is the author you want to look for?"
	msgNoGenre          = "Sorry, no books found. Please enter another genre."
	msgNoAuthor         = "Sorry, no books found. Please enter another author."
	msgPickOrNone       = "Pick a number or type 'none' to see more."
	msgPickOrKeywords   = "Pick a number or type 'keywords' to enter your own keywords."
	msgNoMoreBooks      = "There are no more books in this list."
	msgAskKeywords      = "Please enter your keywords for recommendations."
	msgNotANumber       = "Invalid selection. Please pick a valid number."
	msgNotListed        = "Invalid selection. Please pick a number from the list shown above."
	msgRecommendFailed  = "Sorry, couldn't generate recommendations. Please try again."
	msgMore             = "Do you want more recommendations? (y/n)"
	msgYesNo            = "Please reply with 'y' or 'n'."
	msgGoodbye          = "Okay, goodbye!"
	msgCompleted        = "Session completed. Refresh to get more recommendations."
)

// Machine drives the dialogue. It keeps no per-session state, so one Machine
// serves every conversation.
type Machine struct {
	catalog     domain.Catalog
	recommender domain.Recommender
	logger      zerolog.Logger
}

// NewMachine wires the catalog filters and the recommender into a dialogue.
func NewMachine(catalog domain.Catalog, recommender domain.Recommender, logger zerolog.Logger) *Machine {
	return &Machine{
		catalog:     catalog,
		recommender: recommender,
		logger:      logger.With().Str("component", "chat").Logger(),
	}
}

// HandleTurn applies one user message to s in place and returns the response text.
func (m *Machine) HandleTurn(ctx context.Context, s *Session, msg string) string {
	next, reply := m.Transition(ctx, *s, msg)
	*s = next
	return reply.Text
}

// Transition computes the next session and reply for one user message.
// The input session is not modified.
func (m *Machine) Transition(ctx context.Context, s Session, msg string) (Session, Reply) {
	msg = strings.TrimSpace(msg)
	from := s.Step
	if from == "" {
		from = StepChoosePreference
		s.Step = from
	}

	var (
		next  Session
		text  string
		cause error
	)
	switch s.Step {
	case StepChoosePreference:
		next, text, cause = m.choosePreference(s, msg)
	case StepFilterGenre:
		next, text, cause = m.filterGenre(s, msg)
	case StepFilterAuthor:
		next, text, cause = m.filterAuthor(s, msg)
	case StepSelectBook:
		next, text, cause = m.selectBook(ctx, s, msg)
	case StepKeywords:
		next, text, cause = m.keywords(ctx, s, msg)
	case StepMoreRecommendations:
		next, text, cause = m.moreRecommendations(s, msg)
	default:
		next, text = s, msgCompleted
		next.Step = StepDone
	}

	m.logger.Debug().
		Str("from", string(from)).
		Str("to", string(next.Step)).
		AnErr("reply_err", cause).
		Msg("turn")
	return next, Reply{Text: text, Err: cause, From: from, To: next.Step}
}

func (m *Machine) choosePreference(s Session, msg string) (Session, string, error) {
	switch Preference(strings.ToLower(msg)) {
	case PreferenceGenre:
		s.Preference = PreferenceGenre
		s.Step = StepFilterGenre
		return s, msgAskGenre, nil
	case PreferenceAuthor:
		s.Preference = PreferenceAuthor
		s.Step = StepFilterAuthor
		return s, msgAskAuthor, nil
	default:
		return s, msgChoosePreference, ErrInvalidInput
	}
}

func (m *Machine) filterGenre(s Session, msg string) (Session, string, error) {
	parts := strings.Split(msg, ",")
	genres := make([]string, len(parts))
	for i, p := range parts {
		genres[i] = strings.ToLower(strings.TrimSpace(p))
	}
	found := m.catalog.FilterByGenres(genres, MaxCandidates)
	if len(found) == 0 {
		return s, msgNoGenre, ErrEmptyResult
	}
	s = withCandidates(s, found)
	return s, listing("Here are the top books:", s.Page(0), msgPickOrNone), nil
}

func (m *Machine) filterAuthor(s Session, msg string) (Session, string, error) {
	found := m.catalog.FilterByAuthor(strings.ToLower(msg), MaxCandidates)
	if len(found) == 0 {
		return s, msgNoAuthor, ErrEmptyResult
	}
	s = withCandidates(s, found)
	return s, listing("Here are the top books by that author:", s.Page(0), msgPickOrNone), nil
}

func withCandidates(s Session, found []domain.CandidateEntry) Session {
	if len(found) > MaxCandidates {
		found = found[:MaxCandidates]
	}
	s.Candidates = append([]domain.CandidateEntry(nil), found...)
	s.Step = StepSelectBook
	return s
}

func (m *Machine) selectBook(ctx context.Context, s Session, msg string) (Session, string, error) {
	switch strings.ToLower(msg) {
	case "none":
		page := s.Page(1)
		if len(page) == 0 {
			return s, msgNoMoreBooks + "\n" + msgPickOrKeywords, nil
		}
		return s, listing("Here are the next 5 books:", page, msgPickOrKeywords), nil
	case "keywords":
		s.Step = StepKeywords
		return s, msgAskKeywords, nil
	}

	id, err := strconv.Atoi(msg)
	if err != nil {
		return s, msgNotANumber, ErrInvalidInput
	}
	picked, ok := s.Candidate(id)
	if !ok {
		return s, msgNotListed, ErrInvalidInput
	}
	sel := Selection{BookID: id, HasBook: true}
	recs, err := m.recommender.Recommend(ctx, sel)
	if err != nil {
		m.logger.Warn().Err(err).Int("book_id", id).Msg("book recommendation failed")
		return s, msgRecommendFailed, fmt.Errorf("%w: %w", ErrRecommendation, err)
	}
	s.Selection = sel
	s.Step = StepMoreRecommendations
	header := "You selected: " + picked.Title + "\nHere are your recommended books:"
	return s, recommendations(header, recs), nil
}

func (m *Machine) keywords(ctx context.Context, s Session, msg string) (Session, string, error) {
	sel := Selection{Keywords: msg}
	recs, err := m.recommender.Recommend(ctx, sel)
	if err != nil {
		m.logger.Warn().Err(err).Str("keywords", msg).Msg("keyword recommendation failed")
		return s, msgRecommendFailed, fmt.Errorf("%w: %w", ErrRecommendation, err)
	}
	s.Selection = sel
	s.Step = StepMoreRecommendations
	return s, recommendations("Here are the recommended books based on your keywords:", recs), nil
}

func (m *Machine) moreRecommendations(s Session, msg string) (Session, string, error) {
	switch strings.ToLower(msg) {
	case "y":
		return NewSession(), Greeting, nil
	case "n":
		s.Step = StepDone
		return s, msgGoodbye, nil
	default:
		return s, msgYesNo, ErrInvalidInput
	}
}

func listing(header string, page []domain.CandidateEntry, footer string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, c := range page {
		fmt.Fprintf(&b, "%d: %s by %s\n", c.ID, c.Title, c.Author)
	}
	b.WriteString(footer)
	return b.String()
}

func recommendations(header string, recs []domain.Recommendation) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s by %s\n", r.Title, r.Author)
	}
	b.WriteString("\n")
	b.WriteString(msgMore)
	return b.String()
}
