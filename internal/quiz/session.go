// Package quiz runs an adaptive vocabulary quiz: it orders the items,
// grades free-text answers, keeps score and streak, and plays missed
// items again later in the same session.
//
// A Session is not safe for concurrent use. Every transition returns
// whether it was applied; calls made in the wrong state are ignored and
// leave the session untouched.
package quiz

import (
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/example/vocabquiz/internal/grading"
	"github.com/example/vocabquiz/pkg/models"
)

const (
	msgCorrect  = "Perfect!"
	msgClose    = "Almost!"
	msgWrong    = "Not quite."
	msgRevealed = "Revealed."
)

// Observer is notified about session events, e.g. to export metrics
type Observer interface {
	SessionStarted(items int)
	AnswerGraded(status grading.Status)
	HintGiven()
	AnswerRevealed()
	ItemReinserted()
	SessionFinished(summary Summary)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(int) {}
func (nopObserver) AnswerGraded(grading.Status) {}
func (nopObserver) HintGiven() {}
func (nopObserver) AnswerRevealed() {}
func (nopObserver) ItemReinserted() {}
func (nopObserver) SessionFinished(Summary) {}

type attempt struct {
	input     string
	hintChars int
	feedback  *Feedback
}

// Session is the quiz state machine
type Session struct {
	cfg      Config
	grader   grading.Grader
	rnd      *rand.Rand
	logger   *slog.Logger
	observer Observer

	state          State
	items          []models.VocabItem
	position       int
	attempt        attempt
	streak         int
	bestStreak     int
	results        []Result
	recorded       map[string]bool
	weakQueue      []models.VocabItem
	reinsertCounts map[string]int
}

// NewSession creates an idle session. A nil rnd seeds one from the clock;
// pass a seeded source to get a reproducible order.
func NewSession(cfg Config, rnd *rand.Rand, logger *slog.Logger) *Session {
	cfg = cfg.withDefaults()
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:            cfg,
		grader:         grading.Grader{CloseThreshold: cfg.CloseThreshold},
		rnd:            rnd,
		logger:         logger,
		observer:       nopObserver{},
		recorded:       make(map[string]bool),
		reinsertCounts: make(map[string]int),
	}
}

// SetObserver registers o for session events. nil removes the observer.
func (s *Session) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// Start begins a new session over a shuffled copy of items, discarding any
// previous state. An empty list is refused and the previous state is kept.
func (s *Session) Start(items []models.VocabItem) bool {
	list := make([]models.VocabItem, 0, len(items))
	for _, item := range items {
		if !item.IsZero() {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		s.logger.Warn("refusing to start quiz without items", "given", len(items))
		return false
	}

	s.rnd.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})

	s.items = list
	s.position = 0
	s.attempt = attempt{}
	s.streak = 0
	s.bestStreak = 0
	s.results = nil
	s.recorded = make(map[string]bool)
	s.weakQueue = nil
	s.reinsertCounts = make(map[string]int)
	s.state = StateActive

	s.observer.SessionStarted(len(list))
	return true
}

// SetInput stores what the learner has typed so far.
func (s *Session) SetInput(input string) bool {
	if s.state != StateActive {
		return false
	}
	s.attempt.input = input
	return true
}

// SubmitAnswer grades the current input. An input that normalizes to
// nothing reveals the answer instead.
func (s *Session) SubmitAnswer() bool {
	if s.state != StateActive {
		return false
	}
	if grading.Normalize(s.attempt.input) == "" {
		return s.RevealAnswer()
	}

	item := s.items[s.position]
	verdict := s.grader.Grade(item.Term, s.attempt.input)

	fb := &Feedback{Status: verdict.Status, Similarity: verdict.Similarity}
	switch verdict.Status {
	case grading.StatusCorrect:
		fb.Message = msgCorrect
	case grading.StatusClose:
		fb.Message = msgClose
	default:
		fb.Message = msgWrong
	}

	if verdict.Status.Successful() {
		s.bumpStreak()
	} else {
		s.streak = 0
		s.enqueueWeak(item)
	}

	s.record(Result{
		Item:    item,
		Correct: verdict.Status.Successful(),
		Hinted:  s.attempt.hintChars > 0,
	})
	s.attempt.feedback = fb
	s.state = StateFeedback

	s.observer.AnswerGraded(verdict.Status)
	return true
}

// RevealAnswer shows the term and counts the item as missed.
func (s *Session) RevealAnswer() bool {
	if s.state != StateActive {
		return false
	}

	item := s.items[s.position]
	s.attempt.input = item.Term
	s.attempt.feedback = &Feedback{Status: grading.StatusWrong, Message: msgRevealed}
	s.streak = 0
	s.enqueueWeak(item)
	s.record(Result{Item: item, Correct: false, Hinted: true})
	s.state = StateFeedback

	s.observer.AnswerRevealed()
	return true
}

// ProvideHint reveals one more leading character of the term. It breaks
// the streak and does nothing once the whole term is shown.
func (s *Session) ProvideHint() bool {
	if s.state != StateActive {
		return false
	}

	term := []rune(s.items[s.position].Term)
	next := s.attempt.hintChars + 1
	if next > len(term) {
		return false
	}

	s.streak = 0
	s.attempt.hintChars = next

	hint := string(term[:next])
	input := s.attempt.input
	typedAhead := len([]rune(input)) > next &&
		strings.HasPrefix(strings.ToLower(input), strings.ToLower(hint))
	if !typedAhead {
		s.attempt.input = hint
	}

	s.observer.HintGiven()
	return true
}

// NextQuestion moves past an answered item. At the re-insertion point the
// oldest missed item is appended to the list, unless it already came back
// ReinsertCap times.
func (s *Session) NextQuestion() bool {
	if s.state != StateFeedback {
		return false
	}

	reinsertAt := int(math.Floor(s.cfg.ReinsertAt * float64(len(s.items))))
	if len(s.weakQueue) > 0 && s.position == reinsertAt {
		head := s.weakQueue[0]
		s.weakQueue = s.weakQueue[1:]
		if s.reinsertCounts[head.Term] < s.cfg.ReinsertCap {
			s.items = append(s.items, head)
			s.reinsertCounts[head.Term]++
			s.observer.ItemReinserted()
		} else {
			s.logger.Debug("re-insertion cap reached", "term", head.Term)
		}
	}

	if s.position < len(s.items)-1 {
		s.position++
		s.attempt = attempt{}
		s.state = StateActive
		return true
	}

	s.state = StateFinished
	s.observer.SessionFinished(s.Summary())
	return true
}

// Skip reveals the current item and moves on in one step.
func (s *Session) Skip() bool {
	if !s.RevealAnswer() {
		return false
	}
	return s.NextQuestion()
}

// State returns the current phase
func (s *Session) State() State {
	return s.state
}

// ReinsertCount returns how often term was appended back into this session
func (s *Session) ReinsertCount(term string) int {
	return s.reinsertCounts[term]
}

// WeakQueue returns a copy of the items waiting for re-insertion
func (s *Session) WeakQueue() []models.VocabItem {
	out := make([]models.VocabItem, len(s.weakQueue))
	copy(out, s.weakQueue)
	return out
}

// Items returns a copy of the ordered item list, re-inserted items included
func (s *Session) Items() []models.VocabItem {
	out := make([]models.VocabItem, len(s.items))
	copy(out, s.items)
	return out
}

// View returns a snapshot of the session for rendering.
func (s *Session) View() View {
	v := View{
		State:     s.state,
		Position:  s.position,
		Total:     len(s.items),
		Input:     s.attempt.input,
		HintChars: s.attempt.hintChars,
		Streak:    s.streak,
		Finished:  s.state == StateFinished,
		Results:   make([]Result, len(s.results)),
	}
	copy(v.Results, s.results)

	if s.state == StateActive || s.state == StateFeedback {
		item := s.items[s.position]
		v.CurrentItem = &item
	}
	if s.attempt.feedback != nil {
		fb := *s.attempt.feedback
		v.Feedback = &fb
	}
	return v
}

// Summary reports the recorded results. Each term counts once, with the
// outcome of its first answer.
func (s *Session) Summary() Summary {
	sum := Summary{
		Total:      len(s.results),
		BestStreak: s.bestStreak,
		Missed:     []models.VocabItem{},
	}
	for _, r := range s.results {
		if r.Correct {
			sum.Correct++
		} else {
			sum.Missed = append(sum.Missed, r.Item)
		}
		if r.Hinted {
			sum.Hinted++
		}
	}
	sum.Wrong = sum.Total - sum.Correct
	if sum.Total > 0 {
		sum.Accuracy = 100 * float64(sum.Correct) / float64(sum.Total)
	}
	return sum
}

func (s *Session) bumpStreak() {
	s.streak++
	if s.streak > s.bestStreak {
		s.bestStreak = s.streak
	}
}

// enqueueWeak queues item for re-insertion unless it is already waiting
// or the queue is full.
func (s *Session) enqueueWeak(item models.VocabItem) {
	if len(s.weakQueue) >= s.cfg.WeakCapacity {
		return
	}
	for _, w := range s.weakQueue {
		if w.Term == item.Term {
			return
		}
	}
	s.weakQueue = append(s.weakQueue, item)
}

// record appends r unless its term already has a result.
func (s *Session) record(r Result) {
	if s.recorded[r.Item.Term] {
		return
	}
	s.recorded[r.Item.Term] = true
	s.results = append(s.results, r)
}
