package prompt

import (
	"fmt"
	"strings"
	"sync"
)

// Scripted is a Prompter that replays canned answers in order. Answers are
// run through the same validators as real input; a rejected answer is
// returned as an error rather than re-asked.
type Scripted struct {
	mu      sync.Mutex
	answers []string

	// Asked records the label of every prompt in order.
	Asked []string
}

// NewScripted returns a prompter that will answer with answers in order.
// Confirm answers are "y" or "n"; an empty answer takes the default.
// Choose answers are a choice value, label or 1-based index.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Remaining returns the number of unused answers.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Scripted) next(label string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, label)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("%w: no scripted answer for %q", ErrAborted, label)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Ask implements Prompter.
func (s *Scripted) Ask(q Question) (string, error) {
	return s.ask(q, false)
}

// AskSecret implements Prompter.
func (s *Scripted) AskSecret(q Question) (string, error) {
	return s.ask(q, true)
}

func (s *Scripted) ask(q Question, secret bool) (string, error) {
	raw, err := s.next(q.Label)
	if err != nil {
		return "", err
	}
	answer := q.answer(raw, secret)
	if q.Validate != nil {
		if err := q.Validate(answer); err != nil {
			return "", fmt.Errorf("answer %q to %q rejected: %w", answer, q.Label, err)
		}
	}
	return answer, nil
}

// Confirm implements Prompter.
func (s *Scripted) Confirm(label string, def bool) (bool, error) {
	answer, err := s.next(label)
	if err != nil {
		return false, err
	}
	v, ok := parseYesNo(answer, def)
	if !ok {
		return false, fmt.Errorf("answer %q to %q is not yes or no", answer, label)
	}
	return v, nil
}

// Choose implements Prompter.
func (s *Scripted) Choose(label string, choices []Choice) (string, error) {
	answer, err := s.next(label)
	if err != nil {
		return "", err
	}
	c, ok := matchChoice(strings.TrimSpace(answer), choices)
	if !ok {
		return "", fmt.Errorf("answer %q to %q matches no choice", answer, label)
	}
	return c.Value, nil
}
