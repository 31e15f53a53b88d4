// Package safematch runs regular expressions against untrusted source text
// under a wall-clock budget.
//
// Declaration and member patterns need alternation, nested quantifiers and
// backreferences, so they run on a backtracking engine. A crafted input can
// make such a pattern run for hours; every global match loop therefore runs in
// its own goroutine with a deadline, and the engine is configured with the
// same per-match timeout so the goroutine terminates too.
package safematch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout is the budget used when none is configured.
const DefaultTimeout = 30 * time.Second

// Match is one result of a global match loop.
type Match struct {
	// Text is the full match.
	Text string
	// Index is the rune offset of the match in the input.
	Index int
	// Groups holds numbered groups; Groups[0] equals Text. Unmatched groups are "".
	Groups []string
	// Named maps group names to their last capture.
	Named map[string]string
	// Captures maps group names to every capture the group made, in order.
	Captures map[string][]string
}

// Group returns numbered group i, or "" when out of range.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Name returns the named group's last capture.
func (m Match) Name(name string) string {
	return m.Named[name]
}

// Matcher compiles and executes patterns with a fixed budget.
// It is safe for concurrent use.
type Matcher struct {
	timeout time.Duration

	mu       sync.Mutex
	compiled map[string]*regexp2.Regexp
}

// New creates a matcher. A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *Matcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Matcher{
		timeout:  timeout,
		compiled: make(map[string]*regexp2.Regexp),
	}
}

// Timeout returns the matcher's budget.
func (m *Matcher) Timeout() time.Duration {
	return m.timeout
}

func (m *Matcher) compile(pattern string) (*regexp2.Regexp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if re, ok := m.compiled[pattern]; ok {
		return re, nil
	}

	re, err := regexp2.Compile(pattern, regexp2.Multiline)
	if err != nil {
		return nil, errors.Wrapf(err, "compile pattern %q", pattern)
	}
	re.MatchTimeout = m.timeout
	m.compiled[pattern] = re
	return re, nil
}

// FindAll returns every match of pattern in text, in order.
// Empty text returns no matches without running the engine.
func (m *Matcher) FindAll(ctx context.Context, pattern, text string) ([]Match, error) {
	if text == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "match cancelled")
	}

	re, err := m.compile(pattern)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	type outcome struct {
		matches []Match
		err     error
	}

	done := make(chan outcome, 1)
	var gathered atomic.Int64

	go func() {
		var matches []Match
		found, err := re.FindStringMatch(text)
		for err == nil && found != nil {
			matches = append(matches, convert(found))
			gathered.Add(1)
			if ctx.Err() != nil {
				err = ctx.Err()
				break
			}
			found, err = re.FindNextMatch(found)
		}
		done <- outcome{matches: matches, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, m.failure(ctx, pattern, text, len(out.matches), out.err)
		}
		return out.matches, nil
	case <-ctx.Done():
		// The engine's own MatchTimeout stops the goroutine shortly after the deadline.
		return nil, m.failure(ctx, pattern, text, int(gathered.Load()), ctx.Err())
	}
}

// ReplaceAll replaces every match of pattern in text with the literal repl.
func (m *Matcher) ReplaceAll(ctx context.Context, pattern, text, repl string) (string, error) {
	matches, err := m.FindAll(ctx, pattern, text)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return text, nil
	}

	runes := []rune(text)
	var b strings.Builder
	last := 0
	for _, match := range matches {
		b.WriteString(string(runes[last:match.Index]))
		b.WriteString(repl)
		last = match.Index + utf8.RuneCountInString(match.Text)
	}
	b.WriteString(string(runes[last:]))

	return b.String(), nil
}

// failure classifies a loop error as cancellation or timeout.
func (m *Matcher) failure(ctx context.Context, pattern, text string, gathered int, cause error) error {
	if errors.Is(cause, context.Canceled) || errors.Is(context.Cause(ctx), context.Canceled) {
		return errors.Wrap(cause, "match cancelled")
	}

	log.Debug().
		Str("pattern", pattern).
		Int("gathered", gathered).
		Dur("budget", m.timeout).
		Msg("Pattern match exceeded budget")

	return &TimeoutError{
		Pattern:  pattern,
		Input:    text,
		Gathered: gathered,
		Budget:   m.timeout,
		Cause:    cause,
	}
}

func convert(found *regexp2.Match) Match {
	groups := found.Groups()
	out := Match{
		Text:     found.String(),
		Index:    found.Index,
		Groups:   make([]string, len(groups)),
		Named:    make(map[string]string),
		Captures: make(map[string][]string),
	}

	for i, g := range groups {
		out.Groups[i] = g.String()
		if g.Name == "" || isNumeric(g.Name) {
			continue
		}
		out.Named[g.Name] = g.String()
		for _, c := range g.Captures {
			out.Captures[g.Name] = append(out.Captures[g.Name], c.String())
		}
	}

	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
