package safematch

import (
	"fmt"
	"time"

	"cs2ts/internal/textutil"

	"github.com/cockroachdb/errors"
)

// ErrPatternTimeout marks every budget overrun.
var ErrPatternTimeout = errors.New("pattern timeout")

// TimeoutError reports a match loop that did not finish within its budget.
type TimeoutError struct {
	Pattern  string
	Input    string
	Gathered int
	Budget   time.Duration
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("regular expression timeout after %s for pattern '%s' and data '%s', with %d results gathered so far: %v",
		e.Budget, e.Pattern, textutil.Truncate(e.Input, 200), e.Gathered, e.Cause)
}

// Unwrap lets errors.Is(err, ErrPatternTimeout) match.
func (e *TimeoutError) Unwrap() error {
	return ErrPatternTimeout
}
