package fault

import (
	"errors"
	"fmt"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/result"
)

// Fault is the raisable wrapper around exactly one bad Result. Callers catch
// it broadly via errors.As(*Fault) or narrowly via the Skipped / Failed
// subtypes, which unwrap to the shared Fault.
type Fault struct {
	res *result.Result
}

func (f *Fault) Error() string {
	reason := f.res.Reason()
	if reason == "" {
		reason = "no reason given"
	}
	return fmt.Sprintf("task %s %s: %s", f.res.Task(), f.res.Status(), reason)
}

// Result returns the wrapped Result.
func (f *Fault) Result() *result.Result {
	return f.res
}

// Task returns the name of the originating task.
func (f *Fault) Task() string {
	return f.res.Task()
}

// Metadata returns a copy of the wrapped Result's metadata.
func (f *Fault) Metadata() core.Metadata {
	return f.res.Metadata()
}

// Skipped is the fault raised for a skipped Result.
type Skipped struct {
	*Fault
}

func (s *Skipped) Unwrap() error {
	return s.Fault
}

// Failed is the fault raised for a failed Result.
type Failed struct {
	*Fault
}

func (f *Failed) Unwrap() error {
	return f.Fault
}

// FromResult wraps a bad Result in the status-specific fault type. Only
// skipped and failed outcomes are raisable; good Results produce no fault.
func FromResult(res *result.Result) error {
	switch res.Status() {
	case core.StatusSkipped:
		return &Skipped{Fault: &Fault{res: res}}
	case core.StatusFailed:
		return &Failed{Fault: &Fault{res: res}}
	default:
		return nil
	}
}

// MustFromResult is FromResult for callers that already checked the status.
func MustFromResult(res *result.Result) error {
	f := FromResult(res)
	if f == nil {
		panic(fmt.Sprintf("cannot build a fault from a %s result", res.Status()))
	}
	return f
}

// -----------------------------------------------------------------------------
// Selective rescue
// -----------------------------------------------------------------------------

// Matcher filters caught faults during rescue. Unmatched faults should be
// re-propagated by the caller.
type Matcher func(f *Fault) bool

// MatchTask matches faults originating from any of the named tasks.
func MatchTask(names ...string) Matcher {
	return func(f *Fault) bool {
		for _, name := range names {
			if f.Task() == name {
				return true
			}
		}
		return false
	}
}

// MatchResult matches faults whose wrapped Result satisfies the predicate.
func MatchResult(pred func(*result.Result) bool) Matcher {
	return func(f *Fault) bool {
		return pred(f.Result())
	}
}

// Matches reports whether err is a Fault accepted by all given matchers.
// With no matchers it reports whether err is a Fault at all.
func Matches(err error, matchers ...Matcher) bool {
	f := As(err)
	if f == nil {
		return false
	}
	for _, m := range matchers {
		if !m(f) {
			return false
		}
	}
	return true
}

// As extracts the Fault from err, or nil when err carries none.
func As(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return nil
}
