package task

import (
	"fmt"

	"github.com/compozy/taskrun/engine/core"
	"github.com/compozy/taskrun/engine/fault"
	"github.com/compozy/taskrun/engine/result"
)

// ParseHaltStatuses converts configured status names into the typed halting
// set. Only bad statuses can halt.
func ParseHaltStatuses(names []string) ([]core.StatusType, error) {
	out := make([]core.StatusType, 0, len(names))
	for _, name := range names {
		status := core.StatusType(name)
		if !status.IsBad() {
			return nil, fmt.Errorf("status %q cannot halt", name)
		}
		out = append(out, status)
	}
	return out, nil
}

// shouldHalt reports whether the status is in the halting set. Non-bad
// statuses never halt, so a misdeclared set cannot raise on success.
func shouldHalt(status core.StatusType, set []core.StatusType) bool {
	if !status.IsBad() {
		return false
	}
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// EvaluateHalt is the halt decision for a finalized result: a status-specific
// fault when the status is in the set, nil otherwise. The non-raising entry
// point never consults it.
func EvaluateHalt(res *result.Result, set []core.StatusType) error {
	if !shouldHalt(res.Status(), set) {
		return nil
	}
	return fault.MustFromResult(res)
}
