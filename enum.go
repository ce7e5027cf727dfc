package cdp

import (
	"fmt"
)

// ParseEnumError reports a wire string that is not a member of a generated
// enum's closed value set. Expected always carries the enum's full declared
// set, so callers can compare against it exactly.
type ParseEnumError struct {
	Expected []string
	Actual   string
}

func (e *ParseEnumError) Error() string {
	return fmt.Sprintf("expected one of %q; actual: %q", e.Expected, e.Actual)
}
