package cmd

import (
	"fmt"
	"strconv"

	"github.com/waymark-dev/waymark/internal/planner"
)

// friendlyError rewrites taxonomy errors into messages suitable for a
// terminal; everything else passes through unchanged.
func friendlyError(err error) error {
	if err == nil {
		return nil
	}
	if conflict, ok := planner.IsConflict(err); ok {
		return fmt.Errorf("step %d is already %s; pick another step or release it first",
			conflict.StepID, conflict.Status)
	}
	return err
}

// parseID parses a positional numeric argument.
func parseID(arg, field string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a positive number", field, arg)
	}
	return id, nil
}
