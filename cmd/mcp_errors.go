package cmd

import (
	"errors"

	"github.com/waymark-dev/waymark/internal/planner"
	"github.com/waymark-dev/waymark/types"
)

// Type alias for convenience
type MCPError = types.MCPError

// NewMCPError is an alias for types.NewMCPError
var NewMCPError = types.NewMCPError

// toMCPError translates the store's error taxonomy into structured MCP
// errors so clients can branch on the code instead of parsing messages.
func toMCPError(err error) error {
	if err == nil {
		return nil
	}

	var validation *planner.ValidationError
	if errors.As(err, &validation) {
		return NewMCPError("VALIDATION_ERROR", validation.Error(), map[string]interface{}{
			"field": validation.Field,
		})
	}

	var notFound *planner.NotFoundError
	if errors.As(err, &notFound) {
		return NewMCPError("NOT_FOUND", notFound.Error(), map[string]interface{}{
			"kind": notFound.Kind,
			"id":   notFound.ID,
		})
	}

	if conflict, ok := planner.IsConflict(err); ok {
		return NewMCPError("CONFLICT", conflict.Error(), map[string]interface{}{
			"step_id": conflict.StepID,
			"status":  string(conflict.Status),
		})
	}

	return NewMCPError("STORAGE_ERROR", err.Error(), nil)
}
