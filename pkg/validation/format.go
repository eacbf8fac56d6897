// Package validation checks calculation inputs and reports non-fatal warnings.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/emi-calculator/pkg/constants"
)

// ParseOutputFormat normalizes an output format name. An empty name selects
// the pretty table.
func ParseOutputFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		return constants.OutputFormatPretty, nil
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return normalized, nil
	default:
		return "", fmt.Errorf("expected output format of %s or %s, got %q",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
}
