package errors

import (
	goerrors "errors"
	"fmt"
	"os"

	"github.com/elioaoun07/homeagenda/internal/executor"
	"github.com/elioaoun07/homeagenda/internal/logger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/recurrence"
)

// Format formats an error message with a consistent "Error: " prefix and, for
// engine errors the user can act on, a hint line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests a next step for known error kinds.
func Hint(err error) string {
	var cascade *executor.CascadeError
	var stale *executor.StaleWriteError
	var unsupported *executor.UnsupportedPostponeKindError

	switch {
	case goerrors.As(err, &cascade):
		return fmt.Sprintf("run 'homeagenda item delete --retry-cascade %s' to remove the leftover occurrence actions", cascade.ItemID)
	case goerrors.As(err, &stale):
		return "someone else changed this occurrence; run 'homeagenda agenda' and retry"
	case goerrors.As(err, &unsupported):
		return "use one of: next_occurrence, tomorrow, custom"
	case recurrence.IsInvalidRule(err):
		return "recurrence rules use RFC 5545 syntax, e.g. FREQ=WEEKLY;BYDAY=MO"
	case goerrors.Is(err, models.ErrItemNotFound):
		return "run 'homeagenda item list' to see item ids"
	case goerrors.Is(err, executor.ErrNotAnOccurrence):
		return "pass the occurrence instant exactly as shown by 'homeagenda agenda'"
	case goerrors.Is(err, executor.ErrMissingOccurrence):
		return "recurring items need --at"
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
