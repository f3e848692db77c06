package commands

import (
	"context"
	"fmt"

	auditRepository "github.com/vitaldiary/entryvault/internal/audit/repository"
)

// RunAuditTail prints the most recent limit audit events, oldest first.
// Events are content-free, so the output is safe to paste into a bug
// report.
func RunAuditTail(
	ctx context.Context,
	eventRepo auditRepository.EventRepository,
	io IOTuple,
	limit int,
) error {
	events, err := eventRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list audit events: %w", err)
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	if len(events) == 0 {
		fmt.Fprintln(io.Writer, "No audit events.")
		return nil
	}

	for _, event := range events {
		line := fmt.Sprintf("%s %s %s",
			event.Timestamp.Format("2006-01-02T15:04:05Z07:00"), event.Action, event.Outcome)
		if event.ErrorKind != "" {
			line += " " + event.ErrorKind
		}
		fmt.Fprintln(io.Writer, line)
	}
	return nil
}
