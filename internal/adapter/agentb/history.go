package agentb

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/csells/agentsession/event"
	"github.com/csells/agentsession/internal/child"
	"github.com/csells/agentsession/lineframe"
)

// listingPattern matches one line of the child's plain-text session
// listing, per spec.md §4.9/§6:
// "  <index>. <prompt-excerpt> (<relative-time>) [<session-id>]"
var listingPattern = regexp.MustCompile(`^\s*\d+\.\s+(.*?)\s+\((\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago\)\s+\[(.+?)\]\s*$`)

// ListSessions runs the child's native listing subcommand and parses its
// plain-text output. A missing/empty listing yields an empty list, not an
// error (spec.md §4.9).
func ListSessions(executable, projectDir string) ([]event.SessionRecord, error) {
	out, err := runSubcommand(executable, projectDir, []string{"list"})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var records []event.SessionRecord
	for _, line := range strings.Split(out, "\n") {
		m := listingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, convErr := strconv.Atoi(m[2])
		if convErr != nil {
			continue
		}
		ts := now.Add(-relativeDuration(n, m[3]))
		records = append(records, event.SessionRecord{
			SessionID:     m[4],
			ProjectDir:    projectDir,
			CreatedAt:     ts,
			LastUpdatedAt: ts,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastUpdatedAt.After(records[j].LastUpdatedAt)
	})
	return records, nil
}

// ReadHistory runs the child's native history subcommand for sessionID and
// decodes its output through CodecB, per spec.md §4.9.
func ReadHistory(executable, projectDir, sessionID string) ([]event.Event, error) {
	out, err := runSubcommand(executable, projectDir, []string{"history", sessionID})
	if err != nil {
		return nil, err
	}

	var events []event.Event
	turnID := 0
	scanner := lineframe.New(strings.NewReader(out))
	for {
		raw, ok := scanner.Next()
		if !ok {
			break
		}
		decoded, _, err := Decode(raw, Context{SessionID: sessionID})
		if err != nil {
			continue
		}
		ended := false
		for _, ev := range decoded {
			ev.TurnID = strconv.Itoa(turnID)
			events = append(events, ev)
			if ev.Kind == event.KindTurnEnd {
				ended = true
			}
		}
		if ended {
			turnID++
		}
	}
	return events, nil
}

func runSubcommand(executable, dir string, args []string) (string, error) {
	sup, err := child.Start(child.Spec{Executable: executable, Args: args, Dir: dir, Stdin: false})
	if err != nil {
		return "", fmt.Errorf("agentb: run subcommand: %w", err)
	}
	sup.CloseStdin()
	b, readErr := io.ReadAll(sup.Stdout())
	waitErr := sup.Wait(context.Background())
	if readErr != nil {
		return "", fmt.Errorf("agentb: read subcommand output: %w", readErr)
	}
	if waitErr != nil && sup.ExitCode() != 0 {
		return "", fmt.Errorf("agentb: subcommand exited with code %d: %s", sup.ExitCode(), sup.Stderr())
	}
	return string(b), nil
}

func relativeDuration(n int, unit string) time.Duration {
	switch unit {
	case "second":
		return time.Duration(n) * time.Second
	case "minute":
		return time.Duration(n) * time.Minute
	case "hour":
		return time.Duration(n) * time.Hour
	case "day":
		return time.Duration(n) * 24 * time.Hour
	case "week":
		return time.Duration(n) * 7 * 24 * time.Hour
	case "month":
		return time.Duration(n) * 30 * 24 * time.Hour
	case "year":
		return time.Duration(n) * 365 * 24 * time.Hour
	default:
		return 0
	}
}
