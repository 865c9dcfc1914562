package agenta

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/csells/agentsession/event"
	"github.com/csells/agentsession/internal/pathenc"
	"github.com/csells/agentsession/lineframe"
)

// historyRoot is AgentA's conventional directory under the user's home,
// per spec.md §4.9/§6: "<home>/<root>/projects/<encoded-cwd>/<sid>.jsonl".
const historyRoot = ".agent-a"

// ReadHistory decodes a prior session's JSONL log into normalized events.
// TurnId starts at 0 and increments on every TurnEnd, per spec.md §4.9.
func ReadHistory(home, projectDir, sessionID string) ([]event.Event, error) {
	path, err := sessionPath(home, projectDir, sessionID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, event.ErrNotFound
		}
		return nil, fmt.Errorf("agenta: open history: %w", err)
	}
	defer f.Close()

	var out []event.Event
	turnID := 0
	scanner := lineframe.New(f)
	for {
		raw, ok := scanner.Next()
		if !ok {
			break
		}
		events, _, err := Decode(raw, Context{SessionID: sessionID})
		if err != nil {
			continue // opaque storage format; tolerate unreadable lines in replay
		}
		ended := false
		for _, ev := range events {
			ev.TurnID = strconv.Itoa(turnID)
			out = append(out, ev)
			if ev.Kind == event.KindTurnEnd {
				ended = true
			}
		}
		if ended {
			turnID++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("agenta: read history: %w", err)
	}
	return out, nil
}

func sessionPath(home, projectDir, sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("agenta: session id required")
	}
	dir := filepath.Join(home, historyRoot, "projects", pathenc.EncodeCWD(projectDir))
	return filepath.Join(dir, sessionID+".jsonl"), nil
}

// ListSessions enumerates prior sessions for projectDir, sorted by
// last-updated descending. A missing directory yields an empty list, not
// an error (spec.md §4.9).
func ListSessions(home, projectDir string) ([]event.SessionRecord, error) {
	dir := filepath.Join(home, historyRoot, "projects", pathenc.EncodeCWD(projectDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("agenta: list sessions: %w", err)
	}

	var records []event.SessionRecord
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".jsonl") || strings.HasPrefix(name, "agent-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sid := strings.TrimSuffix(name, ".jsonl")
		records = append(records, event.SessionRecord{
			SessionID:     sid,
			ProjectDir:    projectDir,
			CreatedAt:     info.ModTime(),
			LastUpdatedAt: info.ModTime(),
			MessageCount:  lineCount(filepath.Join(dir, name)),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastUpdatedAt.After(records[j].LastUpdatedAt)
	})
	return records, nil
}

func lineCount(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	scanner := lineframe.New(f)
	n := 0
	for {
		if _, ok := scanner.Next(); !ok {
			break
		}
		n++
	}
	return n
}
