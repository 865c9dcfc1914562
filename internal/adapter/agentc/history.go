package agentc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/csells/agentsession/event"
	"github.com/csells/agentsession/internal/pathenc"
)

// historyRoot is AgentC's conventional directory under the user's home,
// per spec.md §4.9/§6: "<home>/<root>/<sha256(project_dir)>/chats/<uuid>.json".
const historyRoot = ".agent-c"

// chatMessage mirrors one entry of a chat document's messages array.
type chatMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	ToolUseID string `json:"tool_use_id,omitempty"`
	ToolName  string `json:"tool_name,omitempty"`
	Input     any    `json:"input,omitempty"`
	Output    any    `json:"output,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

type chatDocument struct {
	SessionID     string        `json:"sessionId"`
	CreatedAt     string        `json:"createdAt,omitempty"`
	LastUpdatedAt string        `json:"lastUpdatedAt,omitempty"`
	Messages      []chatMessage `json:"messages"`
}

func chatsDir(home, projectDir string) string {
	return filepath.Join(home, historyRoot, pathenc.ProjectHash(projectDir), "chats")
}

// ReadHistory locates the chat document matching sessionID by scanning the
// project's chats directory and matching the embedded sessionId (spec.md
// §4.7). Each assistant message is followed by a synthetic TurnEnd Success
// and the turn counter advances, per spec.md §4.9.
func ReadHistory(home, projectDir, sessionID string) ([]event.Event, error) {
	dir := chatsDir(home, projectDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, event.ErrNotFound
		}
		return nil, fmt.Errorf("agentc: list chats: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		doc, err := readChatDocument(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		if doc.SessionID != sessionID {
			continue
		}
		return eventsFromDocument(doc), nil
	}
	return nil, event.ErrNotFound
}

func eventsFromDocument(doc chatDocument) []event.Event {
	var out []event.Event
	turnID := 0
	for _, m := range doc.Messages {
		switch m.Role {
		case "user":
			continue
		case "assistant", "model":
			out = append(out, event.Event{
				Kind:      event.KindText,
				SessionID: doc.SessionID,
				TurnID:    strconv.Itoa(turnID),
				Text:      m.Text,
			})
			out = append(out, event.Event{
				Kind:      event.KindTurnEnd,
				SessionID: doc.SessionID,
				TurnID:    strconv.Itoa(turnID),
				Status:    event.TurnSuccess,
			})
			turnID++
		case "tool_use":
			out = append(out, event.Event{
				Kind:      event.KindToolUse,
				SessionID: doc.SessionID,
				TurnID:    strconv.Itoa(turnID),
				ToolUseID: m.ToolUseID,
				ToolName:  m.ToolName,
				Input:     m.Input,
			})
		case "tool_result":
			out = append(out, event.Event{
				Kind:      event.KindResult,
				SessionID: doc.SessionID,
				TurnID:    strconv.Itoa(turnID),
				ToolUseID: m.ToolUseID,
				Output:    toText(m.Output),
				IsError:   m.IsError,
			})
		default:
			out = append(out, event.Event{
				Kind:         event.KindUnknown,
				SessionID:    doc.SessionID,
				TurnID:       strconv.Itoa(turnID),
				OriginalType: "message:" + m.Role,
			})
		}
	}
	return out
}

// ListSessions enumerates prior sessions for projectDir by reading every
// chat document in its directory. A missing directory yields an empty
// list, not an error.
func ListSessions(home, projectDir string) ([]event.SessionRecord, error) {
	dir := chatsDir(home, projectDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("agentc: list sessions: %w", err)
	}

	var records []event.SessionRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := readChatDocument(path)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		records = append(records, event.SessionRecord{
			SessionID:     doc.SessionID,
			ProjectDir:    projectDir,
			CreatedAt:     parseOrModTime(doc.CreatedAt, info.ModTime()),
			LastUpdatedAt: parseOrModTime(doc.LastUpdatedAt, info.ModTime()),
			MessageCount:  len(doc.Messages),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastUpdatedAt.After(records[j].LastUpdatedAt)
	})
	return records, nil
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func parseOrModTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return t
}

func readChatDocument(path string) (chatDocument, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return chatDocument{}, err
	}
	var doc chatDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return chatDocument{}, err
	}
	return doc, nil
}
