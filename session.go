// Package agentsession is the public surface of this module: it hides
// AgentA's long-lived duplex, AgentB's app-server-with-approval-channel, and
// AgentC's spawn-per-turn-with-resume behind one Session type, per spec.md
// §4.8. Struct/option shape grounded on dm-vev-OpenClaude/internal/agent/agent.go's
// Runner: a thin struct wrapping the engine that does the real work, with
// doc comments on every exported field.
package agentsession

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/csells/agentsession/config"
	"github.com/csells/agentsession/event"
	"github.com/csells/agentsession/internal/adapter/agenta"
	"github.com/csells/agentsession/internal/adapter/agentb"
	"github.com/csells/agentsession/internal/adapter/agentc"
	"github.com/csells/agentsession/internal/argbuild"
)

// engine is the uniform shape every adapter package satisfies. Kept
// unexported: consumers program against Session, never against a specific
// adapter's concrete type (spec.md §9's "tagged variant, not open-ended
// interface inheritance").
type engine interface {
	SendMessage(ctx context.Context, prompt string) error
	Events() <-chan event.Event
	SessionID() string
	Cancel()
	Close() error
}

// Session is the single surface consumers program against. Construct with
// New; a zero Session is not usable.
type Session struct {
	cfg config.Config
	eng engine

	events chan event.Event

	mu           sync.Mutex
	turnInFlight bool
	closed       bool
	turnSeq      int
}

// New validates cfg and constructs the adapter cfg.Kind selects. No child
// process is spawned until the first SendMessage.
func New(cfg config.Config) (*Session, error) {
	if cfg.ProjectDir == "" {
		return nil, fmt.Errorf("agentsession: ProjectDir is required")
	}

	var eng engine
	switch cfg.Kind {
	case config.AgentA:
		eng = agenta.New(cfg)
	case config.AgentB:
		eng = agentb.New(cfg)
	case config.AgentC:
		if cfg.ApprovalHandler != nil {
			slog.Default().Warn("agent_c has no interactive control channel; ApprovalHandler is ignored")
		}
		eng = agentc.New(cfg)
	default:
		return nil, fmt.Errorf("agentsession: unknown Kind %q", cfg.Kind)
	}

	s := &Session{
		cfg:    cfg,
		eng:    eng,
		events: make(chan event.Event, 256),
	}
	go s.forward()
	return s, nil
}

// forward relays the adapter's event stream to the Session's own channel,
// clearing the in-flight flag at each terminal event so the single-turn
// invariant is enforced here rather than relying solely on the adapter
// (spec.md §4.8). KindTurnEnd is the only terminal event a turn ever
// produces; KindError is not terminal in general (AgentB emits non-fatal
// "error" events mid-turn per spec.md §4.6), so it must not clear
// turnInFlight on its own. A fatal error still ends the turn, but only
// through the KindTurnEnd/stream-closure path the adapter already takes.
func (s *Session) forward() {
	for ev := range s.eng.Events() {
		if ev.Kind == event.KindTurnEnd {
			s.mu.Lock()
			s.turnInFlight = false
			s.mu.Unlock()
		}
		s.events <- ev
	}
	// The adapter's stream only ever closes once its engine is done for
	// good (explicit Close, or a fatal error that never reaches
	// KindTurnEnd), so Session is done too at that point regardless of
	// which event last cleared turnInFlight.
	s.mu.Lock()
	s.closed = true
	s.turnInFlight = false
	s.mu.Unlock()
	close(s.events)
}

// Events returns the normalized event stream. Closed once the session
// terminates, by Close or a fatal error; Cancel ends only the current turn
// and leaves the stream open.
func (s *Session) Events() <-chan event.Event { return s.events }

// SessionID returns the adapter's latched session id, empty until the first
// turn's init event arrives.
func (s *Session) SessionID() string { return s.eng.SessionID() }

// SendMessage starts a new turn, failing synchronously with ErrInFlight if
// one is already running or ErrClosed if the session has been closed
// (spec.md §7's "programming errors... raised synchronously").
func (s *Session) SendMessage(ctx context.Context, prompt string) (*Turn, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, event.ErrClosed
	}
	if s.turnInFlight {
		s.mu.Unlock()
		return nil, event.ErrInFlight
	}
	s.turnSeq++
	turnID := strconv.Itoa(s.turnSeq)
	s.turnInFlight = true
	s.mu.Unlock()

	if err := s.eng.SendMessage(ctx, prompt); err != nil {
		s.mu.Lock()
		s.turnInFlight = false
		s.mu.Unlock()
		return nil, err
	}
	return &Turn{id: turnID, session: s}, nil
}

// Cancel terminates the in-flight turn's child, if any, and surfaces
// TurnEnd Cancelled on the event stream. A subsequent SendMessage is
// allowed once that event has been observed (spec.md §4.8).
func (s *Session) Cancel() { s.eng.Cancel() }

// Close terminates any live child unconditionally and closes the event
// stream. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.eng.Close()
}

// executable returns cfg.Executable, defaulting to the adapter kind's
// conventional binary name when unset.
func (s *Session) executable() string {
	if s.cfg.Executable != "" {
		return s.cfg.Executable
	}
	return argbuild.DefaultExecutable(s.cfg.Kind)
}

// GetHistory replays a prior session's on-disk or child-reported record into
// normalized events (spec.md §4.9). Calling it twice for the same sessionID
// yields identical sequences (invariant 10).
func (s *Session) GetHistory(sessionID string) ([]event.Event, error) {
	switch s.cfg.Kind {
	case config.AgentA:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("agentsession: resolve home dir: %w", err)
		}
		return agenta.ReadHistory(home, s.cfg.ProjectDir, sessionID)
	case config.AgentB:
		return agentb.ReadHistory(s.executable(), s.cfg.ProjectDir, sessionID)
	case config.AgentC:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("agentsession: resolve home dir: %w", err)
		}
		return agentc.ReadHistory(home, s.cfg.ProjectDir, sessionID)
	default:
		return nil, fmt.Errorf("agentsession: unknown Kind %q", s.cfg.Kind)
	}
}

// ListSessions enumerates this Session's project directory for cfg.Kind,
// sorted by LastUpdatedAt descending. A missing history directory yields an
// empty list, not an error.
func (s *Session) ListSessions() ([]event.SessionRecord, error) {
	return ListSessions(s.cfg)
}

// ListSessions enumerates prior sessions for cfg without constructing a live
// Session, per spec.md §4.9's "list_sessions(project_dir)".
func ListSessions(cfg config.Config) ([]event.SessionRecord, error) {
	executable := cfg.Executable
	if executable == "" {
		executable = argbuild.DefaultExecutable(cfg.Kind)
	}

	switch cfg.Kind {
	case config.AgentA:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("agentsession: resolve home dir: %w", err)
		}
		return agenta.ListSessions(home, cfg.ProjectDir)
	case config.AgentB:
		return agentb.ListSessions(executable, cfg.ProjectDir)
	case config.AgentC:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("agentsession: resolve home dir: %w", err)
		}
		return agentc.ListSessions(home, cfg.ProjectDir)
	default:
		return nil, fmt.Errorf("agentsession: unknown Kind %q", cfg.Kind)
	}
}
