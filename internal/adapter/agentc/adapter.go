// Package agentc implements the spawn-per-turn session engine (spec.md
// §4.7): every send_message spawns a fresh child, passing -r <id> once a
// session id has been captured so the child reloads its own file-backed
// history. There is no interactive control channel, so the approval
// handler is never consulted. Turn/child lifetime split grounded on
// other_examples/58fe49b1_kdlbs-kandev…codex-adapter.go.go's
// threadID/turnID fields.
package agentc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/csells/agentsession/config"
	"github.com/csells/agentsession/event"
	"github.com/csells/agentsession/internal/argbuild"
	"github.com/csells/agentsession/internal/child"
	"github.com/csells/agentsession/internal/wire/agentc"
	"github.com/csells/agentsession/lineframe"
)

// Adapter is AgentC's session engine.
type Adapter struct {
	cfg    config.Config
	logger *slog.Logger

	mu           sync.Mutex
	sup          *child.Supervisor
	sessionID    string
	turnInFlight bool
	cancelling   bool
	closed       bool
	turnSeq      int

	events chan event.Event
}

// New constructs an Adapter for cfg. No child is spawned yet.
func New(cfg config.Config) *Adapter {
	if cfg.Executable == "" {
		cfg.Executable = argbuild.DefaultExecutable(config.AgentC)
	}
	return &Adapter{
		cfg:       cfg,
		logger:    slog.Default().With("adapter", "agent_c"),
		sessionID: cfg.ResumeID,
		events:    make(chan event.Event, 256),
	}
}

// Events returns the event stream.
func (a *Adapter) Events() <-chan event.Event { return a.events }

// SessionID returns the latched session id.
func (a *Adapter) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// SendMessage spawns a fresh child for this turn, passing -r <id> whenever
// a prior turn (or a resumed Config) has already established a session id.
func (a *Adapter) SendMessage(ctx context.Context, prompt string) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return event.ErrClosed
	}
	if a.turnInFlight {
		a.mu.Unlock()
		return event.ErrInFlight
	}
	a.turnSeq++
	turnID := strconv.Itoa(a.turnSeq)
	resuming := a.sessionID != ""
	resumeID := a.sessionID
	a.mu.Unlock()

	turnCfg := a.cfg
	turnCfg.ResumeID = resumeID
	args := argbuild.PromptArgsC(argbuild.BuildC(turnCfg), prompt, resuming)

	sup, err := child.Start(child.Spec{
		Executable: a.cfg.Executable,
		Args:       args,
		Dir:        a.cfg.ProjectDir,
		Env:        a.cfg.Env,
		Stdin:      false,
	})
	if err != nil {
		return fmt.Errorf("agentc: spawn failure: %w", err)
	}
	sup.CloseStdin()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		sup.Kill()
		return event.ErrClosed
	}
	a.sup = sup
	a.turnInFlight = true
	a.mu.Unlock()

	go a.pump(sup, turnID)
	return nil
}

// Cancel kills the running child, if any.
func (a *Adapter) Cancel() {
	a.mu.Lock()
	sup := a.sup
	inFlight := a.turnInFlight
	if inFlight {
		a.cancelling = true
	}
	a.mu.Unlock()
	if sup == nil || !inFlight {
		return
	}
	sup.Kill()
}

// Close terminates any running child and closes the event stream.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	sup := a.sup
	a.closed = true
	a.mu.Unlock()
	if sup != nil {
		sup.Kill()
		_ = sup.Wait(context.Background())
	}
	close(a.events)
	return nil
}

func (a *Adapter) pump(sup *child.Supervisor, turnID string) {
	scanner := lineframe.New(sup.Stdout())
	resultSeen := false

	for {
		raw, ok := scanner.Next()
		if !ok {
			break
		}

		ctx := agentc.Context{SessionID: a.SessionID()}
		ev, decoded, err := agentc.Decode(raw, ctx)
		if err != nil {
			a.emitFatal(sup, event.Event{
				Kind:         event.KindError,
				SessionID:    a.SessionID(),
				TurnID:       turnID,
				ErrorMessage: fmt.Sprintf("agentc: framing failure: %v", err),
			})
			return
		}
		if !decoded {
			continue
		}
		ev.TurnID = turnID
		ev.Timestamp = event.ParseTimestamp(raw)

		if ev.Kind == event.KindInit {
			a.latchSessionID(ev.SessionID)
		}
		if ev.Kind == event.KindError {
			// Only a result line flagged is_error ends the turn; an
			// "error" line is a non-terminal notice.
			var env struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(raw, &env) == nil && env.Type == "result" {
				resultSeen = true
			}
			a.emit(ev)
			continue
		}
		if ev.Kind == event.KindTurnEnd {
			resultSeen = true
		}
		a.emit(ev)
	}

	a.onExit(sup, turnID, resultSeen)
}

// onExit waits for the per-turn child to exit after its stdout closes. A
// clean exit after a result event is expected (spec.md §4.7: "the child
// exits naturally"); any other nonzero exit is a fatal error.
func (a *Adapter) onExit(sup *child.Supervisor, turnID string, resultSeen bool) {
	exitErr := sup.Wait(context.Background())

	a.mu.Lock()
	cancelling := a.cancelling
	closing := a.closed
	a.sup = nil
	a.turnInFlight = false
	a.cancelling = false
	a.mu.Unlock()

	if closing {
		return
	}

	if cancelling {
		a.emit(event.Event{
			Kind:      event.KindTurnEnd,
			SessionID: a.SessionID(),
			TurnID:    turnID,
			Status:    event.TurnCancelled,
		})
		return
	}

	if resultSeen {
		return
	}

	msg := fmt.Sprintf("agent_c process exited with code %d: %s", sup.ExitCode(), sup.Stderr())
	if exitErr == nil && sup.ExitCode() == 0 {
		msg = "agent_c process exited before a result event"
	}
	a.emitFatal(sup, event.Event{
		Kind:         event.KindError,
		SessionID:    a.SessionID(),
		TurnID:       turnID,
		ErrorMessage: msg,
	})
}

func (a *Adapter) latchSessionID(sid string) {
	if sid == "" {
		return
	}
	a.mu.Lock()
	if a.sessionID == "" {
		a.sessionID = sid
	}
	a.mu.Unlock()
}

func (a *Adapter) emit(ev event.Event) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return
	}
	a.events <- ev
}

func (a *Adapter) emitFatal(sup *child.Supervisor, ev event.Event) {
	a.logger.Error("fatal error on session", "session_id", ev.SessionID, "message", ev.ErrorMessage)
	a.emit(ev)
	sup.Kill()
	a.mu.Lock()
	already := a.closed
	a.closed = true
	a.mu.Unlock()
	if !already {
		close(a.events)
	}
}
