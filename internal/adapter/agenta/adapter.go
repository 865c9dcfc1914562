// Package agenta implements the long-lived bidirectional session engine
// (spec.md §4.5): one child serves every turn, stdin and stdout both speak
// stream-json, and tool approval is routed through an out-of-band control
// channel. Goroutine/pipe shape grounded on
// other_examples/b26f6380_shaharia-lab-claude-agent-sdk-go__claude-process.go.go.
package agenta

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/csells/agentsession/approval"
	"github.com/csells/agentsession/config"
	"github.com/csells/agentsession/event"
	"github.com/csells/agentsession/internal/argbuild"
	"github.com/csells/agentsession/internal/child"
	"github.com/csells/agentsession/internal/wire/agenta"
	"github.com/csells/agentsession/lineframe"
)

// Adapter is AgentA's session engine. Zero value is not usable; construct
// with New.
type Adapter struct {
	cfg    config.Config
	logger *slog.Logger

	mu            sync.Mutex
	sup           *child.Supervisor
	sessionID     string
	turnInFlight  bool
	cancelling    bool
	closed        bool
	turnSeq       int
	currentTurnID string

	events chan event.Event

	// approvalGroup tracks every in-flight approval round-trip goroutine
	// (spec.md §5), collecting their errors instead of discarding them.
	approvalGroup errgroup.Group
}

// New constructs an Adapter for cfg. No child is spawned yet.
func New(cfg config.Config) *Adapter {
	if cfg.Executable == "" {
		cfg.Executable = argbuild.DefaultExecutable(config.AgentA)
	}
	return &Adapter{
		cfg:       cfg,
		logger:    slog.Default().With("adapter", "agent_a"),
		sessionID: cfg.ResumeID,
		events:    make(chan event.Event, 256),
	}
}

// Events returns the event stream. Closed once the session terminates.
func (a *Adapter) Events() <-chan event.Event { return a.events }

// SessionID returns the latched session id, empty until the first init
// event arrives.
func (a *Adapter) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// SendMessage starts the child on the first call and writes prompt on its
// stdin on every call, failing fast if a turn is already in flight.
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
	a.currentTurnID = turnID

	spawning := a.sup == nil
	if spawning {
		// A child spawned after Cancel resumes the session already latched.
		spawnCfg := a.cfg
		if a.sessionID != "" {
			spawnCfg.ResumeID = a.sessionID
		}
		args := argbuild.BuildA(spawnCfg)
		sup, err := child.Start(child.Spec{
			Executable: a.cfg.Executable,
			Args:       args,
			Dir:        a.cfg.ProjectDir,
			Env:        a.cfg.Env,
			Stdin:      true,
		})
		if err != nil {
			a.mu.Unlock()
			a.closeLocked()
			return fmt.Errorf("agenta: spawn failure: %w", err)
		}
		a.sup = sup
	}
	a.turnInFlight = true
	sup := a.sup
	a.mu.Unlock()

	if spawning {
		go a.pump()
	}

	line, err := agenta.UserMessageLine(prompt)
	if err != nil {
		return fmt.Errorf("agenta: encode user message: %w", err)
	}
	if _, err := sup.Stdin().Write(line); err != nil {
		return fmt.Errorf("agenta: write stdin: %w", err)
	}
	return nil
}

// Cancel kills the running child, if any, and synthesizes TurnEnd
// Cancelled once the pump observes the exit. A later SendMessage spawns a
// fresh child, per spec.md §4.8: "after cancel, send_message is allowed
// again."
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

// Close terminates the child unconditionally and closes the event stream.
// Safe to call more than once.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	sup := a.sup
	a.mu.Unlock()
	if sup != nil {
		sup.Kill()
		_ = sup.Wait(context.Background())
	}
	a.closeLocked()
	return nil
}

func (a *Adapter) closeLocked() {
	a.mu.Lock()
	already := a.closed
	a.closed = true
	a.mu.Unlock()
	if !already {
		if err := a.approvalGroup.Wait(); err != nil {
			a.logger.Warn("approval round-trip failed", "error", err)
		}
		close(a.events)
	}
}

// pump reads the child's stdout for the life of the child (every turn this
// session runs, since AgentA reuses one child), decoding each line and
// driving the approval control channel.
func (a *Adapter) pump() {
	scanner := lineframe.New(a.sup.Stdout())
	for {
		raw, ok := scanner.Next()
		if !ok {
			break
		}

		turnID := a.turnID()
		ctx := agenta.Context{SessionID: a.SessionID()}
		events, canUseTool, err := agenta.Decode(raw, ctx)
		if err != nil {
			a.emitFatal(event.Event{
				Kind:         event.KindError,
				SessionID:    a.SessionID(),
				TurnID:       turnID,
				ErrorMessage: fmt.Sprintf("agenta: framing failure: %v", err),
			})
			a.sup.Kill()
			return
		}

		turnEnded := false
		for _, ev := range events {
			ev.TurnID = turnID
			ev.Timestamp = event.ParseTimestamp(raw)
			if ev.Kind == event.KindInit {
				if !a.latchSessionID(ev.SessionID) {
					a.emitFatal(event.Event{
						Kind:         event.KindError,
						SessionID:    ev.SessionID,
						TurnID:       turnID,
						ErrorMessage: fmt.Sprintf("agenta: %v: resumed session id does not match requested id", event.ErrProtocolViolation),
					})
					a.sup.Kill()
					return
				}
			}
			if ev.Kind == event.KindError {
				a.setTurnInFlight(false)
				a.sup.Kill()
				a.emitFatal(ev)
				return
			}
			if ev.Kind == event.KindTurnEnd {
				turnEnded = true
			}
			a.emit(ev)
		}

		if canUseTool != nil {
			a.handleApproval(*canUseTool)
		}

		if turnEnded {
			a.setTurnInFlight(false)
		}
	}

	a.onExit(a.turnID())
}

func (a *Adapter) turnID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentTurnID
}

// handleApproval runs the consumer's handler in a background goroutine so
// the pump keeps consuming stdout while the handler suspends (spec.md §5).
func (a *Adapter) handleApproval(req agenta.CanUseToolRequest) {
	a.approvalGroup.Go(func() error {
		unified := approval.FromNative(req.RequestID, req.ToolName, req.Description, req.Input)
		resp := a.resolveApproval(unified)
		behavior, updatedInput := approval.NativeBehavior(resp, req.Input)
		line, err := agenta.ControlResponseLine(req.RequestID, behavior, updatedInput, resp.Message)
		if err != nil {
			return fmt.Errorf("agenta: encode control response: %w", err)
		}
		a.mu.Lock()
		sup := a.sup
		closed := a.closed
		a.mu.Unlock()
		if sup == nil || closed {
			return nil
		}
		_, err = sup.Stdin().Write(line)
		return err
	})
}

func (a *Adapter) resolveApproval(req event.ApprovalRequest) (resp event.ApprovalResponse) {
	if a.cfg.ApprovalHandler == nil {
		return approval.AutoDeny("no approval handler configured")
	}
	defer func() {
		if r := recover(); r != nil {
			resp = approval.AutoDeny(fmt.Sprintf("approval handler panicked: %v", r))
		}
	}()
	return a.cfg.ApprovalHandler(req)
}

// onExit runs once the child's stdout has closed. A nonzero exit (or any
// exit mid-turn with no terminal event observed) is a fatal Exit failure,
// per spec.md §4.4.
func (a *Adapter) onExit(turnID string) {
	a.mu.Lock()
	sup := a.sup
	inFlight := a.turnInFlight
	cancelling := a.cancelling
	closing := a.closed
	a.mu.Unlock()
	if sup == nil {
		return
	}
	_ = sup.Wait(context.Background())

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
		a.mu.Lock()
		a.turnInFlight = false
		a.cancelling = false
		a.sup = nil
		a.mu.Unlock()
		return
	}

	if inFlight {
		msg := fmt.Sprintf("agent_a process exited with code %d: %s", sup.ExitCode(), sup.Stderr())
		a.emit(event.Event{
			Kind:         event.KindTurnEnd,
			SessionID:    a.SessionID(),
			TurnID:       turnID,
			Status:       event.TurnError,
			ErrorMessage: msg,
		})
		a.setTurnInFlight(false)
		a.closeLocked()
		return
	}
	if sup.ExitCode() != 0 {
		a.emitFatal(event.Event{
			Kind:         event.KindError,
			SessionID:    a.SessionID(),
			ErrorMessage: fmt.Sprintf("agent_a process exited with code %d: %s", sup.ExitCode(), sup.Stderr()),
		})
	}
}

func (a *Adapter) latchSessionID(sid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sessionID == "" {
		a.sessionID = sid
		return true
	}
	if a.cfg.ResumeID != "" && a.cfg.ResumeID != sid {
		return false
	}
	return a.sessionID == sid || sid == ""
}

func (a *Adapter) setTurnInFlight(v bool) {
	a.mu.Lock()
	a.turnInFlight = v
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

func (a *Adapter) emitFatal(ev event.Event) {
	a.logger.Error("fatal error on session", "session_id", ev.SessionID, "message", ev.ErrorMessage)
	a.emit(ev)
	a.closeLocked()
}
