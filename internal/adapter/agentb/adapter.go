// Package agentb implements the app-server per-turn session engine
// (spec.md §4.6): one shared child process serves every turn over explicit
// turn.started/turn.completed/turn.failed boundaries, with approval routed
// through a dedicated RPC channel rather than AgentA's stdin control lines.
// Adapter-struct shape (mutex-guarded state, channel-based event
// signaling) grounded on
// other_examples/43c7a4d1_kdlbs-kandev…amp_adapter.go.go's
// PermissionHandler/SetPermissionHandler pattern.
package agentb

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
	"github.com/csells/agentsession/internal/wire/agentb"
	"github.com/csells/agentsession/lineframe"
)

// Adapter is AgentB's session engine.
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

	// textSeen marks that a partial or final Text event has already been
	// emitted for the current turn, so a trailing item.completed for the
	// same agent_message is suppressed (spec.md §4.6).
	textSeen bool

	events chan event.Event
	// approvalGroup tracks every in-flight approval round-trip goroutine
	// (spec.md §5), collecting their errors instead of discarding them.
	approvalGroup errgroup.Group
}

// New constructs an Adapter for cfg. No child is spawned yet.
func New(cfg config.Config) *Adapter {
	if cfg.Executable == "" {
		cfg.Executable = argbuild.DefaultExecutable(config.AgentB)
	}
	return &Adapter{
		cfg:       cfg,
		logger:    slog.Default().With("adapter", "agent_b"),
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

// SendMessage starts the shared child on the first call and sends a
// turn.start RPC frame on every call.
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
	a.textSeen = false

	spawning := a.sup == nil
	if spawning {
		// A child spawned after Cancel resumes the thread already latched.
		spawnCfg := a.cfg
		if a.sessionID != "" {
			spawnCfg.ResumeID = a.sessionID
		}
		args := argbuild.BuildB(spawnCfg)
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
			return fmt.Errorf("agentb: spawn failure: %w", err)
		}
		a.sup = sup
	}
	a.turnInFlight = true
	sup := a.sup
	a.mu.Unlock()

	if spawning {
		go a.pump()
	}

	line, requestID, err := agentb.TurnFrame(prompt)
	if err != nil {
		return fmt.Errorf("agentb: encode turn frame: %w", err)
	}
	a.logger.Debug("turn started", "turn_id", turnID, "request_id", requestID)
	if _, err := sup.Stdin().Write(line); err != nil {
		return fmt.Errorf("agentb: write stdin: %w", err)
	}
	return nil
}

// Cancel kills the shared child; a later SendMessage spawns a fresh one.
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

func (a *Adapter) pump() {
	scanner := lineframe.New(a.sup.Stdout())
	for {
		raw, ok := scanner.Next()
		if !ok {
			break
		}

		turnID := a.turnID()
		ctx := agentb.Context{SessionID: a.SessionID()}
		events, approvalReq, err := agentb.Decode(raw, ctx)
		if err != nil {
			a.emitFatal(event.Event{
				Kind:         event.KindError,
				SessionID:    a.SessionID(),
				TurnID:       turnID,
				ErrorMessage: fmt.Sprintf("agentb: framing failure: %v", err),
			})
			a.sup.Kill()
			return
		}

		turnEnded := false
		for _, ev := range events {
			ev.TurnID = turnID
			ev.Timestamp = event.ParseTimestamp(raw)

			if ev.Kind == event.KindInit && ev.SessionID != "" {
				if !a.latchSessionID(ev.SessionID) {
					a.emitFatal(event.Event{
						Kind:         event.KindError,
						SessionID:    ev.SessionID,
						TurnID:       turnID,
						ErrorMessage: fmt.Sprintf("agentb: %v: resumed session id does not match requested id", event.ErrProtocolViolation),
					})
					a.sup.Kill()
					return
				}
				a.emit(ev)
				continue
			}

			if ev.Kind == event.KindText {
				a.mu.Lock()
				suppress := !ev.IsPartial && a.textSeen
				if !suppress {
					a.textSeen = true
				}
				a.mu.Unlock()
				if suppress {
					continue
				}
				a.emit(ev)
				continue
			}

			if ev.Kind == event.KindTurnEnd {
				turnEnded = true
			}
			a.emit(ev)
		}

		if approvalReq != nil {
			a.handleApproval(*approvalReq)
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

func (a *Adapter) handleApproval(req agentb.ApprovalRequiredEvent) {
	a.approvalGroup.Go(func() error {
		unified := approval.FromNative(req.RequestID, req.ToolName, req.Description, req.Input)
		resp := a.resolveApproval(unified)
		behavior, _ := approval.NativeBehavior(resp, req.Input)
		line, err := agentb.ApprovalResponseLine(req.RequestID, behavior, resp.Message)
		if err != nil {
			return fmt.Errorf("agentb: encode approval response: %w", err)
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
		msg := fmt.Sprintf("agent_b process exited with code %d: %s", sup.ExitCode(), sup.Stderr())
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
			ErrorMessage: fmt.Sprintf("agent_b process exited with code %d: %s", sup.ExitCode(), sup.Stderr()),
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
	return a.sessionID == sid
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
