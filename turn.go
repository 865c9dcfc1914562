package agentsession

// Turn is the handle SendMessage returns for the turn it started. The time
// between a SendMessage and its TurnEnd is one turn (spec.md GLOSSARY).
type Turn struct {
	id      string
	session *Session
}

// TurnID identifies this turn; every event the adapter emits while this
// turn is in flight carries the same value on NormalizedEvent.TurnID.
func (t *Turn) TurnID() string { return t.id }

// Cancel terminates this turn's child and surfaces TurnEnd Cancelled on the
// Session's event stream. Equivalent to calling Session.Cancel directly,
// since only one turn can be in flight at a time.
func (t *Turn) Cancel() { t.session.Cancel() }
