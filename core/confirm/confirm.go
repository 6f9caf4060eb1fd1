// Package confirm asks for a confirmation before destructive actions.
// A Prompt moves from idle to awaiting when asked, and is resolved at most once, by confirming
// or cancelling; it never expires.
package confirm

import (
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateAwaiting
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateAwaiting:
		return "awaiting"
	case StateResolved:
		return "resolved"
	default:
		return "idle"
	}
}

const (
	ConfirmLabel = "Confirmar"
	CancelLabel  = "Cancelar"
)

type Prompt struct {
	Message string

	onConfirm func()
	onCancel  func()

	mu        sync.Mutex
	state     State
	confirmed bool
}

// NewPrompt returns an idle prompt. Exactly one of onConfirm or onCancel runs once the prompt
// is resolved; either may be nil.
func NewPrompt(message string, onConfirm, onCancel func()) *Prompt {
	return &Prompt{Message: message, onConfirm: onConfirm, onCancel: onCancel}
}

// Ask presents the prompt. It reports false if the prompt was already asked or resolved.
func (p *Prompt) Ask() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return false
	}
	p.state = StateAwaiting
	return true
}

// Resolve records the user's choice and runs the matching callback. Only the first resolution
// of an awaiting prompt counts: it reports false otherwise and nothing runs.
func (p *Prompt) Resolve(confirmed bool) bool {
	p.mu.Lock()
	if p.state != StateAwaiting {
		p.mu.Unlock()
		return false
	}
	p.state = StateResolved
	p.confirmed = confirmed
	p.mu.Unlock()

	cb := p.onCancel
	if confirmed {
		cb = p.onConfirm
	}
	if cb != nil {
		cb()
	}
	return true
}

func (p *Prompt) Confirm() bool { return p.Resolve(true) }
func (p *Prompt) Cancel() bool  { return p.Resolve(false) }

func (p *Prompt) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Confirmed reports the choice of a resolved prompt.
func (p *Prompt) Confirmed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == StateResolved && p.confirmed
}
