package confirm

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrPromptNotFound = errors.New("confirmation prompt not found")
	ErrAlreadyAsked   = errors.New("confirmation prompt already asked")
)

type entry struct {
	owner  string
	key    string
	prompt *Prompt
}

// Registry keeps the prompts awaiting an answer, each one answerable only by its owner.
// Prompts stay until resolved or replaced by a newer prompt of the same owner and key.
type Registry struct {
	mu      sync.Mutex
	prompts map[string]entry
	byKey   map[string]string // {owner+key: promptID}
}

func NewRegistry() *Registry {
	return &Registry{
		prompts: make(map[string]entry),
		byKey:   make(map[string]string),
	}
}

func ownerKey(owner, key string) string {
	return owner + "\x00" + key
}

// Add asks the prompt and stores it, returning its id.
// A non-empty key identifies what the prompt is about (e.g. "course:delete:7"): an awaiting prompt of the
// same owner and key is dropped unanswered and its id returned as replaced.
func (r *Registry) Add(owner, key string, p *Prompt) (id, replaced string, err error) {
	if !p.Ask() {
		return "", "", ErrAlreadyAsked
	}
	id = uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	if key != "" {
		k := ownerKey(owner, key)
		if old, ok := r.byKey[k]; ok {
			delete(r.prompts, old)
			replaced = old
		}
		r.byKey[k] = id
	}
	r.prompts[id] = entry{owner: owner, key: key, prompt: p}
	return id, replaced, nil
}

// Get returns an awaiting prompt of owner.
func (r *Registry) Get(owner, id string) (*Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.prompts[id]
	if !ok || e.owner != owner {
		return nil, ErrPromptNotFound
	}
	return e.prompt, nil
}

// Pending returns the ids of the prompts awaiting an answer from owner.
func (r *Registry) Pending(owner string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for id, e := range r.prompts {
		if e.owner == owner {
			ids = append(ids, id)
		}
	}
	return ids
}

// Resolve answers the prompt `id` of owner and forgets it. The callback runs before Resolve returns.
func (r *Registry) Resolve(owner, id string, confirmed bool) (bool, error) {
	r.mu.Lock()
	e, ok := r.prompts[id]
	if !ok || e.owner != owner {
		r.mu.Unlock()
		return false, ErrPromptNotFound
	}
	delete(r.prompts, id)
	if e.key != "" {
		delete(r.byKey, ownerKey(owner, e.key))
	}
	r.mu.Unlock()

	return e.prompt.Resolve(confirmed), nil
}
