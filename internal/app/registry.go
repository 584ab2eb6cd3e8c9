package app

import (
	"fmt"
	"sync"
)

// MemoryRegistry is an in-process Registry. The HTTP adapter and the tests
// use it in place of a real editor host.
type MemoryRegistry struct {
	mu       sync.Mutex
	commands map[string]Command
	order    []string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{commands: make(map[string]Command)}
}

func (r *MemoryRegistry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[cmd.ID]; exists {
		return fmt.Errorf("command %q is already registered", cmd.ID)
	}
	r.commands[cmd.ID] = cmd
	r.order = append(r.order, cmd.ID)
	return nil
}

func (r *MemoryRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[id]; !exists {
		return
	}
	delete(r.commands, id)
	for i, have := range r.order {
		if have == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the registered command with the given id.
func (r *MemoryRegistry) Lookup(id string) (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// List returns the registered commands in registration order.
func (r *MemoryRegistry) List() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.commands[id])
	}
	return out
}

var _ Registry = (*MemoryRegistry)(nil)
