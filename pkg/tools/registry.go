package tools

import (
	"sort"
	"sync"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// RegistrationOutcome reports what RegisterOrUpdate did.
type RegistrationOutcome string

const (
	OutcomeCreated   RegistrationOutcome = "created"
	OutcomeUpdated   RegistrationOutcome = "updated"
	OutcomeUnchanged RegistrationOutcome = "unchanged"
)

// Registry is the authoritative capability boundary: a tool absent from the
// registry is not executable by the agent. It is an owned object passed by
// reference into the Agent and Executor, never a process-wide singleton.
//
// Safe for concurrent registration and lookup; a live registration endpoint
// may add tools while turns are running.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]core.Contract
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]core.Contract)}
}

// Register adds a new contract, rejecting duplicates and unnamed tools.
func (r *Registry) Register(contract core.Contract) error {
	if contract.Name == "" {
		return errors.Newf(errors.CodeValidation, "tool contract must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[contract.Name]; exists {
		return errors.Newf(errors.CodeValidation, "tool %q is already registered", contract.Name)
	}
	r.tools[contract.Name] = contract
	return nil
}

// RegisterMany atomically registers multiple contracts: either all are
// added or none.
func (r *Registry) RegisterMany(contracts []core.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range contracts {
		if c.Name == "" {
			return errors.Newf(errors.CodeValidation, "tool contract must have a name")
		}
		if _, exists := r.tools[c.Name]; exists {
			return errors.Newf(errors.CodeValidation, "tool %q is already registered", c.Name)
		}
	}
	for _, c := range contracts {
		r.tools[c.Name] = c
	}
	return nil
}

// RegisterOrUpdate upserts a contract and reports whether it was created,
// updated, or identical to what is already registered. Re-registering an
// unchanged contract is idempotent.
func (r *Registry) RegisterOrUpdate(contract core.Contract) (RegistrationOutcome, error) {
	if contract.Name == "" {
		return "", errors.Newf(errors.CodeValidation, "tool contract must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, exists := r.tools[contract.Name]
	if !exists {
		r.tools[contract.Name] = contract
		return OutcomeCreated, nil
	}
	if existing.Equal(contract) {
		return OutcomeUnchanged, nil
	}
	r.tools[contract.Name] = contract
	return OutcomeUpdated, nil
}

// Get retrieves a contract by name.
func (r *Registry) Get(name string) (core.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contract, ok := r.tools[name]
	if !ok {
		return core.Contract{}, errors.Newf(errors.CodeNotFound, "tool %q is not registered", name)
	}
	return contract, nil
}

// Has reports whether a tool exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// List returns all contracts sorted by name.
func (r *Registry) List() []core.Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Contract, 0, len(r.tools))
	for _, c := range r.tools {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all registered tool names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// InputSchema returns the declared input schema for a tool.
func (r *Registry) InputSchema(name string) (core.Schema, error) {
	contract, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return contract.InputSchema, nil
}

// OutputSchema returns the declared output schema for a tool.
func (r *Registry) OutputSchema(name string) (core.Schema, error) {
	contract, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return contract.OutputSchema, nil
}
