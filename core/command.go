package core

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// CommandHandler runs one caller-facing operation on already-unpacked arguments
type CommandHandler func(args []any) (any, error)

// Command is a registered caller-facing operation
type Command struct {
	ID      uint16
	Name    string
	Format  string // argument summary for the dictionary, e.g. "pin=%i mode=%i"
	Handler CommandHandler
}

// ReservedCommandID is never assigned by a registry; the link protocol uses
// it for dictionary retrieval.
const ReservedCommandID uint16 = 0

// CommandRegistry maps operation names and numeric IDs to handlers
type CommandRegistry struct {
	mu         sync.RWMutex
	commands   map[uint16]*Command
	nameToID   map[string]uint16
	nextID     uint16
	dictionary string
}

// NewCommandRegistry creates an empty registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
		nextID:   ReservedCommandID + 1,
	}
}

// Register adds a command and returns its ID.
// Registering a name twice returns the existing ID and keeps the first handler.
func (r *CommandRegistry) Register(name string, format string, handler CommandHandler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.nameToID[name]; exists {
		return id
	}

	id := r.nextID
	r.nextID++

	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.nameToID[name] = id

	r.rebuildDictionary()

	return id
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// Lookup retrieves a command by name
func (r *CommandRegistry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[name]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch calls the handler registered under cmdID
func (r *CommandRegistry) Dispatch(cmdID uint16, args []any) (any, error) {
	cmd, ok := r.GetCommand(cmdID)
	if !ok || cmd.Handler == nil {
		return nil, &UnknownCommandError{Name: "#" + strconv.Itoa(int(cmdID))}
	}
	return cmd.Handler(args)
}

// DispatchName calls the handler registered under name
func (r *CommandRegistry) DispatchName(name string, args []any) (any, error) {
	cmd, ok := r.Lookup(name)
	if !ok || cmd.Handler == nil {
		return nil, &UnknownCommandError{Name: name}
	}
	return cmd.Handler(args)
}

// Commands returns a name to ID map of every registered command
func (r *CommandRegistry) Commands() map[string]uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]uint16, len(r.nameToID))
	for name, id := range r.nameToID {
		out[name] = id
	}
	return out
}

// Names returns the registered command names in ID order
func (r *CommandRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.commands))
	for id := range r.commands {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, r.commands[uint16(id)].Name)
	}
	return names
}

// GetDictionary returns the command dictionary, one "id name format" line per command
func (r *CommandRegistry) GetDictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dictionary
}

// rebuildDictionary must be called with the lock held
func (r *CommandRegistry) rebuildDictionary() {
	var b strings.Builder
	for i := ReservedCommandID + 1; i < r.nextID; i++ {
		cmd, ok := r.commands[i]
		if !ok {
			continue
		}
		b.WriteString(strconv.Itoa(int(cmd.ID)))
		b.WriteByte(' ')
		b.WriteString(cmd.Name)
		if cmd.Format != "" {
			b.WriteByte(' ')
			b.WriteString(cmd.Format)
		}
		b.WriteByte('\n')
	}
	r.dictionary = b.String()
}

// ParseDictionary parses the output of GetDictionary back into a name to ID map
func ParseDictionary(dict string) (map[string]uint16, error) {
	out := make(map[string]uint16)
	for _, line := range strings.Split(dict, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		id, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return nil, err
		}
		out[fields[1]] = uint16(id)
	}
	return out, nil
}
