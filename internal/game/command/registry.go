package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/quartermaster/internal/game/view"
)

// Registry resolves verbs to Commands. Lookup keys are lowercase.
type Registry struct {
	byVerb map[string]*Command
	names  []string
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: Names and aliases are non-empty, contain no Separator and
// are unique across all commands.
// Postcondition: Returns a Registry or the first collision found.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{byVerb: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		if err := r.add(&cmds[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(cmd *Command) error {
	verbs := append([]string{cmd.Name}, cmd.Aliases...)
	for _, v := range verbs {
		key := strings.ToLower(v)
		if key == "" || strings.Contains(key, Separator) {
			return fmt.Errorf("command %q: invalid verb %q", cmd.Name, v)
		}
		if prev, taken := r.byVerb[key]; taken {
			return fmt.Errorf("command %q: verb %q already bound to %q", cmd.Name, v, prev.Name)
		}
		r.byVerb[key] = cmd
	}
	r.names = append(r.names, cmd.Name)
	return nil
}

// DefaultRegistry returns a Registry of BuiltinCommands. It panics if the
// built-in table is inconsistent.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("built-in commands: %v", err))
	}
	return r
}

// Resolve returns the command bound to verb, case-insensitively.
func (r *Registry) Resolve(verb string) (*Command, bool) {
	cmd, ok := r.byVerb[strings.ToLower(verb)]
	return cmd, ok
}

// Commands returns each command once, grouped by category and then sorted
// by name.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byVerb[strings.ToLower(name)])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Table renders every command for the help listing.
func (r *Registry) Table() view.Table {
	t := view.Table{Title: "Commands", Header: []string{"Command", "Aliases", "Description"}}
	for _, cmd := range r.Commands() {
		name := cmd.Name
		if cmd.Usage != "" {
			name = cmd.Usage
		}
		t.Rows = append(t.Rows, []string{name, strings.Join(cmd.Aliases, ", "), cmd.Help})
	}
	return t
}
