package command

import (
	"fmt"

	"github.com/cory-johannsen/quartermaster/internal/game/player"
	"github.com/cory-johannsen/quartermaster/internal/game/view"
)

// Block is one ordered piece of output: a line of text or a table.
type Block struct {
	Text  string      `json:"text,omitempty"`
	Table *view.Table `json:"table,omitempty"`
}

// Response is the display data produced by one input line. Frontends
// render Blocks in order.
type Response struct {
	Blocks []Block `json:"blocks"`
	// Profile is set when the player's stats changed or were requested.
	Profile *player.Profile `json:"profile,omitempty"`
	// Quit asks network frontends to end the session.
	Quit bool `json:"quit,omitempty"`
	// Err is the domain error behind a rejected line; its message has
	// already been added to Blocks.
	Err error `json:"-"`
}

// Say appends a formatted text line.
func (r *Response) Say(format string, args ...any) {
	r.Blocks = append(r.Blocks, Block{Text: fmt.Sprintf(format, args...)})
}

// Show appends a table.
func (r *Response) Show(t view.Table) {
	r.Blocks = append(r.Blocks, Block{Table: &t})
}

// Messages returns the text lines in order.
func (r *Response) Messages() []string {
	var out []string
	for _, b := range r.Blocks {
		if b.Table == nil {
			out = append(out, b.Text)
		}
	}
	return out
}

// Tables returns the tables in order.
func (r *Response) Tables() []view.Table {
	var out []view.Table
	for _, b := range r.Blocks {
		if b.Table != nil {
			out = append(out, *b.Table)
		}
	}
	return out
}
