// Package view holds presentation-neutral data handed to frontends.
package view

// Table is a titled grid of strings. Frontends decide how to draw it.
type Table struct {
	Title  string     `json:"title,omitempty"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }
