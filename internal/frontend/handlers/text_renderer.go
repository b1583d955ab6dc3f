// Package handlers connects line-oriented frontends to game sessions and
// renders responses as plain text.
package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/cory-johannsen/quartermaster/internal/game/command"
	"github.com/cory-johannsen/quartermaster/internal/game/view"
)

// RenderTable lays out t as left-aligned columns separated by " | ", with
// a rule under the header. A titled table starts with its title.
func RenderTable(t view.Table) []string {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var lines []string
	if t.Title != "" {
		lines = append(lines, t.Title)
	}
	lines = append(lines, formatRow(t.Header, widths))
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	lines = append(lines, strings.Join(rule, "-+-"))
	for _, row := range t.Rows {
		lines = append(lines, formatRow(row, widths))
	}
	return lines
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell))
	}
	return strings.TrimRight(strings.Join(parts, " | "), " ")
}

// RenderResponse flattens resp into display lines in block order.
func RenderResponse(resp *command.Response) []string {
	var lines []string
	for _, b := range resp.Blocks {
		if b.Table != nil {
			lines = append(lines, RenderTable(*b.Table)...)
			continue
		}
		lines = append(lines, b.Text)
	}
	return lines
}
