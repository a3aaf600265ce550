package projector

import (
	"fmt"
	"sort"
)

// Warnings collects distinct warning messages. A nil *Warnings discards
// everything added to it.
type Warnings struct {
	seen map[string]struct{}
}

// NewWarnings returns an empty warning set.
func NewWarnings() *Warnings {
	return &Warnings{seen: make(map[string]struct{})}
}

// Add records msg once.
func (w *Warnings) Add(msg string) {
	if w == nil {
		return
	}
	w.seen[msg] = struct{}{}
}

// Unsupported records an unsupported column.
func (w *Warnings) Unsupported(name, typeName string) {
	w.Add(fmt.Sprintf("Unsupported column, %s, type %s", name, typeName))
}

// Len returns the number of distinct warnings.
func (w *Warnings) Len() int {
	if w == nil {
		return 0
	}
	return len(w.seen)
}

// List returns the warnings in sorted order.
func (w *Warnings) List() []string {
	if w == nil {
		return nil
	}
	list := make([]string, 0, len(w.seen))
	for msg := range w.seen {
		list = append(list, msg)
	}
	sort.Strings(list)
	return list
}
