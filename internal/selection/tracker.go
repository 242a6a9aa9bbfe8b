// Package selection tracks the set of row ids chosen for a bulk action.
// The tracker does not validate ids against the visible row set; callers are
// expected to Clear on every filter or data change so stale rows are never
// acted on.
package selection

import "sort"

type Tracker struct {
	ids map[string]struct{}
}

func New() *Tracker {
	return &Tracker{ids: make(map[string]struct{})}
}

// Toggle flips the selection state of a single id.
func (t *Tracker) Toggle(id string) {
	if _, ok := t.ids[id]; ok {
		delete(t.ids, id)
		return
	}
	t.ids[id] = struct{}{}
}

// SelectAll adds every given id. Already-selected ids are unaffected.
func (t *Tracker) SelectAll(ids []string) {
	for _, id := range ids {
		t.ids[id] = struct{}{}
	}
}

// DeselectAll removes exactly the given ids, leaving unrelated selections intact.
func (t *Tracker) DeselectAll(ids []string) {
	for _, id := range ids {
		delete(t.ids, id)
	}
}

// Clear empties the selection.
func (t *Tracker) Clear() {
	t.ids = make(map[string]struct{})
}

// Has reports whether id is currently selected.
func (t *Tracker) Has(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// Count returns the number of selected ids.
func (t *Tracker) Count() int {
	return len(t.ids)
}

// Current returns the selected ids in sorted order.
func (t *Tracker) Current() []string {
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
