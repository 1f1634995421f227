package client

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const calendarPath = "/api/db/calendarEntries"

// CalendarEntry mirrors one calendar document. The wire name of Category is
// "type".
type CalendarEntry struct {
	ID          string    `json:"_id,omitempty"`
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"type"`
}

// CalendarPatch updates a calendar entry; only non-nil fields are sent.
type CalendarPatch struct {
	ID          string     `json:"_id"`
	Date        *time.Time `json:"date,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"type,omitempty"`
}

// CalendarViewModel holds the locally cached calendar list.
type CalendarViewModel struct {
	api     *Client
	entries []CalendarEntry
}

// NewCalendarViewModel creates an empty calendar view-model.
func NewCalendarViewModel(api *Client) *CalendarViewModel {
	return &CalendarViewModel{api: api}
}

// Load replaces the local list with the full collection.
func (vm *CalendarViewModel) Load(ctx context.Context) error {
	entries := []CalendarEntry{}
	if err := vm.api.do(ctx, http.MethodGet, calendarPath, nil, nil, &entries); err != nil {
		return err
	}
	vm.entries = entries
	return nil
}

// Add inserts a new entry and reloads the list. The returned entry carries
// the store-assigned identifier.
func (vm *CalendarViewModel) Add(ctx context.Context, draft CalendarEntry) (CalendarEntry, error) {
	draft.ID = ""

	var inserted CalendarEntry
	if err := vm.api.do(ctx, http.MethodPost, calendarPath, nil, draft, &inserted); err != nil {
		return CalendarEntry{}, err
	}
	if err := vm.Load(ctx); err != nil {
		return CalendarEntry{}, err
	}
	return inserted, nil
}

// Apply merge-updates one entry and reloads the list.
func (vm *CalendarViewModel) Apply(ctx context.Context, patch CalendarPatch) error {
	if err := vm.api.do(ctx, http.MethodPut, calendarPath, nil, patch, nil); err != nil {
		return err
	}
	return vm.Load(ctx)
}

// Remove deletes one entry and reloads the list.
func (vm *CalendarViewModel) Remove(ctx context.Context, id string) error {
	if err := vm.api.do(ctx, http.MethodDelete, calendarPath, nil, map[string]string{"id": id}, nil); err != nil {
		return err
	}
	return vm.Load(ctx)
}

// Entries returns the cached list.
func (vm *CalendarViewModel) Entries() []CalendarEntry {
	out := make([]CalendarEntry, len(vm.entries))
	copy(out, vm.entries)
	return out
}

// EntriesOn returns the entries falling on the same calendar day as day.
func (vm *CalendarViewModel) EntriesOn(day time.Time) []CalendarEntry {
	y, m, d := day.Date()
	matched := []CalendarEntry{}
	for _, e := range vm.entries {
		ey, em, ed := e.Date.Date()
		if ey == y && em == m && ed == d {
			matched = append(matched, e)
		}
	}
	return matched
}

// SortedByDate returns the entries ordered by date ascending.
func (vm *CalendarViewModel) SortedByDate() []CalendarEntry {
	out := vm.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
