package client

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const schedulePath = "/api/db/scheduleEntries"

// ScheduleItem mirrors one schedule document. Start and end times are local
// HH:MM strings, as the dashboard renders them.
type ScheduleItem struct {
	ID        string    `json:"_id,omitempty"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Title     string    `json:"title"`
	Category  string    `json:"type"`
}

// SchedulePatch updates a schedule item; only non-nil fields are sent.
type SchedulePatch struct {
	ID        string     `json:"_id"`
	Date      *time.Time `json:"date,omitempty"`
	StartTime *string    `json:"startTime,omitempty"`
	EndTime   *string    `json:"endTime,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Category  *string    `json:"type,omitempty"`
}

// ScheduleViewModel holds one day's schedule, narrowed server-side by the
// day's date range.
type ScheduleViewModel struct {
	api   *Client
	day   time.Time
	items []ScheduleItem
}

// NewScheduleViewModel creates an empty schedule view-model.
func NewScheduleViewModel(api *Client) *ScheduleViewModel {
	return &ScheduleViewModel{api: api}
}

// LoadDay replaces the local list with the entries of day, querying the
// inclusive range [00:00, 23:59:59.999] in day's location.
func (vm *ScheduleViewModel) LoadDay(ctx context.Context, day time.Time) error {
	vm.day = day

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Millisecond)

	query := url.Values{}
	query.Set("startDate", start.Format(time.RFC3339Nano))
	query.Set("endDate", end.Format(time.RFC3339Nano))

	items := []ScheduleItem{}
	if err := vm.api.do(ctx, http.MethodGet, schedulePath, query, nil, &items); err != nil {
		return err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartTime < items[j].StartTime
	})
	vm.items = items
	return nil
}

// Day returns the day the view-model currently shows.
func (vm *ScheduleViewModel) Day() time.Time {
	return vm.day
}

// Add inserts a new item on the loaded day and reloads it.
func (vm *ScheduleViewModel) Add(ctx context.Context, draft ScheduleItem) (ScheduleItem, error) {
	draft.ID = ""
	if draft.Date.IsZero() {
		draft.Date = vm.day
	}

	var inserted ScheduleItem
	if err := vm.api.do(ctx, http.MethodPost, schedulePath, nil, draft, &inserted); err != nil {
		return ScheduleItem{}, err
	}
	if err := vm.LoadDay(ctx, vm.day); err != nil {
		return ScheduleItem{}, err
	}
	return inserted, nil
}

// Apply merge-updates one item and reloads the day.
func (vm *ScheduleViewModel) Apply(ctx context.Context, patch SchedulePatch) error {
	if err := vm.api.do(ctx, http.MethodPut, schedulePath, nil, patch, nil); err != nil {
		return err
	}
	return vm.LoadDay(ctx, vm.day)
}

// Remove deletes one item and reloads the day.
func (vm *ScheduleViewModel) Remove(ctx context.Context, id string) error {
	if err := vm.api.do(ctx, http.MethodDelete, schedulePath, nil, map[string]string{"id": id}, nil); err != nil {
		return err
	}
	return vm.LoadDay(ctx, vm.day)
}

// Items returns the cached list, ordered by start time.
func (vm *ScheduleViewModel) Items() []ScheduleItem {
	out := make([]ScheduleItem, len(vm.items))
	copy(out, vm.items)
	return out
}
