package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseCollection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Collection
		wantErr bool
	}{
		{name: "calendar", input: "calendarEntries", want: CollectionCalendarEntries},
		{name: "tasks", input: "taskEntries", want: CollectionTaskEntries},
		{name: "schedule", input: "scheduleEntries", want: CollectionScheduleEntries},
		{name: "unknown", input: "users", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "CalendarEntries", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCollection(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCollection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollections(t *testing.T) {
	cols := Collections()
	assert.Len(t, cols, 3)
	for _, col := range cols {
		_, err := ParseCollection(col.String())
		assert.NoError(t, err)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339",
			input: "2024-03-13T10:30:00Z",
			want:  time.Date(2024, 3, 13, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 nano",
			input: "2024-03-13T10:30:00.250Z",
			want:  time.Date(2024, 3, 13, 10, 30, 0, 250*int(time.Millisecond), time.UTC),
		},
		{
			name:  "calendar day",
			input: "2024-03-13",
			want:  time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got.Time, tt.want)
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseDate("13/03/2024")
		assert.Error(t, err)
	})
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 13, 10, 30, 0, 0, time.UTC))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-13T10:30:00Z"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(d.Time))
}

func TestDateUnmarshalCalendarDay(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-13"`), &d))
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), d.Time)
}

func TestDateUnmarshalNull(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.False(t, d.IsZero())
}

func TestCalendarEntryJSONFieldNames(t *testing.T) {
	entry := CalendarEntry{
		Date:     NewDate(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)),
		Title:    "Midterm",
		Category: CalendarCategoryExam,
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	// Category travels as "type". ObjectID is an array type, so omitempty
	// never drops it: a zero id serializes as the nil hex string, and the
	// create path guards on the value rather than on presence.
	assert.Equal(t, "exam", doc["type"])
	assert.NotContains(t, doc, "category")
	assert.Equal(t, primitive.NilObjectID.Hex(), doc["_id"])
}

func TestZeroIDRoundTripsAsZero(t *testing.T) {
	data, err := json.Marshal(CalendarEntry{
		Date:     NewDate(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)),
		Title:    "Midterm",
		Category: CalendarCategoryExam,
	})
	require.NoError(t, err)

	var back CalendarEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.ID.IsZero(), "a serialized zero id must still read back as zero")
}

func TestTaskEntryRangeDate(t *testing.T) {
	task := TaskEntry{
		Title:   "Finish lab report",
		DueDate: NewDate(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)),
	}

	_, ok := task.RangeDate()
	assert.False(t, ok, "tasks carry dueDate, not date, so they never match a date range")

	cal := CalendarEntry{Date: NewDate(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC))}
	date, ok := cal.RangeDate()
	assert.True(t, ok)
	assert.Equal(t, cal.Date.Time, date)
}

func TestPatchOmitsUnsetFields(t *testing.T) {
	title := "Renamed"
	patch := TaskEntryPatch{
		ID:    primitive.NewObjectID(),
		Title: &title,
	}

	data, err := json.Marshal(patch)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Renamed", doc["title"])
	assert.NotContains(t, doc, "description")
	assert.NotContains(t, doc, "dueDate")
	assert.NotContains(t, doc, "completed")
}

func TestPatchID(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, id, CalendarEntryPatch{ID: id}.PatchID())
	assert.Equal(t, id, ScheduleEntryPatch{ID: id}.PatchID())
	assert.Equal(t, id, TaskEntryPatch{ID: id}.PatchID())
}

func TestEntryCollection(t *testing.T) {
	assert.Equal(t, CollectionCalendarEntries, CalendarEntry{}.EntryCollection())
	assert.Equal(t, CollectionScheduleEntries, ScheduleEntry{}.EntryCollection())
	assert.Equal(t, CollectionTaskEntries, TaskEntry{}.EntryCollection())
}
