package entities

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Common errors
var (
	ErrInvalidCollection = errors.New("invalid collection")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrEntryIDAssigned   = errors.New("entry id is assigned by the store")
	ErrMissingEntryID    = errors.New("entry id is required")
)

// Collection identifies one of the persisted entry collections. The set is
// closed: anything outside it is rejected before the store is touched.
type Collection string

const (
	CollectionCalendarEntries Collection = "calendarEntries"
	CollectionTaskEntries     Collection = "taskEntries"
	CollectionScheduleEntries Collection = "scheduleEntries"
)

// ParseCollection maps a request path segment onto the closed collection set.
func ParseCollection(name string) (Collection, error) {
	switch Collection(name) {
	case CollectionCalendarEntries:
		return CollectionCalendarEntries, nil
	case CollectionTaskEntries:
		return CollectionTaskEntries, nil
	case CollectionScheduleEntries:
		return CollectionScheduleEntries, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCollection, name)
}

// Collections returns every supported collection.
func Collections() []Collection {
	return []Collection{
		CollectionCalendarEntries,
		CollectionTaskEntries,
		CollectionScheduleEntries,
	}
}

func (c Collection) String() string {
	return string(c)
}

// Date is a point in time that tolerates calendar-day input. It accepts both
// RFC 3339 timestamps and bare YYYY-MM-DD values on the wire and is stored as
// a native BSON datetime.
type Date struct {
	time.Time
}

// NewDate wraps t as a Date.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// ParseDate parses s using the accepted wire layouts.
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date value %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date value %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(primitive.NewDateTimeFromTime(d.Time))
}

func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var dt primitive.DateTime
	rv := bson.RawValue{Type: t, Value: data}
	if err := rv.Unmarshal(&dt); err != nil {
		return fmt.Errorf("unmarshal date: %w", err)
	}
	d.Time = dt.Time()
	return nil
}

// CalendarCategory classifies a calendar entry.
type CalendarCategory string

const (
	CalendarCategoryClass      CalendarCategory = "class"
	CalendarCategoryAssignment CalendarCategory = "assignment"
	CalendarCategoryExam       CalendarCategory = "exam"
	CalendarCategoryOther      CalendarCategory = "other"
)

// ScheduleCategory classifies a schedule entry.
type ScheduleCategory string

const (
	ScheduleCategoryClass ScheduleCategory = "class"
	ScheduleCategoryStudy ScheduleCategory = "study"
	ScheduleCategoryBreak ScheduleCategory = "break"
	ScheduleCategoryOther ScheduleCategory = "other"
)

// TaskPriority ranks a task entry.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Entry is the common surface of the three persisted document kinds.
// RangeDate reports the value the gateway's date-range filter keys on, and
// whether the kind carries one at all.
type Entry interface {
	EntryID() primitive.ObjectID
	EntryCollection() Collection
	RangeDate() (time.Time, bool)
}

// Patch is a partial update carrying the target entry id plus only the fields
// that should change.
type Patch interface {
	PatchID() primitive.ObjectID
}

// CalendarEntry is one dated item on the calendar. The wire name of Category
// is "type", matching the dashboard payloads.
type CalendarEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Date        Date               `bson:"date" json:"date" validate:"required"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description" json:"description"`
	Category    CalendarCategory   `bson:"type" json:"type" validate:"required,oneof=class assignment exam other"`
}

func (e CalendarEntry) EntryID() primitive.ObjectID  { return e.ID }
func (e CalendarEntry) EntryCollection() Collection  { return CollectionCalendarEntries }
func (e CalendarEntry) RangeDate() (time.Time, bool) { return e.Date.Time, true }

// ScheduleEntry is one block in a day plan.
type ScheduleEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Date      Date               `bson:"date" json:"date" validate:"required"`
	StartTime string             `bson:"startTime" json:"startTime" validate:"required"`
	EndTime   string             `bson:"endTime" json:"endTime" validate:"required"`
	Title     string             `bson:"title" json:"title" validate:"required"`
	Category  ScheduleCategory   `bson:"type" json:"type" validate:"required,oneof=class study break other"`
}

func (e ScheduleEntry) EntryID() primitive.ObjectID  { return e.ID }
func (e ScheduleEntry) EntryCollection() Collection  { return CollectionScheduleEntries }
func (e ScheduleEntry) RangeDate() (time.Time, bool) { return e.Date.Time, true }

// TaskEntry is one tracked task. Type is free text used by the UI as a color
// key; it is deliberately not an enum.
type TaskEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description" json:"description"`
	Type        string             `bson:"type" json:"type"`
	DueDate     Date               `bson:"dueDate" json:"dueDate" validate:"required"`
	Priority    TaskPriority       `bson:"priority" json:"priority" validate:"required,oneof=Low Medium High"`
	Progress    int                `bson:"progress" json:"progress" validate:"gte=0,lte=100"`
	Completed   bool               `bson:"completed" json:"completed"`
}

func (e TaskEntry) EntryID() primitive.ObjectID { return e.ID }
func (e TaskEntry) EntryCollection() Collection { return CollectionTaskEntries }

// Task documents carry dueDate, not date, so the date-keyed range filter never
// matches them.
func (e TaskEntry) RangeDate() (time.Time, bool) { return time.Time{}, false }

// CalendarEntryPatch updates a calendar entry field-by-field.
type CalendarEntryPatch struct {
	ID          primitive.ObjectID `bson:"-" json:"_id"`
	Date        *Date              `bson:"date,omitempty" json:"date,omitempty"`
	Title       *string            `bson:"title,omitempty" json:"title,omitempty"`
	Description *string            `bson:"description,omitempty" json:"description,omitempty"`
	Category    *CalendarCategory  `bson:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=class assignment exam other"`
}

func (p CalendarEntryPatch) PatchID() primitive.ObjectID { return p.ID }

// ScheduleEntryPatch updates a schedule entry field-by-field.
type ScheduleEntryPatch struct {
	ID        primitive.ObjectID `bson:"-" json:"_id"`
	Date      *Date              `bson:"date,omitempty" json:"date,omitempty"`
	StartTime *string            `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime   *string            `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Title     *string            `bson:"title,omitempty" json:"title,omitempty"`
	Category  *ScheduleCategory  `bson:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=class study break other"`
}

func (p ScheduleEntryPatch) PatchID() primitive.ObjectID { return p.ID }

// TaskEntryPatch updates a task entry field-by-field.
type TaskEntryPatch struct {
	ID          primitive.ObjectID `bson:"-" json:"_id"`
	Title       *string            `bson:"title,omitempty" json:"title,omitempty"`
	Description *string            `bson:"description,omitempty" json:"description,omitempty"`
	Type        *string            `bson:"type,omitempty" json:"type,omitempty"`
	DueDate     *Date              `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Priority    *TaskPriority      `bson:"priority,omitempty" json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	Progress    *int               `bson:"progress,omitempty" json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	Completed   *bool              `bson:"completed,omitempty" json:"completed,omitempty"`
}

func (p TaskEntryPatch) PatchID() primitive.ObjectID { return p.ID }
