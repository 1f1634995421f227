package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studydash/core/internal/adapters/repository"
	"github.com/studydash/core/internal/application/services"
	"github.com/studydash/core/internal/domain/entities"
	"github.com/studydash/core/internal/infrastructure/logger"
	"github.com/studydash/core/internal/ports"
)

// countingRepository wraps an EntryRepository and counts every store call, so
// tests can assert that rejected requests never touch the store.
type countingRepository[T entities.Entry] struct {
	inner ports.EntryRepository[T]
	calls int
}

func (r *countingRepository[T]) Insert(ctx context.Context, entry T) (T, error) {
	r.calls++
	return r.inner.Insert(ctx, entry)
}

func (r *countingRepository[T]) GetByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	r.calls++
	return r.inner.GetByID(ctx, id)
}

func (r *countingRepository[T]) List(ctx context.Context, filter ports.EntryFilter) ([]T, error) {
	r.calls++
	return r.inner.List(ctx, filter)
}

func (r *countingRepository[T]) Patch(ctx context.Context, id primitive.ObjectID, patch entities.Patch) error {
	r.calls++
	return r.inner.Patch(ctx, id, patch)
}

func (r *countingRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.calls++
	return r.inner.Delete(ctx, id)
}

type gatewayFixture struct {
	echo     *echo.Echo
	calendar *countingRepository[entities.CalendarEntry]
	schedule *countingRepository[entities.ScheduleEntry]
	tasks    *countingRepository[entities.TaskEntry]
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{
		calendar: &countingRepository[entities.CalendarEntry]{inner: repository.NewMemoryEntryRepository[entities.CalendarEntry]()},
		schedule: &countingRepository[entities.ScheduleEntry]{inner: repository.NewMemoryEntryRepository[entities.ScheduleEntry]()},
		tasks:    &countingRepository[entities.TaskEntry]{inner: repository.NewMemoryEntryRepository[entities.TaskEntry]()},
	}

	log := logger.NewNop()
	handler := NewEntryHandler(
		services.NewEntryService(entities.CollectionCalendarEntries, f.calendar, nil, 0, log),
		services.NewEntryService(entities.CollectionScheduleEntries, f.schedule, nil, 0, log),
		services.NewEntryService(entities.CollectionTaskEntries, f.tasks, nil, 0, log),
		log,
	)

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewErrorHandler(log)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	db := e.Group("/api/db")
	db.GET("/:collection", handler.List)
	db.POST("/:collection", handler.Create)
	db.PUT("/:collection", handler.Update)
	db.DELETE("/:collection", handler.Delete)

	f.echo = e
	return f
}

func (f *gatewayFixture) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func (f *gatewayFixture) storeCalls() int {
	return f.calendar.calls + f.schedule.calls + f.tasks.calls
}

func decodeCalendar(t *testing.T, rec *httptest.ResponseRecorder) entities.CalendarEntry {
	t.Helper()
	var entry entities.CalendarEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	return entry
}

func TestUnknownCollectionRejectedOnEveryVerb(t *testing.T) {
	f := newGatewayFixture(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec := f.request(t, method, "/api/db/users", `{"id":"abc"}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid collection")
		})
	}

	assert.Equal(t, 0, f.storeCalls(), "unknown collections must be rejected before the store")
}

func TestErrorsUseErrorEnvelope(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodGet, "/api/db/users", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Invalid collection", envelope["error"])
	assert.NotContains(t, envelope, "message")

	rec = f.request(t, http.MethodDelete, "/api/db/taskEntries",
		fmt.Sprintf(`{"id":%q}`, primitive.NewObjectID().Hex()))
	require.Equal(t, http.StatusNotFound, rec.Code)

	envelope = map[string]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Entry not found", envelope["error"])
}

func TestCreateThenListRoundTrip(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodPost, "/api/db/calendarEntries",
		`{"date":"2024-03-13","title":"Midterm","type":"exam"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decodeCalendar(t, rec)
	assert.False(t, created.ID.IsZero(), "the response must carry the store-assigned id")
	assert.Equal(t, "Midterm", created.Title)
	assert.Equal(t, entities.CalendarCategoryExam, created.Category)

	rec = f.request(t, http.MethodGet, "/api/db/calendarEntries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []entities.CalendarEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, created.ID, entries[0].ID)
}

func TestListEmptyCollectionIsJSONArray(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodGet, "/api/db/taskEntries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListDateRange(t *testing.T) {
	f := newGatewayFixture(t)

	for _, day := range []string{"2024-03-10", "2024-03-13", "2024-03-20"} {
		rec := f.request(t, http.MethodPost, "/api/db/calendarEntries",
			fmt.Sprintf(`{"date":%q,"title":%q,"type":"class"}`, day, day))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := f.request(t, http.MethodGet, "/api/db/calendarEntries?startDate=2024-03-12&endDate=2024-03-15", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []entities.CalendarEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-03-13", entries[0].Title)
}

func TestListHalfRangeReturnsEverything(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodPost, "/api/db/calendarEntries",
		`{"date":"2024-03-13","title":"Midterm","type":"exam"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/db/calendarEntries?startDate=2030-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []entities.CalendarEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1, "a lone startDate must not narrow the listing")
}

func TestListRejectsMalformedRange(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodGet, "/api/db/calendarEntries?startDate=nonsense&endDate=2024-03-15", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	f := newGatewayFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"date":"2024-03-13","type":"exam"}`},
		{name: "missing date", body: `{"title":"Midterm","type":"exam"}`},
		{name: "bad category", body: `{"date":"2024-03-13","title":"Midterm","type":"party"}`},
		{name: "malformed json", body: `{"date":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.request(t, http.MethodPost, "/api/db/calendarEntries", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateRejectsClientAssignedID(t *testing.T) {
	f := newGatewayFixture(t)

	body := fmt.Sprintf(`{"_id":%q,"date":"2024-03-13","title":"Midterm","type":"exam"}`,
		primitive.NewObjectID().Hex())
	rec := f.request(t, http.MethodPost, "/api/db/calendarEntries", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodPost, "/api/db/taskEntries",
		`{"title":"Finish lab report","description":"Physics II","type":"Homework","dueDate":"2024-03-20","priority":"Medium","progress":10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created entities.TaskEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = f.request(t, http.MethodPut, "/api/db/taskEntries",
		fmt.Sprintf(`{"_id":%q,"progress":80,"completed":true}`, created.ID.Hex()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Entry updated successfully")

	rec = f.request(t, http.MethodGet, "/api/db/taskEntries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []entities.TaskEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, 80, tasks[0].Progress)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "Finish lab report", tasks[0].Title, "fields absent from the update must survive")
	assert.Equal(t, "Physics II", tasks[0].Description)
	assert.Equal(t, entities.TaskPriorityMedium, tasks[0].Priority)
}

func TestUpdateRequiresID(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodPut, "/api/db/taskEntries", `{"progress":80}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Entry id is required")
}

func TestUpdateUnknownIDIs404(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodPut, "/api/db/taskEntries",
		fmt.Sprintf(`{"_id":%q,"progress":80}`, primitive.NewObjectID().Hex()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Entry not found")
}

func TestDelete(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodPost, "/api/db/scheduleEntries",
		`{"date":"2024-03-13","startTime":"09:00","endTime":"10:30","title":"Linear algebra","type":"class"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created entities.ScheduleEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = f.request(t, http.MethodDelete, "/api/db/scheduleEntries",
		fmt.Sprintf(`{"id":%q}`, created.ID.Hex()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Entry deleted successfully")

	rec = f.request(t, http.MethodGet, "/api/db/scheduleEntries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDeleteUnknownIDIs404(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodDelete, "/api/db/scheduleEntries",
		fmt.Sprintf(`{"id":%q}`, primitive.NewObjectID().Hex()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRejectsBadID(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodDelete, "/api/db/scheduleEntries", `{"id":"not-hex"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid entry id")

	rec = f.request(t, http.MethodDelete, "/api/db/scheduleEntries", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflightAnswered(t *testing.T) {
	f := newGatewayFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/db/calendarEntries", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)
	assert.Equal(t, 0, f.storeCalls())
}

func TestCORSHeaderOnSimpleRequest(t *testing.T) {
	f := newGatewayFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/db/calendarEntries", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestEndBoundCoversWholeDay(t *testing.T) {
	f := newGatewayFixture(t)

	rec := f.request(t, http.MethodPost, "/api/db/scheduleEntries",
		`{"date":"2024-03-15T18:30:00Z","startTime":"18:30","endTime":"20:00","title":"Study group","type":"study"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.request(t, http.MethodGet, "/api/db/scheduleEntries?startDate=2024-03-15&endDate=2024-03-15", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []entities.ScheduleEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 1, "a bare YYYY-MM-DD end bound must cover its whole day")
}

func parseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestRangeBoundParsing(t *testing.T) {
	start, err := parseRangeBound("2024-03-15", false)
	require.NoError(t, err)
	assert.Equal(t, parseTime(t, "2024-03-15T00:00:00Z"), start)

	end, err := parseRangeBound("2024-03-15", true)
	require.NoError(t, err)
	assert.Equal(t, parseTime(t, "2024-03-15T00:00:00Z").Add(24*time.Hour-time.Millisecond), end)

	exact, err := parseRangeBound("2024-03-15T12:00:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, parseTime(t, "2024-03-15T12:00:00Z"), exact, "an explicit timestamp end bound is used as-is")
}
