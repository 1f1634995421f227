package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studydash/core/internal/application/services"
	"github.com/studydash/core/internal/domain/entities"
	"github.com/studydash/core/internal/infrastructure/logger"
	"github.com/studydash/core/internal/ports"
)

// EntryHandler serves the generic collection route family. The collection
// path segment is parsed against the closed collection set before anything
// else happens; unknown names never reach a store.
type EntryHandler struct {
	calendar *services.EntryService[entities.CalendarEntry]
	schedule *services.EntryService[entities.ScheduleEntry]
	tasks    *services.EntryService[entities.TaskEntry]
	logger   *logger.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(
	calendar *services.EntryService[entities.CalendarEntry],
	schedule *services.EntryService[entities.ScheduleEntry],
	tasks *services.EntryService[entities.TaskEntry],
	logger *logger.Logger,
) *EntryHandler {
	return &EntryHandler{
		calendar: calendar,
		schedule: schedule,
		tasks:    tasks,
		logger:   logger,
	}
}

// List handles GET /api/db/:collection
func (h *EntryHandler) List(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return err
	}

	filter, err := rangeFromQuery(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	switch col {
	case entities.CollectionCalendarEntries:
		return listEntries(c, h.calendar, filter)
	case entities.CollectionScheduleEntries:
		return listEntries(c, h.schedule, filter)
	default:
		return listEntries(c, h.tasks, filter)
	}
}

// Create handles POST /api/db/:collection
func (h *EntryHandler) Create(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return err
	}

	switch col {
	case entities.CollectionCalendarEntries:
		return createEntry(c, h.calendar)
	case entities.CollectionScheduleEntries:
		return createEntry(c, h.schedule)
	default:
		return createEntry(c, h.tasks)
	}
}

// Update handles PUT /api/db/:collection
func (h *EntryHandler) Update(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return err
	}

	switch col {
	case entities.CollectionCalendarEntries:
		return updateEntry[entities.CalendarEntry, entities.CalendarEntryPatch](c, h.calendar)
	case entities.CollectionScheduleEntries:
		return updateEntry[entities.ScheduleEntry, entities.ScheduleEntryPatch](c, h.schedule)
	default:
		return updateEntry[entities.TaskEntry, entities.TaskEntryPatch](c, h.tasks)
	}
}

// Delete handles DELETE /api/db/:collection
func (h *EntryHandler) Delete(c echo.Context) error {
	col, err := h.collection(c)
	if err != nil {
		return err
	}

	var req DeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid entry id")
	}

	switch col {
	case entities.CollectionCalendarEntries:
		return deleteEntry(c, h.calendar, id)
	case entities.CollectionScheduleEntries:
		return deleteEntry(c, h.schedule, id)
	default:
		return deleteEntry(c, h.tasks, id)
	}
}

func (h *EntryHandler) collection(c echo.Context) (entities.Collection, error) {
	col, err := entities.ParseCollection(c.Param("collection"))
	if err != nil {
		h.logger.Warnw("Rejected unknown collection", "collection", c.Param("collection"), "method", c.Request().Method)
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid collection")
	}
	return col, nil
}

func listEntries[T entities.Entry](c echo.Context, svc *services.EntryService[T], filter ports.EntryFilter) error {
	entries, err := svc.List(c.Request().Context(), filter)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func createEntry[T entities.Entry](c echo.Context, svc *services.EntryService[T]) error {
	var entry T
	if err := c.Bind(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stored, err := svc.Create(c.Request().Context(), entry)
	if err != nil {
		if errors.Is(err, entities.ErrEntryIDAssigned) {
			return echo.NewHTTPError(http.StatusBadRequest, "Entry id is assigned by the store")
		}
		return storeError(err)
	}

	return c.JSON(http.StatusOK, stored)
}

func updateEntry[T entities.Entry, P entities.Patch](c echo.Context, svc *services.EntryService[T]) error {
	var patch P
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := svc.Patch(c.Request().Context(), patch); err != nil {
		if errors.Is(err, entities.ErrMissingEntryID) {
			return echo.NewHTTPError(http.StatusBadRequest, "Entry id is required")
		}
		return storeError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Entry updated successfully"})
}

func deleteEntry[T entities.Entry](c echo.Context, svc *services.EntryService[T], id primitive.ObjectID) error {
	if err := svc.Delete(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Entry deleted successfully"})
}

// storeError maps repository failures onto response codes: a missing entry is
// 404, anything else from the store is an opaque 500.
func storeError(err error) error {
	if errors.Is(err, entities.ErrEntryNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Entry not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

// rangeFromQuery reads the optional startDate/endDate pair. Both bounds must
// be present for the filter to apply; the range is inclusive, and a bare
// YYYY-MM-DD end bound covers its whole day.
func rangeFromQuery(c echo.Context) (ports.EntryFilter, error) {
	startRaw := c.QueryParam("startDate")
	endRaw := c.QueryParam("endDate")
	if startRaw == "" || endRaw == "" {
		return ports.EntryFilter{}, nil
	}

	start, err := parseRangeBound(startRaw, false)
	if err != nil {
		return ports.EntryFilter{}, err
	}
	end, err := parseRangeBound(endRaw, true)
	if err != nil {
		return ports.EntryFilter{}, err
	}

	return ports.EntryFilter{Start: &start, End: &end}, nil
}

func parseRangeBound(raw string, end bool) (time.Time, error) {
	d, err := entities.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}

	t := d.Time
	if end && !strings.Contains(raw, "T") {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}

// Request/Response types

// DeleteRequest names the entry a DELETE removes.
type DeleteRequest struct {
	ID string `json:"id" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
