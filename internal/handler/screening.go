package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinemahub/booking-api/internal/config"
	"github.com/cinemahub/booking-api/internal/middleware"
	"github.com/cinemahub/booking-api/internal/queue"
	"github.com/cinemahub/booking-api/internal/repository"
	queuepub "github.com/cinemahub/booking-api/internal/service"
)

// ScreeningHandler bundles the repositories behind the screening endpoints.
type ScreeningHandler struct {
	Movies     *repository.MovieRepo
	Rooms      *repository.RoomRepo
	Screenings *repository.ScreeningRepo
	Bookings   *repository.BookingRepo
	CacheCfg   config.CacheConfig
	RDB        *redis.Client
}

func NewScreeningHandler(movies *repository.MovieRepo, rooms *repository.RoomRepo, screenings *repository.ScreeningRepo, bookings *repository.BookingRepo, cacheCfg config.CacheConfig, rdb *redis.Client) *ScreeningHandler {
	if movies == nil || rooms == nil || screenings == nil || bookings == nil {
		panic("nil repository passed to NewScreeningHandler")
	}
	return &ScreeningHandler{
		Movies:     movies,
		Rooms:      rooms,
		Screenings: screenings,
		Bookings:   bookings,
		CacheCfg:   cacheCfg,
		RDB:        rdb,
	}
}

func (h *ScreeningHandler) invalidateReads(c echo.Context) {
	middleware.BumpGeneration(c.Request().Context(), h.CacheCfg, h.RDB)
}

// screeningListJSON is the shape used by the screening collection and
// resource endpoints: the screening decorated with its movie, room and the
// aggregated unavailable seats.
type screeningListJSON struct {
	ID         uint64            `json:"id"`
	Movie      movieRefJSON      `json:"movie"`
	Room       roomRefJSON       `json:"room"`
	Date       string            `json:"date"`
	StartTime  string            `json:"start_time"`
	WeekNumber int               `json:"week_number"`
	WeekDay    int               `json:"week_day"`
	Bookings   []repository.Seat `json:"bookings"`
}

type movieRefJSON struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

type roomRefJSON struct {
	ID          uint64 `json:"id"`
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seatsPerRow"`
}

func (h *ScreeningHandler) shape(ctx context.Context, s repository.Screening, movies map[uint64]*repository.Movie, rooms map[uint64]*repository.Room) (screeningListJSON, error) {
	m, ok := movies[s.MovieID]
	if !ok {
		var err error
		m, err = h.Movies.GetByID(ctx, s.MovieID)
		if err != nil {
			return screeningListJSON{}, err
		}
		movies[s.MovieID] = m
	}
	room, ok := rooms[s.RoomID]
	if !ok {
		var err error
		room, err = h.Rooms.GetByID(ctx, s.RoomID)
		if err != nil {
			return screeningListJSON{}, err
		}
		rooms[s.RoomID] = room
	}
	bookings, err := h.Bookings.ListByScreening(ctx, s.ID)
	if err != nil {
		return screeningListJSON{}, err
	}
	return screeningListJSON{
		ID:         s.ID,
		Movie:      movieRefJSON{ID: m.ID, Title: m.Title},
		Room:       roomRefJSON{ID: room.ID, Rows: room.Rows, SeatsPerRow: room.SeatsPerRow},
		Date:       s.Date.Format(dateLayout),
		StartTime:  s.StartTime,
		WeekNumber: s.WeekNumber,
		WeekDay:    s.WeekDay,
		Bookings:   repository.UnavailableSeats(bookings),
	}, nil
}

// List handles GET /screenings.
func (h *ScreeningHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	screenings, err := h.Screenings.ListAll(ctx)
	if err != nil {
		return internalError(c, "Failed to load screenings. Please try again later.")
	}
	movies := map[uint64]*repository.Movie{}
	rooms := map[uint64]*repository.Room{}
	out := make([]screeningListJSON, 0, len(screenings))
	for _, s := range screenings {
		sj, err := h.shape(ctx, s, movies, rooms)
		if err != nil {
			return internalError(c, "Failed to load screenings. Please try again later.")
		}
		out = append(out, sj)
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID handles GET /screenings/:id.
func (h *ScreeningHandler) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid screening id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Screenings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Screening not found"})
		}
		return internalError(c, "Failed to load screening. Please try again later.")
	}
	sj, err := h.shape(ctx, *s, map[uint64]*repository.Movie{}, map[uint64]*repository.Room{})
	if err != nil {
		return internalError(c, "Failed to load screening. Please try again later.")
	}
	return c.JSON(http.StatusOK, sj)
}

// Create handles POST /screenings. Foreign keys are checked before any
// mutation; the conflict check runs inside the insert transaction so two
// concurrent writes for the same slot cannot both pass.
func (h *ScreeningHandler) Create(c echo.Context) error {
	var body struct {
		MovieID   uint64 `json:"movie_id"`
		RoomID    uint64 `json:"room_id"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	errs := ValidationErrors{}
	if body.MovieID == 0 {
		errs.add("movie_id", "The movie id field is required.")
	} else if ok, err := h.Movies.Exists(ctx, body.MovieID); err != nil {
		return internalError(c, "Failed to add screening. Please try again later.")
	} else if !ok {
		errs.add("movie_id", "The selected movie id is invalid.")
	}
	if body.RoomID == 0 {
		errs.add("room_id", "The room id field is required.")
	} else if ok, err := h.Rooms.Exists(ctx, body.RoomID); err != nil {
		return internalError(c, "Failed to add screening. Please try again later.")
	} else if !ok {
		errs.add("room_id", "The selected room id is invalid.")
	}
	var s repository.Screening
	if body.Date == "" {
		errs.add("date", "The date field is required.")
	} else {
		date, weekNumber, weekDay, err := parseScreeningDate(body.Date)
		if err != nil {
			errs.add("date", "The date is not a valid date.")
		} else {
			s.Date, s.WeekNumber, s.WeekDay = date, weekNumber, weekDay
		}
	}
	if body.StartTime == "" {
		errs.add("start_time", "The start time field is required.")
	} else if !validStartTime(body.StartTime) {
		errs.add("start_time", "The start time format is invalid.")
	}
	if !errs.Empty() {
		return validationFailed(c, "Screening addition failed due to validation errors", errs)
	}

	s.MovieID = body.MovieID
	s.RoomID = body.RoomID
	s.StartTime = body.StartTime
	if err := h.Screenings.Create(ctx, &s); err != nil {
		if errors.Is(err, repository.ErrSchedulingConflict) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"status":  "error",
				"message": "There is already a screening scheduled in this room at this time",
			})
		}
		return internalError(c, "Failed to add screening. Please try again later.")
	}
	h.invalidateReads(c)
	h.publishScheduled(s)

	sj, err := h.shape(ctx, s, map[uint64]*repository.Movie{}, map[uint64]*repository.Room{})
	if err != nil {
		return c.JSON(http.StatusCreated, echo.Map{"status": "success", "message": "Screening added successfully!"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Screening added successfully!",
		"data":    sj,
	})
}

// Update handles PATCH/PUT /screenings/:id. Unspecified fields retain their
// prior values; when the date changes, the derived week fields are
// recomputed; the conflict check always covers the effective
// (room, date, start_time) triple, excluding the screening itself.
func (h *ScreeningHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid screening id"})
	}
	var body struct {
		MovieID   *uint64 `json:"movie_id"`
		RoomID    *uint64 `json:"room_id"`
		Date      *string `json:"date"`
		StartTime *string `json:"start_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := h.Screenings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Screening not found"})
		}
		return internalError(c, "Failed to update screening. Please try again later.")
	}

	errs := ValidationErrors{}
	if body.MovieID != nil {
		if ok, err := h.Movies.Exists(ctx, *body.MovieID); err != nil {
			return internalError(c, "Failed to update screening. Please try again later.")
		} else if !ok {
			errs.add("movie_id", "The selected movie id is invalid.")
		} else {
			cur.MovieID = *body.MovieID
		}
	}
	if body.RoomID != nil {
		if ok, err := h.Rooms.Exists(ctx, *body.RoomID); err != nil {
			return internalError(c, "Failed to update screening. Please try again later.")
		} else if !ok {
			errs.add("room_id", "The selected room id is invalid.")
		} else {
			cur.RoomID = *body.RoomID
		}
	}
	if body.Date != nil {
		date, weekNumber, weekDay, err := parseScreeningDate(*body.Date)
		if err != nil {
			errs.add("date", "The date is not a valid date.")
		} else {
			cur.Date, cur.WeekNumber, cur.WeekDay = date, weekNumber, weekDay
		}
	}
	if body.StartTime != nil {
		if !validStartTime(*body.StartTime) {
			errs.add("start_time", "The start time format is invalid.")
		} else {
			cur.StartTime = *body.StartTime
		}
	}
	if !errs.Empty() {
		return validationFailed(c, "Screening update failed due to validation errors", errs)
	}

	if err := h.Screenings.Update(ctx, cur); err != nil {
		if errors.Is(err, repository.ErrSchedulingConflict) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"status":  "error",
				"message": "There is already a screening scheduled in this room at this time",
			})
		}
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Screening not found"})
		}
		return internalError(c, "Failed to update screening. Please try again later.")
	}
	h.invalidateReads(c)

	// The update is committed at this point; a failed decoration must not
	// turn a persisted change into an error response.
	sj, err := h.shape(ctx, *cur, map[uint64]*repository.Movie{}, map[uint64]*repository.Room{})
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Screening updated successfully!"})
	}
	return c.JSON(http.StatusOK, sj)
}

// Delete handles DELETE /screenings/:id.
func (h *ScreeningHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid screening id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Screenings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Screening not found"})
		}
		return internalError(c, "Failed to delete screening. Please try again later.")
	}
	h.invalidateReads(c)
	return c.NoContent(http.StatusNoContent)
}

// publishScheduled emits a screening.scheduled event. Publishing is best
// effort: broker trouble is logged by the publisher and never fails the
// request.
func (h *ScreeningHandler) publishScheduled(s repository.Screening) {
	ev := queue.ScreeningScheduledEvent{
		ScreeningID: s.ID,
		MovieID:     s.MovieID,
		RoomID:      s.RoomID,
		Date:        s.Date.Format(dateLayout),
		StartTime:   s.StartTime,
		WeekNumber:  s.WeekNumber,
		WeekDay:     s.WeekDay,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		if err := queuepub.PublishScreeningScheduled(ctx, ev); err != nil {
			log.Printf("screenings: publish scheduled event failed: %v", err)
		}
	}()
}
