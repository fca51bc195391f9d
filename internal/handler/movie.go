package handler

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/cinemahub/booking-api/internal/config"
	"github.com/cinemahub/booking-api/internal/middleware"
	"github.com/cinemahub/booking-api/internal/repository"
	"github.com/cinemahub/booking-api/internal/storage"
)

// MovieHandler bundles the repositories and blob store behind the movie
// endpoints. RDB and CacheCfg let write handlers invalidate cached reads.
type MovieHandler struct {
	Movies     *repository.MovieRepo
	Screenings *repository.ScreeningRepo
	Rooms      *repository.RoomRepo
	Bookings   *repository.BookingRepo
	Posters    *storage.PosterStore
	CacheCfg   config.CacheConfig
	RDB        *redis.Client
}

func NewMovieHandler(movies *repository.MovieRepo, screenings *repository.ScreeningRepo, rooms *repository.RoomRepo, bookings *repository.BookingRepo, posters *storage.PosterStore, cacheCfg config.CacheConfig, rdb *redis.Client) *MovieHandler {
	if movies == nil || screenings == nil || rooms == nil || bookings == nil || posters == nil {
		panic("nil dependency passed to NewMovieHandler")
	}
	return &MovieHandler{
		Movies:     movies,
		Screenings: screenings,
		Rooms:      rooms,
		Bookings:   bookings,
		Posters:    posters,
		CacheCfg:   cacheCfg,
		RDB:        rdb,
	}
}

func (h *MovieHandler) invalidateReads(c echo.Context) {
	middleware.BumpGeneration(c.Request().Context(), h.CacheCfg, h.RDB)
}

// formPtr returns the form field value as a pointer, or nil when the field
// was not submitted at all. Partial updates rely on the distinction between
// "absent" and "present but empty".
func formPtr(params url.Values, name string) *string {
	if vs, ok := params[name]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

func movieInputFrom(params url.Values) movieInput {
	return movieInput{
		Title:       formPtr(params, "title"),
		Description: formPtr(params, "description"),
		Duration:    formPtr(params, "duration"),
		Director:    formPtr(params, "director"),
		Genre:       formPtr(params, "genre"),
		ReleaseYear: formPtr(params, "release_year"),
	}
}

// List handles GET /movies and returns every movie with its screenings,
// optionally restricted to ?week_number=N. Movies without screenings in the
// requested week still appear, with an empty screenings array.
func (h *MovieHandler) List(c echo.Context) error {
	var weekNumber *int
	if raw := c.QueryParam("week_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  "error",
				"message": "Week number must be an integer",
			})
		}
		weekNumber = &n
	}
	return h.listShaped(c, weekNumber)
}

// ByWeek handles GET /movies/by-week and behaves like List except that the
// week_number parameter is mandatory.
func (h *MovieHandler) ByWeek(c echo.Context) error {
	raw := c.QueryParam("week_number")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  "error",
			"message": "Week number is required",
		})
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  "error",
			"message": "Week number must be an integer",
		})
	}
	return h.listShaped(c, &n)
}

func (h *MovieHandler) listShaped(c echo.Context, weekNumber *int) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	movies, err := h.Movies.ListAll(ctx)
	if err != nil {
		return internalError(c, "Failed to load movies. Please try again later.")
	}
	rooms := map[uint64]*repository.Room{}
	out := make([]movieJSON, 0, len(movies))
	for _, m := range movies {
		mj, err := shapeMovie(ctx, m, weekNumber, h.Screenings, h.Rooms, h.Bookings, rooms)
		if err != nil {
			return internalError(c, "Failed to load movies. Please try again later.")
		}
		out = append(out, mj)
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID handles GET /movies/:id and returns one movie in the same shape
// as the list form.
func (h *MovieHandler) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid movie id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Movie not found"})
		}
		return internalError(c, "Failed to load movie. Please try again later.")
	}
	mj, err := shapeMovie(ctx, *m, nil, h.Screenings, h.Rooms, h.Bookings, map[uint64]*repository.Room{})
	if err != nil {
		return internalError(c, "Failed to load movie. Please try again later.")
	}
	return c.JSON(http.StatusOK, mj)
}

// Create handles POST /movies. The request is a multipart form carrying the
// movie fields plus the poster image. The poster blob is saved first and
// removed again if the row insert fails, so no orphaned blob survives a
// failed create.
func (h *MovieHandler) Create(c echo.Context) error {
	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid request body"})
	}
	in := movieInputFrom(params)
	duration, releaseYear, errs := validateMovie(in, true)

	file, err := c.FormFile("image")
	if err != nil {
		errs.add("image", "The image field is required.")
	} else {
		validatePoster(file.Filename, file.Size, errs)
	}
	if !errs.Empty() {
		return validationFailed(c, "Movie addition failed due to validation errors", errs)
	}

	imagePath, err := h.savePoster(file)
	if err != nil {
		return internalError(c, "Failed to add movie. Please try again later.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m := &repository.Movie{
		Title:       *in.Title,
		Description: *in.Description,
		ImagePath:   imagePath,
		Duration:    duration,
		Director:    *in.Director,
		Genre:       *in.Genre,
		ReleaseYear: releaseYear,
	}
	if err := h.Movies.Create(ctx, m); err != nil {
		if derr := h.Posters.Delete(imagePath); derr != nil {
			log.Printf("movies: orphan blob cleanup failed: %v", derr)
		}
		return internalError(c, "Failed to add movie. Please try again later.")
	}
	h.invalidateReads(c)
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Movie added successfully!",
		"data":    shapeMovieBare(*m),
	})
}

// Update handles PATCH/PUT /movies/:id. Absent fields keep their prior
// values. When a new poster is uploaded, the old blob is deleted only after
// the row update succeeds; a failed update removes the new blob instead.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid movie id"})
	}
	params, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cur, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Movie not found"})
		}
		return internalError(c, "Failed to update movie. Please try again later.")
	}

	in := movieInputFrom(params)
	duration, releaseYear, errs := validateMovie(in, false)

	file, ferr := c.FormFile("image")
	if ferr == nil {
		validatePoster(file.Filename, file.Size, errs)
	}
	if !errs.Empty() {
		return validationFailed(c, "Movie update failed due to validation errors", errs)
	}

	if in.Title != nil {
		cur.Title = *in.Title
	}
	if in.Description != nil {
		cur.Description = *in.Description
	}
	if in.Director != nil {
		cur.Director = *in.Director
	}
	if in.Genre != nil {
		cur.Genre = *in.Genre
	}
	if in.Duration != nil {
		cur.Duration = duration
	}
	if in.ReleaseYear != nil {
		cur.ReleaseYear = releaseYear
	}

	oldPath := ""
	if ferr == nil {
		newPath, err := h.savePoster(file)
		if err != nil {
			return internalError(c, "Failed to update movie. Please try again later.")
		}
		oldPath = cur.ImagePath
		cur.ImagePath = newPath
	}

	if err := h.Movies.Update(ctx, cur); err != nil {
		if ferr == nil {
			if derr := h.Posters.Delete(cur.ImagePath); derr != nil {
				log.Printf("movies: orphan blob cleanup failed: %v", derr)
			}
		}
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Movie not found"})
		}
		return internalError(c, "Failed to update movie. Please try again later.")
	}
	if oldPath != "" {
		if derr := h.Posters.Delete(oldPath); derr != nil {
			log.Printf("movies: stale blob cleanup failed: %v", derr)
		}
	}
	h.invalidateReads(c)
	return c.JSON(http.StatusOK, shapeMovieBare(*cur))
}

// Delete handles DELETE /movies/:id. The row, its screenings and their
// bookings go in one transaction; the poster blob is removed after the
// commit (best effort, logged on failure).
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid movie id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	imagePath, err := h.Movies.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "Movie not found"})
		}
		return internalError(c, "Failed to delete movie. Please try again later.")
	}
	if imagePath != "" {
		if derr := h.Posters.Delete(imagePath); derr != nil {
			log.Printf("movies: poster blob cleanup failed: %v", derr)
		}
	}
	h.invalidateReads(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *MovieHandler) savePoster(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.Posters.Save(src, file.Filename)
}

// shapeMovieBare is the write-response form of a movie: the flat record
// without the screenings decoration used by reads.
func shapeMovieBare(m repository.Movie) echo.Map {
	return echo.Map{
		"id":           m.ID,
		"title":        m.Title,
		"description":  m.Description,
		"image_path":   m.ImagePath,
		"duration":     m.Duration,
		"director":     m.Director,
		"genre":        m.Genre,
		"release_year": m.ReleaseYear,
		"created_at":   m.CreatedAt,
		"updated_at":   m.UpdatedAt,
	}
}
