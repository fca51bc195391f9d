package handler

// Response shaping for movie and screening reads. Every screening in a read
// response is decorated with its room geometry and the flat list of seats
// already taken, derived fresh from the screening's bookings on each call.

import (
	"context"

	"github.com/cinemahub/booking-api/internal/repository"
)

type roomJSON struct {
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seatsPerRow"`
}

type screeningJSON struct {
	ID         uint64            `json:"id"`
	Room       roomJSON          `json:"room"`
	StartTime  string            `json:"start_time"`
	Date       string            `json:"date"`
	WeekNumber int               `json:"week_number"`
	WeekDay    int               `json:"week_day"`
	Bookings   []repository.Seat `json:"bookings"`
}

type movieJSON struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImagePath   string          `json:"image_path"`
	Duration    uint32          `json:"duration"`
	Director    string          `json:"director"`
	Genre       string          `json:"genre"`
	ReleaseYear int             `json:"release_year"`
	Screenings  []screeningJSON `json:"screenings"`
}

const dateLayout = "2006-01-02"

// shapeScreening loads the screening's room and bookings and produces its
// read form. The rooms map memoizes room lookups across screenings of one
// response.
func shapeScreening(ctx context.Context, s repository.Screening, roomRepo *repository.RoomRepo, bookingRepo *repository.BookingRepo, rooms map[uint64]*repository.Room) (screeningJSON, error) {
	room, ok := rooms[s.RoomID]
	if !ok {
		var err error
		room, err = roomRepo.GetByID(ctx, s.RoomID)
		if err != nil {
			return screeningJSON{}, err
		}
		rooms[s.RoomID] = room
	}
	bookings, err := bookingRepo.ListByScreening(ctx, s.ID)
	if err != nil {
		return screeningJSON{}, err
	}
	return screeningJSON{
		ID:         s.ID,
		Room:       roomJSON{Rows: room.Rows, SeatsPerRow: room.SeatsPerRow},
		StartTime:  s.StartTime,
		Date:       s.Date.Format(dateLayout),
		WeekNumber: s.WeekNumber,
		WeekDay:    s.WeekDay,
		Bookings:   repository.UnavailableSeats(bookings),
	}, nil
}

// shapeMovie builds a movie's read form with its screenings, optionally
// restricted to one ISO week. The movie itself always appears even when no
// screening matches the filter; the screenings array is then empty.
func shapeMovie(ctx context.Context, m repository.Movie, weekNumber *int, screeningRepo *repository.ScreeningRepo, roomRepo *repository.RoomRepo, bookingRepo *repository.BookingRepo, rooms map[uint64]*repository.Room) (movieJSON, error) {
	screenings, err := screeningRepo.ListByMovie(ctx, m.ID, weekNumber)
	if err != nil {
		return movieJSON{}, err
	}
	out := movieJSON{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		ImagePath:   m.ImagePath,
		Duration:    m.Duration,
		Director:    m.Director,
		Genre:       m.Genre,
		ReleaseYear: m.ReleaseYear,
		Screenings:  make([]screeningJSON, 0, len(screenings)),
	}
	for _, s := range screenings {
		sj, err := shapeScreening(ctx, s, roomRepo, bookingRepo, rooms)
		if err != nil {
			return movieJSON{}, err
		}
		out.Screenings = append(out.Screenings, sj)
	}
	return out, nil
}
