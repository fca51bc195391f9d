package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinemahub/booking-api/internal/repository"
)

// RoomHandler exposes the administrative room endpoints. Rooms are static
// seating geometry; there is no update or delete because screenings
// reference them once created.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

type roomFullJSON struct {
	ID          uint64 `json:"id"`
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seatsPerRow"`
}

// List handles GET /rooms.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.ListAll(ctx)
	if err != nil {
		return internalError(c, "Failed to load rooms. Please try again later.")
	}
	out := make([]roomFullJSON, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomFullJSON{ID: r.ID, Rows: r.Rows, SeatsPerRow: r.SeatsPerRow})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var body struct {
		Rows        int `json:"rows"`
		SeatsPerRow int `json:"seats_per_row"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid request body"})
	}
	errs := ValidationErrors{}
	if body.Rows < 1 {
		errs.add("rows", "The rows must be an integer of at least 1.")
	}
	if body.SeatsPerRow < 1 {
		errs.add("seats_per_row", "The seats per row must be an integer of at least 1.")
	}
	if !errs.Empty() {
		return validationFailed(c, "Room addition failed due to validation errors", errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	room := &repository.Room{Rows: uint32(body.Rows), SeatsPerRow: uint32(body.SeatsPerRow)}
	if err := h.Rooms.Create(ctx, room); err != nil {
		return internalError(c, "Failed to add room. Please try again later.")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "Room added successfully!",
		"data":    roomFullJSON{ID: room.ID, Rows: room.Rows, SeatsPerRow: room.SeatsPerRow},
	})
}
