package repository

// UnavailableSeats derives the seats already taken for a screening from its
// bookings. Cancelled bookings and bookings without seats contribute
// nothing; every other booking contributes its full seat list. Booking
// order and within-booking seat order are preserved, and duplicates are
// passed through untouched: this is read-time aggregation, not a corrector
// for bookings that violate the disjoint-seats invariant.
func UnavailableSeats(bookings []Booking) []Seat {
	taken := make([]Seat, 0)
	for _, b := range bookings {
		if b.Status == StatusCancelled || len(b.Seats) == 0 {
			continue
		}
		taken = append(taken, b.Seats...)
	}
	return taken
}
