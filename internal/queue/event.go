// Package queue defines message payloads exchanged over the message broker.
package queue

// ScreeningScheduledEvent is published when a screening is successfully
// created. It carries enough information for downstream consumers to log or
// notify without querying the primary database.
type ScreeningScheduledEvent struct {
    ScreeningID uint64 `json:"screening_id"`
    MovieID     uint64 `json:"movie_id"`
    RoomID      uint64 `json:"room_id"`
    Date        string `json:"date"`
    StartTime   string `json:"start_time"`
    WeekNumber  int    `json:"week_number"`
    WeekDay     int    `json:"week_day"`
}
