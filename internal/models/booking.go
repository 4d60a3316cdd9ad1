package models

type BookingKind string

const (
	BookingKindCourse  BookingKind = "course"
	BookingKindPrivate BookingKind = "private"
)

type Booking struct {
	ID      int64       `json:"id"`
	Kind    BookingKind `json:"kind"`
	Account string      `json:"account"`
	Date    string      `json:"date"`
	Time    string      `json:"time"`
	Label   string      `json:"label"`
}

type SlotAvailability struct {
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	HasConflict bool     `json:"has_conflict"`
	Remaining   *int     `json:"remaining,omitempty"`
	Details     []string `json:"details"`
}
