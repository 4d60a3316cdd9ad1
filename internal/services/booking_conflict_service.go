package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

const bookingFetchLimit = 200

type BookingLister interface {
	Bookings(ctx context.Context, kind models.BookingKind, account string, limit int) ([]models.Booking, error)
}

type UserInfoSource interface {
	UserInfo(ctx context.Context) (*models.UserInfo, error)
}

type BookingConflictService struct {
	bookingRepo BookingLister
}

func NewBookingConflictService(bookingRepo BookingLister) *BookingConflictService {
	return &BookingConflictService{bookingRepo: bookingRepo}
}

// ConflictIndex groups a member's existing bookings by "date|time".
type ConflictIndex struct {
	Account string
	slots   map[string][]models.Booking
}

func NewConflictIndex(account string, bookings []models.Booking) *ConflictIndex {
	index := &ConflictIndex{Account: account, slots: make(map[string][]models.Booking)}
	for _, booking := range bookings {
		if booking.Date == "" || booking.Time == "" {
			continue
		}
		key := slotKey(booking.Date, booking.Time)
		index.slots[key] = append(index.slots[key], booking)
	}
	return index
}

// Load builds the index for account, falling back to the account stored in
// the session profile. Fetch failures leave the affected kind out of the index
// and are returned alongside it.
func (s *BookingConflictService) Load(ctx context.Context, account string, session UserInfoSource) (*ConflictIndex, error) {
	account = s.resolveAccount(ctx, account, session)

	var (
		bookings []models.Booking
		errs     []error
	)
	for _, kind := range []models.BookingKind{models.BookingKindCourse, models.BookingKindPrivate} {
		found, err := s.bookingRepo.Bookings(ctx, kind, account, bookingFetchLimit)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s bookings: %w", kind, err))
			continue
		}
		bookings = append(bookings, found...)
	}

	return NewConflictIndex(account, bookings), errors.Join(errs...)
}

func (s *BookingConflictService) resolveAccount(ctx context.Context, account string, session UserInfoSource) string {
	if account = strings.TrimSpace(account); account != "" {
		return account
	}
	if session == nil {
		return ""
	}
	info, err := session.UserInfo(ctx)
	if err != nil || info == nil {
		return ""
	}
	return strings.TrimSpace(info.Account)
}

func (i *ConflictIndex) HasConflict(date, time string) bool {
	return len(i.at(date, time)) > 0
}

// ResolveRemaining may go negative when a slot is already overbooked.
func (i *ConflictIndex) ResolveRemaining(date, time string, capacity int) int {
	return capacity - len(i.at(date, time))
}

func (i *ConflictIndex) ConflictDetails(date, time string) []string {
	bookings := i.at(date, time)
	details := make([]string, 0, len(bookings))
	for _, booking := range bookings {
		details = append(details, bookingLabel(booking))
	}
	return details
}

// Availability summarises one slot; Remaining is only set when a capacity is given.
func (i *ConflictIndex) Availability(date, time string, capacity *int) models.SlotAvailability {
	slot := models.SlotAvailability{
		Date:        strings.TrimSpace(date),
		Time:        strings.TrimSpace(time),
		HasConflict: i.HasConflict(date, time),
		Details:     i.ConflictDetails(date, time),
	}
	if capacity != nil {
		remaining := i.ResolveRemaining(date, time, *capacity)
		slot.Remaining = &remaining
	}
	return slot
}

func (i *ConflictIndex) Len() int {
	if i == nil {
		return 0
	}
	total := 0
	for _, bookings := range i.slots {
		total += len(bookings)
	}
	return total
}

func (i *ConflictIndex) at(date, time string) []models.Booking {
	if i == nil {
		return nil
	}
	return i.slots[slotKey(date, time)]
}

func bookingLabel(booking models.Booking) string {
	switch booking.Kind {
	case models.BookingKindPrivate:
		name := booking.Label
		if name == "" {
			name = "私教课"
		}
		return "私教预约：" + name
	default:
		name := booking.Label
		if name == "" {
			name = "团课"
		}
		return "课程预约：" + name
	}
}

func slotKey(date, time string) string {
	return strings.TrimSpace(date) + "|" + strings.TrimSpace(time)
}
