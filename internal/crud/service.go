// Package crud is the generic module service: one set of list/info/save/update/delete
// operations selected by module key, plus typed views over the records it returns.
package crud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 1000
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

type ListQuery struct {
	Page    int
	Limit   int
	Sort    string
	Order   string
	Filters map[string]string
}

// Backend stores module records. It is implemented by the remote module API
// client and by the Postgres module repository.
type Backend interface {
	List(ctx context.Context, module string, query ListQuery) (*models.Page, error)
	Info(ctx context.Context, module string, id int64) (models.Record, error)
	Save(ctx context.Context, module string, record models.Record) (int64, error)
	Update(ctx context.Context, module string, record models.Record) error
	Delete(ctx context.Context, module string, ids []int64) error
}

type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) List(ctx context.Context, module string, query ListQuery) (*models.Page, error) {
	module, err := checkModule(module)
	if err != nil {
		return nil, err
	}
	page, err := s.backend.List(ctx, module, normalizeQuery(query))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", module, err)
	}
	if page == nil {
		page = &models.Page{}
	}
	if page.List == nil {
		page.List = []models.Record{}
	}
	return page, nil
}

func (s *Service) Info(ctx context.Context, module string, id int64) (models.Record, error) {
	module, err := checkModule(module)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	record, err := s.backend.Info(ctx, module, id)
	if err != nil {
		return nil, fmt.Errorf("info %s/%d: %w", module, id, err)
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

func (s *Service) Save(ctx context.Context, module string, record models.Record) (int64, error) {
	module, err := checkModule(module)
	if err != nil {
		return 0, err
	}
	if len(record) == 0 {
		return 0, ErrInvalidInput
	}
	fields := make(models.Record, len(record))
	for key, value := range record {
		if key != "id" {
			fields[key] = value
		}
	}
	id, err := s.backend.Save(ctx, module, fields)
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", module, err)
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, module string, record models.Record) error {
	module, err := checkModule(module)
	if err != nil {
		return err
	}
	if RecordID(record) <= 0 {
		return ErrInvalidInput
	}
	if err := s.backend.Update(ctx, module, record); err != nil {
		return fmt.Errorf("update %s: %w", module, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, module string, ids []int64) error {
	module, err := checkModule(module)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrInvalidInput
	}
	if err := s.backend.Delete(ctx, module, ids); err != nil {
		return fmt.Errorf("delete %s: %w", module, err)
	}
	return nil
}

func (s *Service) Coaches(ctx context.Context, query ListQuery) ([]models.Coach, error) {
	page, err := s.List(ctx, ModuleCoach, query)
	if err != nil {
		return nil, err
	}
	coaches := make([]models.Coach, 0, len(page.List))
	for _, record := range page.List {
		coaches = append(coaches, ToCoach(record))
	}
	return coaches, nil
}

func (s *Service) Coach(ctx context.Context, id int64) (*models.Coach, error) {
	record, err := s.Info(ctx, ModuleCoach, id)
	if err != nil {
		return nil, err
	}
	coach := ToCoach(record)
	return &coach, nil
}

func (s *Service) Posts(ctx context.Context, query ListQuery) ([]models.Post, error) {
	page, err := s.List(ctx, ModuleForum, query)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(page.List))
	for _, record := range page.List {
		posts = append(posts, ToPost(record))
	}
	return posts, nil
}

// Bookings lists up to limit bookings of one kind. An empty account issues the
// request without an account filter.
func (s *Service) Bookings(ctx context.Context, kind models.BookingKind, account string, limit int) ([]models.Booking, error) {
	module := ModuleCourseBooking
	if kind == models.BookingKindPrivate {
		module = ModulePrivateBooking
	}
	filters := map[string]string{}
	if account = strings.TrimSpace(account); account != "" {
		filters["yonghuzhanghao"] = account
	}
	page, err := s.List(ctx, module, ListQuery{Page: 1, Limit: limit, Filters: filters})
	if err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0, len(page.List))
	for _, record := range page.List {
		bookings = append(bookings, ToBooking(kind, record))
	}
	return bookings, nil
}

func (s *Service) PaymentOrder(ctx context.Context, id int64) (*models.PaymentOrder, error) {
	record, err := s.Info(ctx, ModuleOrders, id)
	if err != nil {
		return nil, err
	}
	order := ToPaymentOrder(record)
	return &order, nil
}

// checkModule returns the trimmed module key the backend should see.
func checkModule(module string) (string, error) {
	module = strings.TrimSpace(module)
	if !IsKnownModule(module) {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, module)
	}
	return module, nil
}

func normalizeQuery(query ListQuery) ListQuery {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageLimit
	}
	if query.Limit > maxPageLimit {
		query.Limit = maxPageLimit
	}
	query.Order = strings.ToLower(strings.TrimSpace(query.Order))
	if query.Order != "asc" {
		query.Order = "desc"
	}
	if query.Filters == nil {
		query.Filters = map[string]string{}
	}
	return query
}
