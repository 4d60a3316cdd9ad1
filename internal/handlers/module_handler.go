package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/gofiber/fiber/v2"
)

var (
	errNoAccount = errors.New("token has no account")
	errNotOwner  = errors.New("record belongs to another account")
)

// ownerField holds the account a member-owned record belongs to.
const ownerField = "yonghuzhanghao"

// Query parameters that shape the page rather than filter records.
var reservedListParams = map[string]struct{}{
	"page":  {},
	"limit": {},
	"sort":  {},
	"order": {},
}

type moduleService interface {
	List(ctx context.Context, module string, query crud.ListQuery) (*models.Page, error)
	Info(ctx context.Context, module string, id int64) (models.Record, error)
	Save(ctx context.Context, module string, record models.Record) (int64, error)
	Update(ctx context.Context, module string, record models.Record) error
	Delete(ctx context.Context, module string, ids []int64) error
}

type ModuleHandler struct {
	crudService moduleService
}

func NewModuleHandler(crudService moduleService) *ModuleHandler {
	return &ModuleHandler{crudService: crudService}
}

func (h *ModuleHandler) List(c *fiber.Ctx) error {
	query := crud.ListQuery{
		Page:    parsePositiveInt(c.Query("page"), 1),
		Limit:   parsePositiveInt(c.Query("limit"), defaultPageLimit),
		Sort:    strings.TrimSpace(c.Query("sort")),
		Order:   strings.TrimSpace(c.Query("order")),
		Filters: map[string]string{},
	}
	for key, value := range c.Queries() {
		if _, reserved := reservedListParams[key]; reserved || strings.TrimSpace(value) == "" {
			continue
		}
		query.Filters[key] = strings.TrimSpace(value)
	}

	page, err := h.crudService.List(c.UserContext(), c.Params("module"), query)
	if err != nil {
		return envelopeError(c, err)
	}
	return envelopeOK(c, page)
}

func (h *ModuleHandler) Info(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return envelopeReject(c, "Invalid id")
	}

	record, err := h.crudService.Info(c.UserContext(), c.Params("module"), id)
	if err != nil {
		return envelopeError(c, err)
	}
	return envelopeOK(c, record)
}

func (h *ModuleHandler) Save(c *fiber.Ctx) error {
	var record models.Record
	if err := c.BodyParser(&record); err != nil {
		return envelopeReject(c, "Invalid request body")
	}
	if account, member := memberAccount(c); member {
		if account == "" {
			return envelopeError(c, errNoAccount)
		}
		if record == nil {
			record = models.Record{}
		}
		record[ownerField] = account
	}

	id, err := h.crudService.Save(c.UserContext(), c.Params("module"), record)
	if err != nil {
		return envelopeError(c, err)
	}
	return envelopeOK(c, id)
}

func (h *ModuleHandler) Update(c *fiber.Ctx) error {
	var record models.Record
	if err := c.BodyParser(&record); err != nil {
		return envelopeReject(c, "Invalid request body")
	}
	if account, member := memberAccount(c); member {
		if err := h.checkOwner(c.UserContext(), c.Params("module"), account, record); err != nil {
			return envelopeError(c, err)
		}
		record[ownerField] = account
	}

	if err := h.crudService.Update(c.UserContext(), c.Params("module"), record); err != nil {
		return envelopeError(c, err)
	}
	return envelopeOK(c, nil)
}

func (h *ModuleHandler) Delete(c *fiber.Ctx) error {
	var ids []int64
	if err := c.BodyParser(&ids); err != nil {
		return envelopeReject(c, "Invalid request body")
	}

	if err := h.crudService.Delete(c.UserContext(), c.Params("module"), ids); err != nil {
		return envelopeError(c, err)
	}
	return envelopeOK(c, nil)
}

// checkOwner fails unless the stored record already belongs to account.
func (h *ModuleHandler) checkOwner(ctx context.Context, module, account string, record models.Record) error {
	if account == "" {
		return errNoAccount
	}
	id := crud.RecordID(record)
	if id <= 0 {
		return crud.ErrInvalidInput
	}
	existing, err := h.crudService.Info(ctx, module, id)
	if err != nil {
		return err
	}
	owner, _ := existing[ownerField].(string)
	if strings.TrimSpace(owner) != account {
		return errNotOwner
	}
	return nil
}

// memberAccount reports whether the caller is a member and, if so, the
// account their records must carry.
func memberAccount(c *fiber.Ctx) (string, bool) {
	if role, _ := c.Locals("role").(string); role != "member" {
		return "", false
	}
	return strings.TrimSpace(currentUsername(c)), true
}
