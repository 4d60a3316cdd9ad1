package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/appstate"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/Sign-up-admin/safe-room-sub007/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	SessionHeader  = "X-Session-ID"
	CSRFContextKey = "csrf"
)

type accountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}

type AuthHandler struct {
	accountRepo accountStore
	stateStore  appstate.Store
	jwtSecret   string
	validate    *validator.Validate
}

func NewAuthHandler(accountRepo accountStore, stateStore appstate.Store, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		accountRepo: accountRepo,
		stateStore:  stateStore,
		jwtSecret:   jwtSecret,
		validate:    validator.New(),
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=member coach"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return envelopeStatus(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := h.validate.Struct(&req); err != nil {
		return envelopeStatus(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}
	if req.Role == "" {
		req.Role = "member"
	}

	existing, err := h.accountRepo.GetByUsername(c.UserContext(), req.Username)
	if err == nil && existing != nil {
		return envelopeStatus(c, fiber.StatusConflict, "Username already exists")
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return envelopeStatus(c, fiber.StatusInternalServerError, "Failed to check username")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return envelopeStatus(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	account := &models.Account{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	if err := h.accountRepo.CreateAccount(c.UserContext(), account); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return envelopeStatus(c, fiber.StatusConflict, "Username already exists")
		}
		return envelopeStatus(c, fiber.StatusInternalServerError, "Failed to create account")
	}

	return h.issueSession(c, account)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return envelopeStatus(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := h.validate.Struct(&req); err != nil {
		return envelopeStatus(c, fiber.StatusBadRequest, "Username and password are required")
	}

	account, err := h.accountRepo.GetByUsername(c.UserContext(), req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return envelopeStatus(c, fiber.StatusUnauthorized, "Invalid username or password")
		}
		return envelopeStatus(c, fiber.StatusInternalServerError, "Failed to lookup account")
	}

	if !utils.CheckPassword(req.Password, account.PasswordHash) {
		return envelopeStatus(c, fiber.StatusUnauthorized, "Invalid username or password")
	}

	return h.issueSession(c, account)
}

// Session returns the authenticated account and, when the caller sends a
// session id, the profile and theme kept in its app state.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return envelopeStatus(c, fiber.StatusUnauthorized, "Invalid token")
	}

	account, err := h.accountRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return envelopeStatus(c, fiber.StatusNotFound, "Account not found")
		}
		return envelopeStatus(c, fiber.StatusInternalServerError, "Failed to fetch account")
	}

	data := fiber.Map{"user": account}
	if sessionID := strings.TrimSpace(c.Get(SessionHeader)); sessionID != "" && h.stateStore != nil {
		session := appstate.NewSession(h.stateStore, sessionID)
		if info, err := session.UserInfo(c.UserContext()); err == nil && info != nil {
			data["userInfo"] = info
		}
		if theme, err := session.Theme(c.UserContext()); err == nil {
			data["theme"] = theme
		}
	}
	return envelopeOK(c, data)
}

// Logout drops the token and cached profile kept for the caller's session.
// JWTs are stateless, so the token itself stays valid until it expires.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Get(SessionHeader))
	if sessionID == "" || h.stateStore == nil {
		return envelopeOK(c, nil)
	}

	session := appstate.NewSession(h.stateStore, sessionID)
	if err := session.ClearToken(c.UserContext()); err != nil {
		slog.Warn("Failed to clear session token", "error", err)
		return envelopeStatus(c, fiber.StatusInternalServerError, "Failed to clear session")
	}
	if err := h.stateStore.Delete(c.UserContext(), sessionID, appstate.KeyUserInfo); err != nil {
		slog.Warn("Failed to clear session profile", "error", err)
	}
	return envelopeOK(c, nil)
}

// CSRFToken echoes the token the csrf middleware stored for this request so
// clients can send it back in the X-CSRF-Token header.
func (h *AuthHandler) CSRFToken(c *fiber.Ctx) error {
	token, _ := c.Locals(CSRFContextKey).(string)
	if sessionID := strings.TrimSpace(c.Get(SessionHeader)); sessionID != "" && h.stateStore != nil && token != "" {
		if err := appstate.NewSession(h.stateStore, sessionID).SetCSRFToken(c.UserContext(), token); err != nil {
			slog.Warn("Failed to persist csrf token", "error", err)
		}
	}
	return envelopeOK(c, fiber.Map{"csrfToken": token})
}

func (h *AuthHandler) issueSession(c *fiber.Ctx, account *models.Account) error {
	userID := strconv.FormatInt(account.ID, 10)
	token, err := utils.GenerateTokenFor(userID, account.Username, account.Role, h.jwtSecret)
	if err != nil {
		return envelopeStatus(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	data := fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       account.ID,
			"username": account.Username,
			"role":     account.Role,
		},
	}

	if h.stateStore != nil {
		session := appstate.NewSession(h.stateStore, appstate.NewSessionID())
		err := session.SetToken(c.UserContext(), token)
		if err == nil {
			err = session.SetUserInfo(c.UserContext(), models.UserInfo{
				ID:      account.ID,
				Account: account.Username,
				Role:    account.Role,
			})
		}
		if err != nil {
			slog.Warn("Failed to persist session state", "account", account.Username, "error", err)
		} else {
			data["session_id"] = session.ID()
		}
	}

	return envelopeOK(c, data)
}

func currentUserID(c *fiber.Ctx) (int64, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(userIDStr, 10, 64)
}

func currentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}
