// Package appstate keeps the small per-session key/value state a console client
// carries between requests: auth token, cached profile, theme and CSRF token.
package appstate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/google/uuid"
)

const (
	KeyToken    = "Token"
	KeyUserInfo = "userInfo"
	KeyTheme    = "theme"
	KeyCSRF     = "csrfToken"
)

type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

func NewSessionID() string {
	return uuid.NewString()
}

// Session binds a Store to one session id.
type Session struct {
	store Store
	id    string
}

func NewSession(store Store, sessionID string) *Session {
	return &Session{store: store, id: strings.TrimSpace(sessionID)}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Token(ctx context.Context) (string, error) {
	return s.value(ctx, KeyToken)
}

func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, s.id, KeyToken, token)
}

func (s *Session) ClearToken(ctx context.Context) error {
	return s.store.Delete(ctx, s.id, KeyToken)
}

func (s *Session) CSRFToken(ctx context.Context) (string, error) {
	return s.value(ctx, KeyCSRF)
}

func (s *Session) SetCSRFToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, s.id, KeyCSRF, token)
}

func (s *Session) Theme(ctx context.Context) (string, error) {
	theme, err := s.value(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	if theme == "" {
		return "light", nil
	}
	return theme, nil
}

func (s *Session) SetTheme(ctx context.Context, theme string) error {
	return s.store.Set(ctx, s.id, KeyTheme, theme)
}

// UserInfo returns nil without error when no profile has been stored or the
// stored document is not valid JSON.
func (s *Session) UserInfo(ctx context.Context) (*models.UserInfo, error) {
	raw, err := s.value(ctx, KeyUserInfo)
	if err != nil || raw == "" {
		return nil, err
	}
	var info models.UserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, nil
	}
	return &info, nil
}

func (s *Session) SetUserInfo(ctx context.Context, info models.UserInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal user info: %w", err)
	}
	return s.store.Set(ctx, s.id, KeyUserInfo, string(payload))
}

func (s *Session) value(ctx context.Context, key string) (string, error) {
	if s == nil || s.store == nil || s.id == "" {
		return "", nil
	}
	value, ok, err := s.store.Get(ctx, s.id, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}
