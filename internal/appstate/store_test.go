package appstate

import (
	"context"
	"testing"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTripsValues(t *testing.T) {
	ctx := context.Background()
	session := NewSession(NewMemoryStore(), NewSessionID())

	require.NoError(t, session.SetToken(ctx, "tok-1"))
	require.NoError(t, session.SetCSRFToken(ctx, "csrf-1"))

	token, err := session.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)

	csrf, err := session.CSRFToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "csrf-1", csrf)

	require.NoError(t, session.ClearToken(ctx))
	token, err = session.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestSessionThemeDefaultsToLight(t *testing.T) {
	ctx := context.Background()
	session := NewSession(NewMemoryStore(), "s1")

	theme, err := session.Theme(ctx)
	require.NoError(t, err)
	require.Equal(t, "light", theme)

	require.NoError(t, session.SetTheme(ctx, "dark"))
	theme, err = session.Theme(ctx)
	require.NoError(t, err)
	require.Equal(t, "dark", theme)
}

func TestSessionUserInfo(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := NewSession(store, "s1")

	info, err := session.UserInfo(ctx)
	require.NoError(t, err)
	require.Nil(t, info)

	require.NoError(t, session.SetUserInfo(ctx, models.UserInfo{ID: 3, Account: "member03"}))
	info, err = session.UserInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	require.Equal(t, "member03", info.Account)

	require.NoError(t, store.Set(ctx, "s1", KeyUserInfo, "{not json"))
	info, err = session.UserInfo(ctx)
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestSessionWithoutIDReadsNothing(t *testing.T) {
	session := NewSession(NewMemoryStore(), "  ")

	token, err := session.Token(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
}
