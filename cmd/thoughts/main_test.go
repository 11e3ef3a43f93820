// ABOUTME: Tests for the CLI: token persistence and commands against an in-process server
// ABOUTME: Stubs the terminal so passwords come from a piped reader

package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/deep-thoughts/internal/client"
	"github.com/2389/deep-thoughts/internal/config"
	"github.com/2389/deep-thoughts/internal/server"
	"github.com/2389/deep-thoughts/internal/store"
)

func TestTokenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DEEP_THOUGHTS_TOKEN", "")

	assert.Empty(t, getToken())

	require.NoError(t, saveToken("abc.def.ghi"))
	assert.Equal(t, "abc.def.ghi", getToken())

	info, err := os.Stat(filepath.Join(dir, "deep-thoughts", "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	t.Setenv("DEEP_THOUGHTS_TOKEN", "from-env")
	assert.Equal(t, "from-env", getToken())
	t.Setenv("DEEP_THOUGHTS_TOKEN", "")

	require.NoError(t, removeToken())
	assert.Empty(t, getToken())
	require.NoError(t, removeToken())
}

func newTestApp(t *testing.T, stdin string) (*app, *bytes.Buffer, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DEEP_THOUGHTS_TOKEN", "")

	prev := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = prev })

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "0123456789abcdef0123456789abcdef",
			TokenTTL:  time.Hour,
		},
	}
	srv, err := server.NewWithStore(cfg, store.NewMockStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	var out bytes.Buffer
	return &app{
		client: client.New(ts.URL),
		in:     bufio.NewReader(strings.NewReader(stdin)),
		out:    &out,
	}, &out, ts.URL
}

func TestApp_SignupPostAndFeed(t *testing.T) {
	a, out, _ := newTestApp(t, "secret1\n")
	ctx := context.Background()

	require.NoError(t, a.signup(ctx, []string{"alice", "alice@example.com"}))
	assert.Contains(t, out.String(), "Welcome, alice!")
	assert.NotEmpty(t, getToken())

	require.NoError(t, a.post(ctx, []string{"hello", "world"}))
	assert.Contains(t, out.String(), "Posted ")

	out.Reset()
	require.NoError(t, a.feed(ctx, []string{"--user", "alice"}))
	assert.Contains(t, out.String(), "hello world")
	assert.Contains(t, out.String(), "alice")

	out.Reset()
	require.NoError(t, a.me(ctx))
	assert.Contains(t, out.String(), "Thoughts: 1")
}

func TestApp_LoginUsesSavedToken(t *testing.T) {
	a, out, url := newTestApp(t, "secret1\nsecret1\n")
	ctx := context.Background()

	require.NoError(t, a.signup(ctx, []string{"alice", "alice@example.com"}))
	require.NoError(t, a.logout())
	assert.Empty(t, getToken())

	a.client = client.New(url)
	require.NoError(t, a.login(ctx, []string{"alice@example.com"}))
	assert.Contains(t, out.String(), "Logged in as alice")

	// A fresh client picks up the saved token.
	fresh := &app{client: client.New(url, client.WithToken(getToken())), out: out}
	require.NoError(t, fresh.me(ctx))
}

func TestApp_ReactAndBefriend(t *testing.T) {
	a, out, url := newTestApp(t, "secret1\n")
	ctx := context.Background()

	bob := client.New(url)
	bobAuth, err := bob.Signup(ctx, "bob", "bob@example.com", "secret2")
	require.NoError(t, err)
	thought, err := bob.AddThought(ctx, "first")
	require.NoError(t, err)

	require.NoError(t, a.signup(ctx, []string{"alice", "alice@example.com"}))

	out.Reset()
	require.NoError(t, a.react(ctx, []string{thought.ID, "nice", "one"}))
	assert.Contains(t, out.String(), "alice: nice one")

	out.Reset()
	require.NoError(t, a.befriend(ctx, []string{bobAuth.User.ID}))
	assert.Contains(t, out.String(), "1 friend(s)")
}

func TestApp_UsageErrors(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	ctx := context.Background()

	assert.Error(t, a.signup(ctx, nil))
	assert.Error(t, a.login(ctx, nil))
	assert.Error(t, a.post(ctx, nil))
	assert.Error(t, a.react(ctx, []string{"id"}))
	assert.Error(t, a.befriend(ctx, nil))
	assert.Error(t, a.user(ctx, nil))
	assert.ErrorIs(t, a.me(ctx), client.ErrNoToken)

	err := a.user(ctx, []string{"ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestApp_EmptyFeed(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	require.NoError(t, a.feed(context.Background(), nil))
	assert.Contains(t, out.String(), "no thoughts yet")
}
