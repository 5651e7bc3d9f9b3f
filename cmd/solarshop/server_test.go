package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/solarshop/internal/shell/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_CreatesDataDirs(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("SOLARSHOP_DATABASE_DSN", filepath.Join(dir, "db", "shop.db"))
	t.Setenv("SOLARSHOP_MEDIA_DIR", filepath.Join(dir, "media"))
	t.Cleanup(func() { os.Unsetenv("SOLARSHOP_MEDIA_DIR") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	srv, err := NewServer(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, srv.relay)

	_, err = os.Stat(filepath.Join(dir, "db", "shop.db"))
	assert.NoError(t, err)

	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestNewServer_BadStorage(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Database.DSN = filepath.Join(dir, "shop.db")
	cfg.Media.Dir = filepath.Join(blocker, "media")

	_, err = NewServer(context.Background(), cfg, discardLogger())
	require.Error(t, err)

	var sErr *ServerError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, ExitStorageError, sErr.ExitCode)
}

func TestNewRelay(t *testing.T) {
	s := seedStore(t)
	rec := metrics.NewRecorder()

	assert.Nil(t, newRelay(WhatsAppConfig{}, "Rs", s, rec, discardLogger()))

	relay := newRelay(WhatsAppConfig{
		PhoneNumberID: "1234",
		AccessToken:   "token",
		Recipient:     "+92 300 1234567",
	}, "Rs", s, rec, discardLogger())
	assert.NotNil(t, relay)
}
