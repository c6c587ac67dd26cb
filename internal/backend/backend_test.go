package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financaszen/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	app := config.Defaults()
	app.DataBackend = "memory"
	app.MemorySeedDir = "seed"

	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, cfg.Type)
	assert.Equal(t, "seed", cfg.SeedDirectory)

	app.DataBackend = "sheets"
	_, err = FromAppConfig(app)
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "zen.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "postgres"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	dir := t.TempDir()
	seed := `[{"id":"acc-1","name":"Carteira","type":"cash","initialBalance":50}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank_accounts.json"), []byte(seed), 0o600))

	mem, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, SeedDirectory: dir})
	require.NoError(t, err)
	raw, err := mem.Store.Get(ctx, "bank_accounts", "acc-1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Carteira")
	require.NoError(t, mem.Cleanup())

	sq, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "db", "zen.db")})
	require.NoError(t, err)
	require.NoError(t, sq.Store.Ping(ctx))
	require.NoError(t, sq.Cleanup())

	_, err = f.CreateBackend(ctx, Config{Type: "sheets"})
	assert.Error(t, err)
}
