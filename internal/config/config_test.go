package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validConfig = `
[database]
dbname = "agenda"
user = "agenda"

[engine]
capacity_policy = "service"
bucket_granularity_minutes = 30
default_closed_day = false
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	// Незаданные секции получают значения по умолчанию
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	assert.Equal(t, "service", cfg.Engine.CapacityPolicy)
	assert.Equal(t, 30, cfg.Engine.BucketGranularityMinutes)
	assert.False(t, cfg.Engine.DefaultClosedDay)
}

func TestLoadEngineDefaultsForAgendas(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	// Дефолты движка переносятся в репозиторий агенд доменными типами
	defaults := agendaRepo.EngineDefaults{
		CapacityPolicy:           domain.CapacityPolicy(cfg.Engine.CapacityPolicy),
		BucketGranularityMinutes: cfg.Engine.BucketGranularityMinutes,
		DefaultClosedDay:         cfg.Engine.DefaultClosedDay,
	}
	assert.Equal(t, domain.CapacityPolicyService, defaults.CapacityPolicy)
	assert.Equal(t, 30, defaults.BucketGranularityMinutes)
}

func TestLoadRejectsUnknownCapacityPolicy(t *testing.T) {
	_, err := Load(writeConfig(t, `
[database]
dbname = "agenda"
user = "agenda"

[engine]
capacity_policy = "per-room"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity_policy")
}

func TestLoadRequiresDatabaseCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
[database]
dbname = "agenda"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user")
}
