package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAnalog/internal/domain/repository"
	"StockAnalog/internal/services/analogs"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadRepoConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, analogs.DefaultConfig(), c.Analogs())
	assert.Equal(t, "Asia/Seoul", c.Location().String())
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "clickhouse", c.Store.Backend)
	assert.Equal(t, "price_snapshots", c.Store.Table)
	assert.True(t, c.Metrics.Enabled)
	assert.True(t, c.SQLite.WAL)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, analogs.DefaultConfig(), c.Analogs())
}

func TestExplicitZeroValuesWin(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: test
metrics:
  enabled: false
analogs:
  change_weight: 0
  volume_weight: 1
  exclude_radius_days: 0
`))
	require.NoError(t, err)
	assert.False(t, c.Metrics.Enabled)

	a := c.Analogs()
	assert.Equal(t, 0.0, a.ChangeWeight)
	assert.Equal(t, 1.0, a.VolumeWeight)
	assert.Equal(t, 0, a.ExcludeRadiusDays)
	assert.Equal(t, 2, a.DedupDays)
}

func TestExcludeRadiusFollowsDedupDays(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: test\nanalogs:\n  dedup_days: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Analogs().ExcludeRadiusDays)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"missing environment": "store:\n  backend: sqlite\n",
		"bad backend":         "environment: test\nstore:\n  backend: postgres\n",
		"weights":             "environment: test\nanalogs:\n  change_weight: 0.7\n",
		"kafka brokers":       "environment: test\nkafka:\n  enabled: true\n",
		"timezone":            "environment: test\nserver:\n  timezone: Mars/Olympus\n",
		"request timeout":     "environment: test\nserver:\n  request_timeout: 0s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestBackendIsCaseInsensitive(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: test\nstore:\n  backend: SQLite\n"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, repository.BackendSQLite, repository.NormalizeBackend(c.Store.Backend))

	t.Setenv("STORE_BACKEND", "ClickHouse")
	c, err = LoadWithEnv(writeConfig(t, "environment: test\nstore:\n  backend: sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", c.Store.Backend)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9999")

	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, "/tmp/x.db", c.SQLite.Path)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 9999, c.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
