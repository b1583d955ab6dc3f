package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:         "quartermaster",
			EnableTelnet: true,
			EnableHTTP:   true,
		},
		Storage: StorageConfig{
			Backend:  BackendMemory,
			CacheTTL: time.Minute,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "qm",
			Password:        "qm",
			Name:            "qm",
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
		},
		Telnet: TelnetConfig{
			Host:         "0.0.0.0",
			Port:         4000,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Game: GameConfig{
			StartingGold:  10,
			StartingLevel: 0,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 10, cfg.Game.StartingGold)
	assert.Equal(t, 0, cfg.Game.StartingLevel)
	assert.Equal(t, 4000, cfg.Telnet.Port)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Minute, cfg.Storage.CacheTTL)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "postgres://qm:qm@localhost:5432/qm?sslmode=disable", cfg.Database.DSN())
}

func TestAddrs(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:4000", cfg.Telnet.Addr())
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
server:
  name: test-shop
storage:
  backend: file
  dir: /tmp/saves
  cache_size: 128
  cache_ttl: 30s
telnet:
  host: 127.0.0.1
  port: 4001
logging:
  level: debug
  format: console
game:
  starting_gold: 250
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-shop", cfg.Server.Name)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/saves", cfg.Storage.Dir)
	assert.Equal(t, 128, cfg.Storage.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.Storage.CacheTTL)
	assert.Equal(t, 4001, cfg.Telnet.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 250, cfg.Game.StartingGold)
	assert.True(t, cfg.Server.EnableHTTP, "defaults apply to omitted keys")
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  starting_gold: 5\n"), 0644))
	t.Setenv("QM_GAME_STARTING_GOLD", "77")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Game.StartingGold)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateServerNameEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Name = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateStorageBackend(t *testing.T) {
	for _, backend := range []string{BackendMemory, BackendPostgres} {
		cfg := validConfig()
		cfg.Storage.Backend = backend
		assert.NoError(t, cfg.Validate(), "backend %q should be valid", backend)
	}
	cfg := validConfig()
	cfg.Storage.Backend = "redis"
	assert.Error(t, cfg.Validate())
}

func TestValidateFileBackendRequiresDir(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = BackendFile
	cfg.Storage.Dir = ""
	assert.Error(t, cfg.Validate())
	cfg.Storage.Dir = "saves"
	assert.NoError(t, cfg.Validate())
}

func TestValidateNegativeCache(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.CacheSize = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateDatabaseOnlyForPostgres(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	assert.NoError(t, cfg.Validate(), "database settings are ignored for memory backend")

	cfg.Storage.Backend = BackendPostgres
	assert.Error(t, cfg.Validate())
}

func TestValidateDatabaseSSLMode(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = BackendPostgres
	cfg.Database.SSLMode = "maybe"
	assert.Error(t, cfg.Validate())
}

func TestValidateMinConnsExceedsMax(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = BackendPostgres
	cfg.Database.MinConns = 20
	cfg.Database.MaxConns = 5
	assert.Error(t, cfg.Validate())
}

func TestValidateDisabledFrontendsSkipChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Server.EnableTelnet = false
	cfg.Server.EnableHTTP = false
	cfg.Telnet.Port = -1
	cfg.HTTP.Port = 99999
	assert.NoError(t, cfg.Validate())
}

func TestValidateLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateGame(t *testing.T) {
	cfg := validConfig()
	cfg.Game.StartingGold = -5
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Game.StartingLevel = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Name = ""
	cfg.Logging.Level = "loud"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.name")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestProperty_TelnetPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(-1000, 70000).Draw(t, "port")
		cfg := validConfig()
		cfg.Telnet.Port = port
		err := cfg.Validate()
		if port >= 0 && port <= 65535 {
			if err != nil {
				t.Fatalf("port %d should be valid: %v", port, err)
			}
		} else if err == nil {
			t.Fatalf("port %d should be invalid", port)
		}
	})
}

func TestValidateNegativeLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Telnet.MaxConnections = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.HTTP.SessionIdleTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidateSessionIdleTimeoutFloor(t *testing.T) {
	for _, d := range []time.Duration{time.Nanosecond, 999 * time.Millisecond} {
		cfg := validConfig()
		cfg.HTTP.SessionIdleTimeout = d
		assert.Error(t, cfg.Validate(), "idle timeout %s", d)
	}
	for _, d := range []time.Duration{0, MinSessionIdleTimeout, 30 * time.Minute} {
		cfg := validConfig()
		cfg.HTTP.SessionIdleTimeout = d
		assert.NoError(t, cfg.Validate(), "idle timeout %s", d)
	}
}

func TestValidateMaxSessions(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.MaxSessions = -1
	assert.Error(t, cfg.Validate())

	assert.Equal(t, 1024, Default().HTTP.MaxSessions)
}
