package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	c := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, ":8000", c.Addr())
	assert.Equal(t, DriverMongo, c.Database.Driver)
	assert.Equal(t, "/v1/chat/completions", c.LLM.Path)
	assert.Equal(t, 7*24*time.Hour, c.Auth.TokenTTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: mysql
  mysql:
    host: db.internal
    port: 3307
llm:
  model: qwen-plus
  timeout: 15s
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("LLM_API_KEY", "sk-test")

	c := Load(path)
	assert.Equal(t, ":9100", c.Addr())
	assert.Equal(t, DriverMySQL, c.Database.Driver)
	assert.Equal(t, "db.internal", c.Database.MySQL.Host)
	assert.Equal(t, 3307, c.Database.MySQL.Port)
	assert.Equal(t, "qwen-plus", c.LLM.Model)
	assert.Equal(t, 15*time.Second, c.LLM.Timeout)
	assert.Equal(t, "sk-test", c.LLM.APIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MONGO_DB=from_dotenv\nDB_DRIVER=memory\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("MONGO_DB")
		os.Unsetenv("DB_DRIVER")
	})

	c := Load(filepath.Join(dir, "none.yaml"))
	assert.Equal(t, "from_dotenv", c.Database.Mongo.DB)
	assert.Equal(t, DriverMemory, c.Database.Driver)
}

func TestEnvOverrideIntIgnoresGarbage(t *testing.T) {
	n := 42
	t.Setenv("SOME_INT", "abc")
	envOverrideInt(&n, "SOME_INT")
	assert.Equal(t, 42, n)
}
