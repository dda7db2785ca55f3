package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "welcome.json", cfg.TemplatePath)
	assert.Equal(t, 10*time.Second, cfg.Dispatch.Timeout)
	assert.Equal(t, DedupMemory, cfg.Dedup.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Dedup.TTL)
	assert.True(t, cfg.Metrics.Enabled)

	// The token has no default, so the defaults alone are not a valid config.
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "verification_token", errs[0].Field)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ONBOARD_VERIFICATION_TOKEN", "s3cret")
	t.Setenv("ONBOARD_SERVER_ADDR", ":8080")
	t.Setenv("ONBOARD_DISPATCH_TIMEOUT", "3s")
	t.Setenv("ONBOARD_INSTALL_TEAM_ID", "T1")
	t.Setenv("ONBOARD_INSTALL_BOT_TOKEN", "xoxb-1")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.VerificationToken)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Dispatch.Timeout)
	require.Len(t, cfg.InstalledTeams(), 1)
	assert.Equal(t, "T1", cfg.InstalledTeams()[0].Key())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
verification_token: from-file
log:
  level: debug
  format: json
dedup:
  backend: redis
  ttl: 1m
redis:
  addr: redis:6379
teams:
  - id: T1
    bot_token: xoxb-1
    bot_user_id: UBOT1
  - id: T2
    bot_token: xoxb-2
`), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.VerificationToken)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DedupRedis, cfg.Dedup.Backend)
	assert.Equal(t, time.Minute, cfg.Dedup.TTL)
	require.Len(t, cfg.Teams, 2)
	assert.Equal(t, "UBOT1", cfg.Teams[0].BotUserID)
	assert.Empty(t, cfg.Teams[1].BotUserID)
}

func TestReadFile_Missing(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.NoError(t, ReadFile(New(), ""))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.VerificationToken = "T"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "loud" }, field: "log.level"},
		{name: "log format", mutate: func(c *Config) { c.Log.Format = "xml" }, field: "log.format"},
		{name: "dedup backend", mutate: func(c *Config) { c.Dedup.Backend = "etcd" }, field: "dedup.backend"},
		{name: "dedup ttl", mutate: func(c *Config) { c.Dedup.TTL = 0 }, field: "dedup.ttl"},
		{name: "negative timeout", mutate: func(c *Config) { c.Dispatch.Timeout = -time.Second }, field: "dispatch.timeout"},
		{name: "redis addr", mutate: func(c *Config) { c.Dedup.Backend = DedupRedis; c.Redis.Addr = "" }, field: "redis.addr"},
		{name: "team token", mutate: func(c *Config) { c.Teams = []TeamConfig{{ID: "T1"}} }, field: "teams[0].bot_token"},
		{
			name: "duplicate team",
			mutate: func(c *Config) {
				c.Install = TeamConfig{TeamID: "T1", BotToken: "a"}
				c.Teams = []TeamConfig{{ID: "T1", BotToken: "b"}}
			},
			field: "teams[1].id",
		},
	}

	assert.Empty(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var none ValidationErrors
	assert.Empty(t, none.Error())

	one := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
	assert.Equal(t, "a: bad (got: 1)", one.Error())

	two := ValidationErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	assert.True(t, strings.HasPrefix(two.Error(), "2 validation errors:"))
}
