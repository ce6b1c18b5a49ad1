package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Format string        `yaml:"format"`
	TTL    time.Duration `yaml:"ttl"`
	Server struct {
		Host string `yaml:"host"`
		Port int64  `yaml:"port"`
	} `yaml:"server"`
}

func TestFromYamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\nttl: 30s\nserver:\n  host: fim.local\n  port: 8443\n"), 0o600))

	conf := testConfig{Format: "text"}
	require.NoError(t, FromYamlFile(path, &conf))
	assert.Equal(t, "json", conf.Format)
	assert.Equal(t, 30*time.Second, conf.TTL)
	assert.Equal(t, "fim.local", conf.Server.Host)
	assert.Equal(t, int64(8443), conf.Server.Port)
}

func TestFromYamlKeepsDefaults(t *testing.T) {
	conf := testConfig{Format: "text"}
	require.NoError(t, FromYaml([]byte("ttl: 1m\n"), &conf))
	assert.Equal(t, "text", conf.Format)
}

func TestFromYamlUnknownField(t *testing.T) {
	var conf testConfig
	err := FromYaml([]byte("formt: json\n"), &conf)
	require.ErrorContains(t, err, "failed to parse config")
}

func TestFromYamlFileMissing(t *testing.T) {
	var conf testConfig
	err := FromYamlFile(filepath.Join(t.TempDir(), "nope.yaml"), &conf)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromYamlEmpty(t *testing.T) {
	conf := testConfig{Format: "text"}
	require.NoError(t, FromYaml(nil, &conf))
	assert.Equal(t, "text", conf.Format)
}
