package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, "info", v.GetString("log.level"))
	assert.Equal(t, "text", v.GetString("log.format"))
	assert.True(t, v.GetBool("color"))
	assert.False(t, v.GetBool("execute"))
	assert.Empty(t, v.GetString("schema"))
	assert.Empty(t, v.GetString("database.dsn"))
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("DQRY_LOG_LEVEL", "debug")
	t.Setenv("DQRY_SCHEMA", "schema.yaml")

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DQRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	assert.Equal(t, "debug", v.GetString("log.level"))
	assert.Equal(t, "schema.yaml", v.GetString("schema"))
}
