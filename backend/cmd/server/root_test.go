package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-admin/backend/config"
	"org-admin/backend/pkg/jwt"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())

	down, _, err := cmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "down", down.Name())
	assert.NotNil(t, down.Flags().Lookup("steps"))

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "down", "--steps", "0"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps")
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	t.Setenv("ORGADMIN_AUTH_JWT_SECRET", "short")

	_, _, err := bootstrap(&rootOptions{})
	assert.Error(t, err)
}

func TestTokenCmd_IssuesParsableToken(t *testing.T) {
	t.Setenv("ORGADMIN_AUTH_JWT_SECRET", "cmd-test-secret-0123456789")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", "3", "--perm", "system:dept:list"})
	require.NoError(t, cmd.Execute())

	mgr := jwt.NewManager(&config.AuthConfig{JWTSecret: "cmd-test-secret-0123456789", AccessTokenTTL: time.Hour})
	claims, err := mgr.ParseToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), claims.UserID)
	assert.True(t, claims.HasPermission("system:dept:list"))
	assert.False(t, claims.HasPermission("system:dept:delete"))
}

func TestTokenCmd_RequiresUser(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"token"})
	assert.Error(t, cmd.Execute())
}
