package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceAccounts(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)

	accounts, err := ws.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts.Accounts)

	deployer, created, err := ws.CreateAccount("deployer")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := ws.CreateAccount("deployer")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, deployer, again)

	_, _, err = ws.CreateAccount("alice")
	require.NoError(t, err)

	accounts, err = ws.LoadAccounts()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "deployer"}, accounts.Roles())

	signer, err := ws.Account("deployer")
	require.NoError(t, err)
	assert.Equal(t, deployer.Address, signer.Address.Hex())

	_, err = ws.Account("missing")
	require.Error(t, err)

	info, err := os.Stat(filepath.Join(ws.Dir(), "accounts.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadAccountsRejectsGarbage(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(ws.Dir(), "accounts.json"), []byte("{"), 0600))

	_, err = ws.LoadAccounts()
	require.Error(t, err)
}
