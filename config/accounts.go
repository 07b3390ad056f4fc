package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// AccountInfo is a named signing account kept in the workspace.
type AccountInfo struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
}

type AccountsFile struct {
	Accounts map[string]AccountInfo `json:"accounts"`
}

func (w *Workspace) accountsPath() string {
	return filepath.Join(w.dir, "accounts.json")
}

// LoadAccounts reads accounts.json. A missing file means no accounts.
func (w *Workspace) LoadAccounts() (*AccountsFile, error) {
	accounts := &AccountsFile{Accounts: make(map[string]AccountInfo)}

	data, err := os.ReadFile(w.accountsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return accounts, nil
		}
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}
	if err := json.Unmarshal(data, accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	if accounts.Accounts == nil {
		accounts.Accounts = make(map[string]AccountInfo)
	}
	return accounts, nil
}

// CreateAccount generates a key for role and saves it. An existing role is
// returned unchanged with created == false.
func (w *Workspace) CreateAccount(role string) (info AccountInfo, created bool, err error) {
	accounts, err := w.LoadAccounts()
	if err != nil {
		return AccountInfo{}, false, err
	}
	if existing, ok := accounts.Accounts[role]; ok {
		return existing, false, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return AccountInfo{}, false, fmt.Errorf("failed to generate key: %w", err)
	}
	info = AccountInfo{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
	}
	accounts.Accounts[role] = info

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return AccountInfo{}, false, fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := os.WriteFile(w.accountsPath(), data, 0600); err != nil {
		return AccountInfo{}, false, fmt.Errorf("failed to write accounts file: %w", err)
	}
	return info, true, nil
}

// Account returns the signer stored for role.
func (w *Workspace) Account(role string) (*Signer, error) {
	accounts, err := w.LoadAccounts()
	if err != nil {
		return nil, err
	}
	info, ok := accounts.Accounts[role]
	if !ok {
		return nil, fmt.Errorf("account %q not found in %s", role, w.accountsPath())
	}
	return NewSigner(info.PrivateKey)
}

// Roles returns the account names in order.
func (a *AccountsFile) Roles() []string {
	roles := make([]string, 0, len(a.Accounts))
	for role := range a.Accounts {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
