package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DeploymentRecord is one deployed contract as persisted in deployments.json.
type DeploymentRecord struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	DeployerAddress string `json:"deployer_address"`
	TxHash          string `json:"txhash"`
	BlockNumber     uint64 `json:"block_number"`
	ChainID         int64  `json:"chain_id"`
	ABIPath         string `json:"abi_path"`
	BytecodePath    string `json:"bytecode_path"`
}

type deploymentsFile struct {
	Deployments []DeploymentRecord `json:"deployments"`
}

// Workspace keeps deployment records and contract artifacts on disk.
type Workspace struct {
	dir             string
	contractsDir    string
	deploymentsFile string
}

// NewWorkspace creates the workspace directory layout if needed.
func NewWorkspace(dir string) (*Workspace, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	contractsDir := filepath.Join(absDir, "contracts")
	if err := os.MkdirAll(contractsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return &Workspace{
		dir:             absDir,
		contractsDir:    contractsDir,
		deploymentsFile: filepath.Join(absDir, "deployments.json"),
	}, nil
}

// Dir returns the absolute workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// SaveArtifacts writes the contract ABI and creation bytecode next to the deployments file
// and returns their paths.
func (w *Workspace) SaveArtifacts(name string, abiJSON []byte, bytecode []byte) (string, string, error) {
	base := strings.ToLower(name)

	abiPath := filepath.Join(w.contractsDir, base+".abi.json")
	if err := os.WriteFile(abiPath, abiJSON, 0644); err != nil {
		return "", "", fmt.Errorf("failed to save ABI: %w", err)
	}

	bytecodePath := filepath.Join(w.contractsDir, base+".bin")
	if err := os.WriteFile(bytecodePath, []byte(fmt.Sprintf("%x", bytecode)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to save bytecode: %w", err)
	}
	return abiPath, bytecodePath, nil
}

// SaveDeployment inserts or replaces the record with the same name.
func (w *Workspace) SaveDeployment(record DeploymentRecord) error {
	records, err := w.LoadDeployments()
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].Name == record.Name {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	data, err := json.MarshalIndent(deploymentsFile{Deployments: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deployments: %w", err)
	}
	if err := os.WriteFile(w.deploymentsFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write deployments file: %w", err)
	}
	return nil
}

// LoadDeployments returns all records. A missing file means no deployments yet.
func (w *Workspace) LoadDeployments() ([]DeploymentRecord, error) {
	data, err := os.ReadFile(w.deploymentsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read deployments file: %w", err)
	}

	var file deploymentsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse deployments file: %w", err)
	}
	return file.Deployments, nil
}

// FindDeployment looks a record up by contract name (case-insensitive) or
// address. A non-zero chainID skips records made on another chain; records
// without a chain id match any.
func (w *Workspace) FindDeployment(nameOrAddress string, chainID int64) (*DeploymentRecord, error) {
	records, err := w.LoadDeployments()
	if err != nil {
		return nil, err
	}
	var elsewhere []int64
	for i := range records {
		if !strings.EqualFold(records[i].Name, nameOrAddress) && !strings.EqualFold(records[i].Address, nameOrAddress) {
			continue
		}
		if chainID != 0 && records[i].ChainID != 0 && records[i].ChainID != chainID {
			elsewhere = append(elsewhere, records[i].ChainID)
			continue
		}
		return &records[i], nil
	}
	if len(elsewhere) > 0 {
		return nil, fmt.Errorf("deployment %q was recorded on chain %d, not chain %d", nameOrAddress, elsewhere[0], chainID)
	}
	return nil, fmt.Errorf("deployment %q not found in %s", nameOrAddress, w.deploymentsFile)
}
