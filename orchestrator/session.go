package orchestrator

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/parthshah1/solwizard/compiler"
	"github.com/parthshah1/solwizard/config"
	"github.com/parthshah1/solwizard/deployer"
	"github.com/parthshah1/solwizard/errs"
)

// Compiler compiles one contract out of a source text. *compiler.Solc satisfies it.
type Compiler interface {
	CompileSource(ctx context.Context, fileName, source, contractName string) (*compiler.Result, error)
}

// Session is the state shared by the tasks of one run: the node, the signing
// account, and every contract compiled or deployed so far.
type Session struct {
	Config  *config.Config
	Backend deployer.Backend
	Signer  *config.Signer
	// NewBackend and NewSigner are called the first time a task needs the node
	// or the signing key, when Backend or Signer is not set.
	NewBackend func(ctx context.Context) (deployer.Backend, error)
	NewSigner  func() (*config.Signer, error)
	// Workspace, when set, records deployments and is searched for contracts
	// this session has not deployed itself.
	Workspace *config.Workspace
	// NewCompiler is called the first time a compile task runs.
	NewCompiler func(ctx context.Context) (Compiler, error)
	Logger      *log.Logger
	Out         io.Writer

	solc       Compiler
	transactor *deployer.Transactor
	artifacts  map[string]*compiler.Artifact
	contracts  map[string]*deployer.ContractWrapper
}

func NewSession(cfg *config.Config, backend deployer.Backend, signer *config.Signer) *Session {
	return &Session{
		Config:    cfg,
		Backend:   backend,
		Signer:    signer,
		Logger:    log.Default(),
		Out:       os.Stdout,
		artifacts: make(map[string]*compiler.Artifact),
		contracts: make(map[string]*deployer.ContractWrapper),
	}
}

// Compiler returns the session compiler, creating it on first use.
func (s *Session) Compiler(ctx context.Context) (Compiler, error) {
	if s.solc != nil {
		return s.solc, nil
	}
	if s.NewCompiler == nil {
		return nil, errs.Errorf(errs.ErrCompilation, "compile", "no compiler configured")
	}
	solc, err := s.NewCompiler(ctx)
	if err != nil {
		return nil, err
	}
	s.solc = solc
	return solc, nil
}

func (s *Session) backend(ctx context.Context) (deployer.Backend, error) {
	if s.Backend != nil {
		return s.Backend, nil
	}
	if s.NewBackend == nil {
		return nil, errs.Errorf(errs.ErrConfig, "connect", "no node connection")
	}
	backend, err := s.NewBackend(ctx)
	if err != nil {
		return nil, err
	}
	s.Backend = backend
	return backend, nil
}

func (s *Session) signer() (*config.Signer, error) {
	if s.Signer != nil || s.NewSigner == nil {
		return s.Signer, nil
	}
	signer, err := s.NewSigner()
	if err != nil {
		return nil, err
	}
	s.Signer = signer
	return signer, nil
}

// Transactor returns the session transactor. The node is dialed before the
// signing key is resolved, and the starting nonce is read once, on first use.
func (s *Session) Transactor(ctx context.Context) (*deployer.Transactor, error) {
	if s.transactor != nil {
		return s.transactor, nil
	}
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}
	signer, err := s.signer()
	if err != nil {
		return nil, err
	}
	tr, err := deployer.NewTransactor(ctx, backend, signer, deployer.Options{
		ChainID:        big.NewInt(s.Config.ChainID),
		GasLimit:       s.Config.GasLimit,
		ReceiptTimeout: s.Config.ReceiptTimeout,
		PollInterval:   s.Config.PollInterval,
		Logger:         s.Logger,
	})
	if err != nil {
		return nil, err
	}
	s.transactor = tr
	return tr, nil
}

// AddArtifact makes a compiled contract available to later deploy tasks.
func (s *Session) AddArtifact(artifact *compiler.Artifact) {
	s.artifacts[artifact.Name] = artifact
}

// Artifact returns a contract compiled in this session, or one saved in the workspace.
func (s *Session) Artifact(name string) (*compiler.Artifact, error) {
	if artifact, ok := s.artifacts[name]; ok {
		return artifact, nil
	}
	if s.Workspace == nil {
		return nil, fmt.Errorf("contract %s has not been compiled", name)
	}

	// bytecode is chain independent
	record, err := s.Workspace.FindDeployment(name, 0)
	if err != nil {
		return nil, fmt.Errorf("contract %s has not been compiled: %w", name, err)
	}
	contractABI, abiJSON, err := readABI(record.ABIPath)
	if err != nil {
		return nil, err
	}
	bin, err := os.ReadFile(record.BytecodePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read bytecode: %w", err)
	}
	bytecode, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(string(bin)), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode in %s: %w", record.BytecodePath, err)
	}

	artifact := &compiler.Artifact{
		Name:     record.Name,
		ABI:      contractABI,
		ABIJSON:  abiJSON,
		Bytecode: bytecode,
	}
	s.artifacts[name] = artifact
	return artifact, nil
}

// Contract returns a wrapper for a contract deployed in this session, or one
// recorded in the workspace (looked up by name or address).
func (s *Session) Contract(ctx context.Context, nameOrAddress string) (*deployer.ContractWrapper, error) {
	if cw, ok := s.contracts[nameOrAddress]; ok {
		return cw, nil
	}
	if s.Workspace == nil {
		return nil, fmt.Errorf("contract %s has not been deployed", nameOrAddress)
	}

	record, err := s.Workspace.FindDeployment(nameOrAddress, s.Config.ChainID)
	if err != nil {
		return nil, err
	}
	backend, err := s.backend(ctx)
	if err != nil {
		return nil, err
	}
	contractABI, _, err := readABI(record.ABIPath)
	if err != nil {
		return nil, err
	}
	cw := deployer.NewContractWrapper(backend, common.HexToAddress(record.Address), contractABI)
	s.contracts[nameOrAddress] = cw
	return cw, nil
}

func (s *Session) addContract(name string, cw *deployer.ContractWrapper) {
	s.contracts[name] = cw
}

func readABI(path string) (abi.ABI, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, nil, fmt.Errorf("failed to read ABI: %w", err)
	}
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, nil, fmt.Errorf("failed to parse ABI %s: %w", path, err)
	}
	return parsed, data, nil
}
