package compiler

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/parthshah1/solwizard/errs"
)

// Artifact is everything needed to deploy and talk to one compiled contract.
type Artifact struct {
	Name            string
	SourceFile      string
	ABI             abi.ABI
	ABIJSON         []byte
	Bytecode        []byte
	CompilerVersion string
}

// Result is the outcome of compiling a single source file.
type Result struct {
	Source   string
	Output   *Output
	Raw      []byte
	Artifact *Artifact
}

// CompileFile reads a source file, compiles it and extracts contractName.
func (s *Solc) CompileFile(ctx context.Context, sourcePath, contractName string) (*Result, error) {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract source: %w", err)
	}
	return s.CompileSource(ctx, filepath.Base(sourcePath), string(content), contractName)
}

// CompileSource compiles source text registered under fileName and extracts contractName.
func (s *Solc) CompileSource(ctx context.Context, fileName, source, contractName string) (*Result, error) {
	output, raw, err := s.CompileStandard(ctx, NewInput(fileName, source))
	if err != nil {
		return nil, err
	}

	artifact, err := output.Artifact(fileName, contractName)
	if err != nil {
		return nil, err
	}
	artifact.CompilerVersion = s.Version.String()

	return &Result{
		Source:   source,
		Output:   output,
		Raw:      raw,
		Artifact: artifact,
	}, nil
}

// ContractNames lists "file:Contract" for every contract in the output.
func (o *Output) ContractNames() []string {
	var names []string
	for file, contracts := range o.Contracts {
		for name := range contracts {
			names = append(names, file+":"+name)
		}
	}
	sort.Strings(names)
	return names
}

// Artifact extracts the ABI and creation bytecode of name. An empty fileName
// searches every source file.
func (o *Output) Artifact(fileName, name string) (*Artifact, error) {
	contract, file, ok := o.find(fileName, name)
	if !ok {
		return nil, errs.Errorf(errs.ErrCompilation, "extract artifact",
			"contract %s not found in compiler output (have %s)", name, strings.Join(o.ContractNames(), ", "))
	}

	abiJSON, err := contract.abiJSON()
	if err != nil {
		return nil, errs.Errorf(errs.ErrCompilation, "extract artifact", "%s: %w", name, err)
	}
	parsed, err := abi.JSON(bytes.NewReader(abiJSON))
	if err != nil {
		return nil, errs.Errorf(errs.ErrCompilation, "extract artifact", "%s: invalid ABI: %w", name, err)
	}

	object := strings.TrimPrefix(contract.EVM.Bytecode.Object, "0x")
	if object == "" {
		return nil, errs.Errorf(errs.ErrCompilation, "extract artifact", "%s has no bytecode (abstract contract or interface?)", name)
	}
	if strings.Contains(object, "__") {
		return nil, errs.Errorf(errs.ErrCompilation, "extract artifact", "%s has unlinked library references", name)
	}
	bytecode, err := hex.DecodeString(object)
	if err != nil {
		return nil, errs.Errorf(errs.ErrCompilation, "extract artifact", "%s: invalid bytecode: %w", name, err)
	}

	return &Artifact{
		Name:       name,
		SourceFile: file,
		ABI:        parsed,
		ABIJSON:    abiJSON,
		Bytecode:   bytecode,
	}, nil
}

func (o *Output) find(fileName, name string) (Contract, string, bool) {
	if fileName != "" {
		c, ok := o.Contracts[fileName][name]
		return c, fileName, ok
	}
	files := make([]string, 0, len(o.Contracts))
	for file := range o.Contracts {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		if c, ok := o.Contracts[file][name]; ok {
			return c, file, true
		}
	}
	return Contract{}, "", false
}

// abiJSON prefers the abi output and falls back to metadata.output.abi.
func (c Contract) abiJSON() ([]byte, error) {
	if trimmed := bytes.TrimSpace(c.ABI); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		return trimmed, nil
	}
	if c.Metadata == "" {
		return nil, fmt.Errorf("no abi or metadata in output")
	}
	var metadata struct {
		Output struct {
			ABI json.RawMessage `json:"abi"`
		} `json:"output"`
	}
	if err := json.Unmarshal([]byte(c.Metadata), &metadata); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	if len(metadata.Output.ABI) == 0 {
		return nil, fmt.Errorf("metadata has no abi")
	}
	return metadata.Output.ABI, nil
}

// WriteArtifact writes the raw compiler output as indented JSON.
func WriteArtifact(path string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format compiler output: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write compiler output: %w", err)
	}
	return nil
}
