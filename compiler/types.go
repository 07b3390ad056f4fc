// Package compiler drives the Solidity compiler through its standard JSON
// interface and extracts deployable artifacts from the result.
package compiler

import (
	"encoding/json"
	"strings"
)

// DefaultOutputSelection requests the artifacts the deployer consumes plus
// metadata and source maps for inspection.
var DefaultOutputSelection = map[string]map[string][]string{
	"*": {"*": {"abi", "metadata", "evm.bytecode", "evm.sourceMap"}},
}

// Input is a solc standard JSON request.
type Input struct {
	Language string            `json:"language"`
	Sources  map[string]Source `json:"sources"`
	Settings Settings          `json:"settings"`
}

// Source is one entry of Input.Sources.
type Source struct {
	Content string `json:"content"`
}

// Settings is the subset of solc settings the tool sets.
type Settings struct {
	Optimizer       *Optimizer                     `json:"optimizer,omitempty"`
	EVMVersion      string                         `json:"evmVersion,omitempty"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

// Optimizer toggles the solc optimizer.
type Optimizer struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs"`
}

// NewInput builds a request for a single source file.
func NewInput(fileName, content string) *Input {
	return &Input{
		Language: "Solidity",
		Sources:  map[string]Source{fileName: {Content: content}},
		Settings: Settings{OutputSelection: DefaultOutputSelection},
	}
}

// Output is a solc standard JSON response, indexed by file name then contract name.
type Output struct {
	Errors    []Diagnostic                   `json:"errors,omitempty"`
	Sources   map[string]SourceID            `json:"sources,omitempty"`
	Contracts map[string]map[string]Contract `json:"contracts,omitempty"`
}

// SourceID is the per-file id solc assigns.
type SourceID struct {
	ID int `json:"id"`
}

// Diagnostic is an error or warning reported by solc.
type Diagnostic struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Component        string `json:"component"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage,omitempty"`
}

func (d Diagnostic) String() string {
	if d.FormattedMessage != "" {
		return strings.TrimSpace(d.FormattedMessage)
	}
	return d.Type + ": " + d.Message
}

// Contract is the compiled output for one contract.
type Contract struct {
	ABI      json.RawMessage `json:"abi,omitempty"`
	Metadata string          `json:"metadata,omitempty"`
	EVM      EVM             `json:"evm"`
}

// EVM holds the EVM-level outputs.
type EVM struct {
	Bytecode Bytecode `json:"bytecode"`
}

// Bytecode is the creation code as hex without 0x prefix.
type Bytecode struct {
	Object    string `json:"object"`
	SourceMap string `json:"sourceMap,omitempty"`
}

// Errs returns the diagnostics with error severity.
func (o *Output) Errs() []Diagnostic {
	var out []Diagnostic
	for _, d := range o.Errors {
		if d.Severity == "error" {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the non-error diagnostics.
func (o *Output) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range o.Errors {
		if d.Severity != "error" {
			out = append(out, d)
		}
	}
	return out
}
