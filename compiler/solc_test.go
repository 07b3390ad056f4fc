package compiler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/parthshah1/solwizard/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storageSource = "../contracts/simple_storage.sol"

// fakeSolcScript answers --version and replays a canned standard JSON output.
func fakeSolcScript(version, outputPath string) string {
	return fmt.Sprintf(`#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "solc, the solidity compiler commandline interface"
  echo "Version: %s+commit.26b70077.Linux.g++"
  exit 0
fi
cat > /dev/null
cat '%s'
`, version, outputPath)
}

func writeFakeSolc(t *testing.T, dir, name, version, fixture string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake solc is a shell script")
	}
	outputPath, err := filepath.Abs(filepath.Join("testdata", fixture))
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(fakeSolcScript(version, outputPath)), 0755))
	return path
}

func newFakeSolc(t *testing.T, fixture string) *Solc {
	t.Helper()
	path := writeFakeSolc(t, t.TempDir(), "solc", "0.6.0", fixture)
	solc, err := NewSolc(context.Background(), path, log.New(os.Stderr))
	require.NoError(t, err)
	return solc
}

func TestParseVersionOutput(t *testing.T) {
	v, err := ParseVersionOutput("solc, the solidity compiler commandline interface\nVersion: 0.8.19+commit.7dd6d404.Linux.g++\n")
	require.NoError(t, err)
	assert.Equal(t, "0.8.19", v.String())

	_, err = ParseVersionOutput("garbage")
	require.ErrorIs(t, err, errs.ErrCompilation)
}

func TestSolcVersionRequirement(t *testing.T) {
	solc := newFakeSolc(t, "simple_storage_output.json")
	assert.Equal(t, "0.6.0", solc.Version.String())

	require.NoError(t, solc.Require("0.6.0"))
	require.NoError(t, solc.Require("~> 0.6.0"))
	require.NoError(t, solc.Require(">= 0.5, < 0.7"))
	require.NoError(t, solc.Require(""))

	require.ErrorIs(t, solc.Require("0.8.19"), errs.ErrCompilation)
	require.ErrorIs(t, solc.Require("not a version"), errs.ErrConfig)
}

func TestNewSolcMissingExecutable(t *testing.T) {
	_, err := NewSolc(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	require.ErrorIs(t, err, errs.ErrCompilation)
}

func TestCompileFile(t *testing.T) {
	solc := newFakeSolc(t, "simple_storage_output.json")

	result, err := solc.CompileFile(context.Background(), storageSource, "SimpleStorage")
	require.NoError(t, err)

	artifact := result.Artifact
	assert.Equal(t, "SimpleStorage", artifact.Name)
	assert.Equal(t, "simple_storage.sol", artifact.SourceFile)
	assert.Equal(t, "0.6.0", artifact.CompilerVersion)
	assert.Contains(t, result.Source, "contract SimpleStorage")
	assert.NotEmpty(t, artifact.Bytecode)

	require.Contains(t, artifact.ABI.Methods, "store")
	require.Contains(t, artifact.ABI.Methods, "retrieve")
	assert.Equal(t, "6057361d", fmt.Sprintf("%x", artifact.ABI.Methods["store"].ID))
	assert.Equal(t, "2e64cec1", fmt.Sprintf("%x", artifact.ABI.Methods["retrieve"].ID))
	assert.Len(t, result.Output.Warnings(), 1)
}

func TestCompilerInputIsStable(t *testing.T) {
	source, err := os.ReadFile(storageSource)
	require.NoError(t, err)

	first, err := json.Marshal(NewInput("simple_storage.sol", string(source)))
	require.NoError(t, err)
	second, err := json.Marshal(NewInput("simple_storage.sol", string(source)))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

// TestCompileIsDeterministic needs a real solc 0.6 on PATH.
func TestCompileIsDeterministic(t *testing.T) {
	path, err := exec.LookPath("solc")
	if err != nil {
		t.Skip("solc not on PATH")
	}
	solc, err := NewSolc(context.Background(), path, log.New(os.Stderr))
	require.NoError(t, err)
	if ok, _ := solc.Satisfies(">= 0.6.0, < 0.7.0"); !ok {
		t.Skipf("solc %s cannot compile ^0.6.0 sources", solc.Version)
	}

	first, err := solc.CompileFile(context.Background(), storageSource, "SimpleStorage")
	require.NoError(t, err)
	second, err := solc.CompileFile(context.Background(), storageSource, "SimpleStorage")
	require.NoError(t, err)

	assert.Equal(t, first.Artifact.Bytecode, second.Artifact.Bytecode)
	assert.JSONEq(t, string(first.Artifact.ABIJSON), string(second.Artifact.ABIJSON))
}

func TestCompileReportsErrors(t *testing.T) {
	solc := newFakeSolc(t, "syntax_error_output.json")

	_, err := solc.CompileSource(context.Background(), "simple_storage.sol", "contract {", "SimpleStorage")
	require.ErrorIs(t, err, errs.ErrCompilation)
	assert.Contains(t, err.Error(), "ParserError")
}

func TestCompileUnknownContract(t *testing.T) {
	solc := newFakeSolc(t, "simple_storage_output.json")

	_, err := solc.CompileFile(context.Background(), storageSource, "Missing")
	require.ErrorIs(t, err, errs.ErrCompilation)
	assert.Contains(t, err.Error(), "simple_storage.sol:SimpleStorage")
}

func TestCompileMissingSource(t *testing.T) {
	solc := newFakeSolc(t, "simple_storage_output.json")

	_, err := solc.CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.sol"), "SimpleStorage")
	require.Error(t, err)
}

func TestWriteArtifact(t *testing.T) {
	solc := newFakeSolc(t, "simple_storage_output.json")
	result, err := solc.CompileFile(context.Background(), storageSource, "SimpleStorage")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "compile_code.json")
	require.NoError(t, WriteArtifact(path, result.Raw))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var output Output
	require.NoError(t, json.Unmarshal(data, &output))
	assert.Equal(t, []string{"simple_storage.sol:SimpleStorage"}, output.ContractNames())

	require.Error(t, WriteArtifact(path, []byte("{not json")))
}
