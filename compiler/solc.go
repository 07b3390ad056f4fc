package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-version"
	"github.com/parthshah1/solwizard/errs"
)

var versionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// Solc is a solc executable of a known version.
type Solc struct {
	Path    string
	Version *version.Version
	logger  *log.Logger
}

// NewSolc queries the executable at path for its version.
func NewSolc(ctx context.Context, path string, logger *log.Logger) (*Solc, error) {
	if logger == nil {
		logger = log.Default()
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, errs.Errorf(errs.ErrCompilation, "locate solc", "solc not found at %s: %w", path, err)
	}

	out, err := exec.CommandContext(ctx, resolved, "--version").CombinedOutput()
	if err != nil {
		return nil, errs.Errorf(errs.ErrCompilation, "solc --version", "%w, output: %s", err, strings.TrimSpace(string(out)))
	}
	v, err := ParseVersionOutput(string(out))
	if err != nil {
		return nil, err
	}

	logger.Debug("found solc", "path", resolved, "version", v.String())
	return &Solc{Path: resolved, Version: v, logger: logger}, nil
}

// ParseVersionOutput extracts the semantic version from `solc --version` output.
func ParseVersionOutput(out string) (*version.Version, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "Version:") {
			continue
		}
		if m := versionPattern.FindString(line); m != "" {
			return version.NewVersion(m)
		}
	}
	if m := versionPattern.FindString(out); m != "" {
		return version.NewVersion(m)
	}
	return nil, errs.Errorf(errs.ErrCompilation, "parse solc version", "no version in output %q", strings.TrimSpace(out))
}

// Satisfies reports whether the executable matches the requested version.
// The request is either an exact version ("0.6.0") or a constraint ("~> 0.6.0", ">= 0.6, < 0.7").
func (s *Solc) Satisfies(requested string) (bool, error) {
	match, err := matcher(requested)
	if err != nil {
		return false, err
	}
	return match(s.Version), nil
}

// Require fails with a compilation error when the executable does not match.
func (s *Solc) Require(requested string) error {
	ok, err := s.Satisfies(requested)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Errorf(errs.ErrCompilation, "check solc version",
			"solc %s at %s does not satisfy requested version %s", s.Version, s.Path, requested)
	}
	return nil
}

// CompileStandard runs `solc --standard-json` on input and returns the parsed
// document together with the raw bytes solc produced.
func (s *Solc) CompileStandard(ctx context.Context, input *Input) (*Output, []byte, error) {
	request, err := json.Marshal(input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal compiler input: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Path, "--standard-json")
	cmd.Stdin = bytes.NewReader(request)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug("running solc", "path", s.Path, "sources", len(input.Sources))
	if err := cmd.Run(); err != nil {
		return nil, nil, errs.Errorf(errs.ErrCompilation, "solc --standard-json", "%w, output: %s", err, strings.TrimSpace(stderr.String()))
	}

	raw := stdout.Bytes()
	var output Output
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, nil, errs.Errorf(errs.ErrCompilation, "parse solc output", "%w", err)
	}

	for _, w := range output.Warnings() {
		s.logger.Warn("solc", "diagnostic", w.String())
	}
	if failures := output.Errs(); len(failures) > 0 {
		messages := make([]string, len(failures))
		for i, d := range failures {
			messages[i] = d.String()
		}
		return &output, raw, errs.Errorf(errs.ErrCompilation, "compile", "%s", strings.Join(messages, "\n"))
	}

	return &output, raw, nil
}
