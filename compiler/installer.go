package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-version"
	"github.com/parthshah1/solwizard/errs"
	"golang.org/x/crypto/sha3"
)

// DefaultBinariesURL hosts the official static solc builds.
const DefaultBinariesURL = "https://binaries.soliditylang.org"

const binaryPrefix = "solc-v"

// BinaryList is the list.json document published per platform.
type BinaryList struct {
	Builds        []Build           `json:"builds"`
	Releases      map[string]string `json:"releases"`
	LatestRelease string            `json:"latestRelease"`
}

// Build is one published compiler binary.
type Build struct {
	Path        string `json:"path"`
	Version     string `json:"version"`
	LongVersion string `json:"longVersion"`
	Keccak256   string `json:"keccak256"`
	SHA256      string `json:"sha256"`
}

// Installer downloads solc releases into a local directory.
type Installer struct {
	Dir        string
	BaseURL    string
	Platform   string
	HTTPClient *http.Client
	logger     *log.Logger
}

// NewInstaller returns an installer for the host platform.
func NewInstaller(dir string, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.Default()
	}
	return &Installer{
		Dir:        dir,
		BaseURL:    DefaultBinariesURL,
		Platform:   HostPlatform(),
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
}

// publishedPlatforms are the directories binaries.soliditylang.org serves native builds from.
var publishedPlatforms = map[string]bool{
	"linux-amd64":   true,
	"macosx-amd64":  true,
	"windows-amd64": true,
}

// HostPlatform maps the running OS to the binaries.soliditylang.org directory name.
func HostPlatform() string {
	switch runtime.GOOS {
	case "linux":
		if runtime.GOARCH == "amd64" {
			return "linux-amd64"
		}
	case "darwin":
		// amd64 builds also run on arm64 macs
		return "macosx-amd64"
	}
	return runtime.GOOS + "-" + runtime.GOARCH
}

// BinaryPath is where version v lives once installed.
func (i *Installer) BinaryPath(v *version.Version) string {
	return filepath.Join(i.Dir, binaryPrefix+v.String())
}

// InstalledVersions lists the versions present in the install directory, newest first.
func (i *Installer) InstalledVersions() ([]*version.Version, error) {
	entries, err := os.ReadDir(i.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read solc directory: %w", err)
	}

	var versions []*version.Version
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), binaryPrefix) {
			continue
		}
		v, err := version.NewVersion(strings.TrimPrefix(entry.Name(), binaryPrefix))
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(version.Collection(versions)))
	return versions, nil
}

// FindInstalled returns the newest installed version satisfying requested.
func (i *Installer) FindInstalled(requested string) (string, bool, error) {
	match, err := matcher(requested)
	if err != nil {
		return "", false, err
	}
	versions, err := i.InstalledVersions()
	if err != nil {
		return "", false, err
	}
	for _, v := range versions {
		if match(v) {
			return i.BinaryPath(v), true, nil
		}
	}
	return "", false, nil
}

// List fetches the release list for the installer's platform.
func (i *Installer) List(ctx context.Context) (*BinaryList, error) {
	if !publishedPlatforms[i.Platform] {
		return nil, errs.Errorf(errs.ErrCompilation, "fetch solc release list",
			"no solc releases are published for %s; install solc yourself and set SOLC_PATH", i.Platform)
	}
	url := fmt.Sprintf("%s/%s/list.json", strings.TrimRight(i.BaseURL, "/"), i.Platform)
	body, err := i.get(ctx, url)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCompilation, "fetch solc release list", err)
	}
	defer body.Close()

	var list BinaryList
	if err := json.NewDecoder(body).Decode(&list); err != nil {
		return nil, errs.Errorf(errs.ErrCompilation, "fetch solc release list", "invalid list.json: %w", err)
	}
	return &list, nil
}

// Resolve picks the newest release satisfying requested.
func (l *BinaryList) Resolve(requested string) (*Build, error) {
	match, err := matcher(requested)
	if err != nil {
		return nil, err
	}

	var best *Build
	var bestVersion *version.Version
	for idx := range l.Builds {
		b := &l.Builds[idx]
		if l.Releases[b.Version] != b.Path {
			// nightlies and superseded builds
			continue
		}
		v, err := version.NewVersion(b.Version)
		if err != nil || !match(v) {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best, bestVersion = b, v
		}
	}
	if best == nil {
		return nil, errs.Errorf(errs.ErrCompilation, "resolve solc version", "no released solc matches %q", requested)
	}
	return best, nil
}

// Install makes a version satisfying requested available locally and returns its path.
func (i *Installer) Install(ctx context.Context, requested string) (string, error) {
	if path, ok, err := i.FindInstalled(requested); err != nil {
		return "", err
	} else if ok {
		i.logger.Debug("solc already installed", "path", path)
		return path, nil
	}

	list, err := i.List(ctx)
	if err != nil {
		return "", err
	}
	build, err := list.Resolve(requested)
	if err != nil {
		return "", err
	}
	v, err := version.NewVersion(build.Version)
	if err != nil {
		return "", errs.Errorf(errs.ErrCompilation, "install solc", "invalid release version %q: %w", build.Version, err)
	}
	target := i.BinaryPath(v)

	i.logger.Info("installing solc", "version", build.LongVersion, "platform", i.Platform)
	body, err := i.get(ctx, fmt.Sprintf("%s/%s/%s", strings.TrimRight(i.BaseURL, "/"), i.Platform, build.Path))
	if err != nil {
		return "", errs.Wrap(errs.ErrCompilation, "download solc", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", errs.Wrap(errs.ErrCompilation, "download solc", err)
	}
	if err := build.Verify(data); err != nil {
		return "", err
	}

	if err := os.MkdirAll(i.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create solc directory: %w", err)
	}
	tmp, err := os.CreateTemp(i.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write solc binary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write solc binary: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0755); err != nil {
		return "", fmt.Errorf("failed to make solc executable: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to install solc binary: %w", err)
	}

	i.logger.Info("installed solc", "path", target)
	return target, nil
}

// Verify checks data against the published sha256 and keccak256 digests.
func (b *Build) Verify(data []byte) error {
	if b.SHA256 != "" {
		sum := sha256.Sum256(data)
		if !digestEqual(b.SHA256, sum[:]) {
			return errs.Errorf(errs.ErrCompilation, "verify solc", "sha256 mismatch for %s", b.Path)
		}
	}
	if b.Keccak256 != "" {
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		if !digestEqual(b.Keccak256, h.Sum(nil)) {
			return errs.Errorf(errs.ErrCompilation, "verify solc", "keccak256 mismatch for %s", b.Path)
		}
	}
	return nil
}

func digestEqual(published string, sum []byte) bool {
	return strings.EqualFold(strings.TrimPrefix(published, "0x"), hex.EncodeToString(sum))
}

func (i *Installer) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := i.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}

func matcher(requested string) (func(*version.Version) bool, error) {
	if requested == "" {
		return func(*version.Version) bool { return true }, nil
	}
	if exact, err := version.NewVersion(requested); err == nil {
		return exact.Equal, nil
	}
	constraints, err := version.NewConstraint(requested)
	if err != nil {
		return nil, errs.Errorf(errs.ErrConfig, "parse solc version", "invalid version request %q: %w", requested, err)
	}
	return constraints.Check, nil
}

// Locator describes where to find a compiler.
type Locator struct {
	// Path to an explicit solc executable. Skips the install directory.
	Path string
	// Version is an exact version or a constraint.
	Version string
	// Install downloads a matching release when none is available locally.
	Install bool
}

// Locate returns a solc satisfying loc: the explicit path, then the install
// directory, then a download (if allowed), then solc on PATH.
func (i *Installer) Locate(ctx context.Context, loc Locator) (*Solc, error) {
	path := loc.Path
	if path == "" {
		installed, ok, err := i.FindInstalled(loc.Version)
		if err != nil {
			return nil, err
		}
		switch {
		case ok:
			path = installed
		case loc.Install:
			if path, err = i.Install(ctx, loc.Version); err != nil {
				return nil, err
			}
		default:
			path = "solc"
		}
	}

	solc, err := NewSolc(ctx, path, i.logger)
	if err != nil {
		return nil, err
	}
	if err := solc.Require(loc.Version); err != nil {
		return nil, err
	}
	return solc, nil
}
