package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/parthshah1/solwizard/errs"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/sha3"
)

type InstallerSuite struct {
	suite.Suite
	server    *httptest.Server
	installer *Installer
	binary    []byte
	list      BinaryList
	downloads atomic.Int32
	requests  atomic.Int32
}

func (suite *InstallerSuite) SetupTest() {
	if runtime.GOOS == "windows" {
		suite.T().Skip("fake solc is a shell script")
	}
	outputPath, err := filepath.Abs(filepath.Join("testdata", "simple_storage_output.json"))
	suite.Require().NoError(err)
	suite.binary = []byte(fakeSolcScript("0.6.0", outputPath))

	sum := sha256.Sum256(suite.binary)
	keccak := sha3.NewLegacyKeccak256()
	keccak.Write(suite.binary)

	suite.list = BinaryList{
		Builds: []Build{
			{Path: "solc-linux-amd64-v0.5.17+commit.d19bba13", Version: "0.5.17", LongVersion: "0.5.17+commit.d19bba13"},
			{
				Path:        "solc-linux-amd64-v0.6.0+commit.26b70077",
				Version:     "0.6.0",
				LongVersion: "0.6.0+commit.26b70077",
				SHA256:      "0x" + hex.EncodeToString(sum[:]),
				Keccak256:   "0x" + hex.EncodeToString(keccak.Sum(nil)),
			},
			{Path: "solc-linux-amd64-v0.6.1-nightly.2019.12.20+commit.ece6463f", Version: "0.6.1", LongVersion: "0.6.1-nightly.2019.12.20+commit.ece6463f"},
			{Path: "solc-linux-amd64-v0.8.19+commit.7dd6d404", Version: "0.8.19", LongVersion: "0.8.19+commit.7dd6d404"},
		},
		Releases: map[string]string{
			"0.5.17": "solc-linux-amd64-v0.5.17+commit.d19bba13",
			"0.6.0":  "solc-linux-amd64-v0.6.0+commit.26b70077",
			"0.8.19": "solc-linux-amd64-v0.8.19+commit.7dd6d404",
		},
		LatestRelease: "0.8.19",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/linux-amd64/list.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(suite.list)
	})
	mux.HandleFunc("/linux-amd64/solc-linux-amd64-v0.6.0+commit.26b70077", func(w http.ResponseWriter, r *http.Request) {
		suite.downloads.Add(1)
		w.Write(suite.binary)
	})
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	suite.downloads.Store(0)
	suite.requests.Store(0)

	suite.installer = NewInstaller(filepath.Join(suite.T().TempDir(), "solc"), nil)
	suite.installer.BaseURL = suite.server.URL
	suite.installer.Platform = "linux-amd64"
}

func (suite *InstallerSuite) TearDownTest() {
	if suite.server != nil {
		suite.server.Close()
	}
}

func (suite *InstallerSuite) TestResolve() {
	build, err := suite.list.Resolve("0.6.0")
	suite.Require().NoError(err)
	suite.Require().Equal("0.6.0", build.Version)

	// the 0.6.1 nightly is not a release
	build, err = suite.list.Resolve("~> 0.6.0")
	suite.Require().NoError(err)
	suite.Require().Equal("0.6.0", build.Version)

	build, err = suite.list.Resolve("")
	suite.Require().NoError(err)
	suite.Require().Equal("0.8.19", build.Version)

	_, err = suite.list.Resolve("0.7.0")
	suite.Require().ErrorIs(err, errs.ErrCompilation)
}

func (suite *InstallerSuite) TestInstallAndReuse() {
	ctx := context.Background()

	path, err := suite.installer.Install(ctx, "0.6.0")
	suite.Require().NoError(err)
	suite.Require().Equal(filepath.Join(suite.installer.Dir, "solc-v0.6.0"), path)

	info, err := os.Stat(path)
	suite.Require().NoError(err)
	suite.Require().NotZero(info.Mode().Perm() & 0100)

	again, err := suite.installer.Install(ctx, "0.6.0")
	suite.Require().NoError(err)
	suite.Require().Equal(path, again)
	suite.Require().Equal(int32(1), suite.downloads.Load())

	versions, err := suite.installer.InstalledVersions()
	suite.Require().NoError(err)
	suite.Require().Len(versions, 1)
}

func (suite *InstallerSuite) TestLocateInstallsAndChecksVersion() {
	solc, err := suite.installer.Locate(context.Background(), Locator{Version: "0.6.0", Install: true})
	suite.Require().NoError(err)
	suite.Require().Equal("0.6.0", solc.Version.String())

	result, err := solc.CompileFile(context.Background(), storageSource, "SimpleStorage")
	suite.Require().NoError(err)
	suite.Require().Equal("SimpleStorage", result.Artifact.Name)
}

func (suite *InstallerSuite) TestLocateExplicitPathWrongVersion() {
	path := writeFakeSolc(suite.T(), suite.T().TempDir(), "solc", "0.8.19", "simple_storage_output.json")

	_, err := suite.installer.Locate(context.Background(), Locator{Path: path, Version: "0.6.0"})
	suite.Require().ErrorIs(err, errs.ErrCompilation)
}

func (suite *InstallerSuite) TestChecksumMismatch() {
	suite.list.Builds[1].SHA256 = "0x" + hex.EncodeToString(make([]byte, 32))

	_, err := suite.installer.Install(context.Background(), "0.6.0")
	suite.Require().ErrorIs(err, errs.ErrCompilation)

	_, ok, err := suite.installer.FindInstalled("0.6.0")
	suite.Require().NoError(err)
	suite.Require().False(ok)
}

func (suite *InstallerSuite) TestUnknownPlatform() {
	suite.installer.Platform = "plan9-mips"

	_, err := suite.installer.Install(context.Background(), "0.6.0")
	suite.Require().ErrorIs(err, errs.ErrCompilation)
}

func (suite *InstallerSuite) TestUnpublishedPlatform() {
	suite.installer.Platform = "linux-arm64"

	_, err := suite.installer.Locate(context.Background(), Locator{Version: "0.6.0", Install: true})
	suite.Require().ErrorIs(err, errs.ErrCompilation)
	suite.Require().Contains(err.Error(), "linux-arm64")
	suite.Require().Contains(err.Error(), "SOLC_PATH")

	_, err = suite.installer.List(context.Background())
	suite.Require().ErrorIs(err, errs.ErrCompilation)
	suite.Require().Equal(int32(0), suite.requests.Load())
}

func TestInstallerSuite(t *testing.T) {
	suite.Run(t, new(InstallerSuite))
}
