package artifacts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/compose-network/contract-deployer/internal/infra/filesystem"
	"github.com/compose-network/contract-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrNotFound is returned when no deployable artifact matches a descriptor.
var ErrNotFound = errors.New("artifact not found")

// Registry resolves descriptors against a Hardhat artifacts directory:
// <dir>/<source-unit>/<Contract>.json with build metadata under <dir>/build-info.
type Registry struct {
	dir       string
	compilers []string
	reader    filesystem.Reader
	logger    *slog.Logger
}

// NewRegistry creates a registry rooted at dir. When compilers is non-empty,
// artifacts built by any other solc version are treated as missing.
func NewRegistry(dir string, compilers []string, reader filesystem.Reader) *Registry {
	return &Registry{
		dir:       dir,
		compilers: compilers,
		reader:    reader,
		logger:    logger.Named("artifact_registry"),
	}
}

// Resolve loads the artifact matching d.
func (r *Registry) Resolve(d Descriptor) (Artifact, error) {
	if d.SourceName != "" {
		artifactPath := filepath.Join(r.dir, filepath.FromSlash(d.SourceName), d.ContractName+".json")
		artifact, err := r.load(artifactPath)
		if err == nil {
			return artifact, nil
		}
		if !errors.Is(err, filesystem.ErrNotExist) || strings.Contains(d.SourceName, "/") {
			return Artifact{}, fmt.Errorf("%w: %s: %w", ErrNotFound, d, err)
		}
	}

	candidates, err := r.find(d)
	if err != nil {
		return Artifact{}, err
	}

	switch len(candidates) {
	case 0:
		return Artifact{}, fmt.Errorf("%w: no compiled artifact for %s in %s", ErrNotFound, d, r.dir)
	case 1:
	default:
		return Artifact{}, fmt.Errorf("%w: %s is ambiguous, candidates: %v", ErrNotFound, d, candidates)
	}

	artifact, err := r.load(candidates[0])
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %s: %w", ErrNotFound, d, err)
	}

	return artifact, nil
}

// List loads every deployable artifact in the registry. Artifacts that fail to
// load are skipped and logged.
func (r *Registry) List() ([]Artifact, error) {
	paths, err := r.walk()
	if err != nil {
		return nil, err
	}

	var result []Artifact
	for _, p := range paths {
		artifact, err := r.load(p)
		if err != nil {
			r.logger.With("path", p).With("err", err.Error()).Debug("skipping artifact")
			continue
		}
		result = append(result, artifact)
	}

	return result, nil
}

func (r *Registry) find(d Descriptor) ([]string, error) {
	paths, err := r.walk()
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, p := range paths {
		sourceName, contractName := r.identify(p)
		if d.Matches(sourceName, contractName) {
			candidates = append(candidates, p)
		}
	}

	return candidates, nil
}

// walk returns every artifact file path, skipping debug files and build info.
func (r *Registry) walk() ([]string, error) {
	if _, err := os.Stat(r.dir); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: artifacts directory '%s' does not exist, compile the contracts first", ErrNotFound, r.dir)
	}

	var paths []string
	err := filepath.WalkDir(r.dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == buildInfoDirName && filepath.Dir(p) == filepath.Clean(r.dir) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, debugFileSuffix) || filepath.Ext(p) != ".json" {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifacts directory '%s': %w", r.dir, err)
	}

	slices.Sort(paths)

	return paths, nil
}

// identify derives the source unit and contract name from an artifact path.
func (r *Registry) identify(artifactPath string) (string, string) {
	rel, err := filepath.Rel(r.dir, artifactPath)
	if err != nil {
		return "", ""
	}
	rel = filepath.ToSlash(rel)
	return path.Dir(rel), strings.TrimSuffix(path.Base(rel), ".json")
}

func (r *Registry) load(artifactPath string) (Artifact, error) {
	var raw hardhatArtifact
	if err := r.reader.ReadJSON(artifactPath, &raw); err != nil {
		return Artifact{}, err
	}

	if raw.Format != "" && raw.Format != artifactFormat {
		return Artifact{}, fmt.Errorf("unsupported artifact format '%s' in %s", raw.Format, artifactPath)
	}

	sourceName, contractName := r.identify(artifactPath)
	if raw.ContractName != "" && raw.ContractName != contractName {
		return Artifact{}, fmt.Errorf("artifact %s declares contract '%s'", artifactPath, raw.ContractName)
	}
	if raw.SourceName != "" {
		sourceName = raw.SourceName
	}

	bytecode, err := parseBytecode(raw.Bytecode)
	if err != nil {
		return Artifact{}, fmt.Errorf("contract %s:%s is not deployable: %w", sourceName, contractName, err)
	}

	if len(raw.ABI) == 0 {
		raw.ABI = []byte("[]")
	}
	parsedABI, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to parse ABI for %s: %w", contractName, err)
	}

	version, err := r.compilerVersion(artifactPath)
	if err != nil {
		return Artifact{}, err
	}
	if version != "" && len(r.compilers) > 0 && !slices.Contains(r.compilers, version) {
		return Artifact{}, fmt.Errorf("contract %s:%s was compiled with solc %s, configured compilers are %v", sourceName, contractName, version, r.compilers)
	}

	return Artifact{
		Descriptor:      Descriptor{SourceName: sourceName, ContractName: contractName},
		ABI:             parsedABI,
		RawABI:          string(raw.ABI),
		Bytecode:        bytecode,
		CompilerVersion: version,
		Path:            artifactPath,
	}, nil
}

// compilerVersion follows <Contract>.dbg.json to its build info. Artifacts
// without debug metadata report an empty version.
func (r *Registry) compilerVersion(artifactPath string) (string, error) {
	debugPath := strings.TrimSuffix(artifactPath, ".json") + debugFileSuffix

	var debug hardhatDebug
	if err := r.reader.ReadJSON(debugPath, &debug); err != nil {
		if errors.Is(err, filesystem.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	if debug.BuildInfo == "" {
		return "", nil
	}

	var buildInfo hardhatBuildInfo
	buildInfoPath := filepath.Join(filepath.Dir(debugPath), filepath.FromSlash(debug.BuildInfo))
	if err := r.reader.ReadJSON(buildInfoPath, &buildInfo); err != nil {
		if errors.Is(err, filesystem.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read build info for %s: %w", artifactPath, err)
	}

	return buildInfo.SolcVersion, nil
}

func parseBytecode(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0x" {
		return nil, errors.New("bytecode is empty (abstract contract or interface)")
	}
	if strings.Contains(value, "__") {
		return nil, errors.New("bytecode has unlinked library references")
	}
	if !strings.HasPrefix(value, "0x") {
		value = "0x" + value
	}

	bytecode, err := hexutil.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}

	return bytecode, nil
}
