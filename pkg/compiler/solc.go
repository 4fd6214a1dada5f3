package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/singnet/hmy-deploy-go/pkg/model"
	"go.uber.org/zap"
)

// Toolchain compiles Solidity sources into artifacts.
type Toolchain interface {
	Compile(ctx context.Context, sources map[string]string) ([]model.Artifact, error)
}

// runFunc executes the compiler binary with args, feeding stdin.
type runFunc func(ctx context.Context, path string, stdin []byte, args ...string) ([]byte, error)

// Solc runs a local solc binary in --standard-json mode.
type Solc struct {
	// Path of the solc binary.
	Path     string
	Settings Settings
	// Now stamps artifacts; time.Now when nil.
	Now func() time.Time

	run runFunc
}

var versionRe = regexp.MustCompile(`Version:\s*v?(\d+\.\d+\.\d+)`)

// NewSolc looks up "solc-<version>" and then "solc" on PATH.
func NewSolc(settings Settings) (*Solc, error) {
	candidates := []string{"solc-" + settings.Version, "solc-v" + settings.Version, "solc"}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return &Solc{Path: path, Settings: settings}, nil
		}
	}
	return nil, fmt.Errorf("solc %s not found on PATH (tried %s)", settings.Version, strings.Join(candidates, ", "))
}

func (s *Solc) runner() runFunc {
	if s.run != nil {
		return s.run
	}
	return execRun
}

func execRun(ctx context.Context, path string, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", filepath.Base(path), err, msg)
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// InstalledVersion returns the release reported by "solc --version".
func (s *Solc) InstalledVersion(ctx context.Context) (*semver.Version, error) {
	out, err := s.runner()(ctx, s.Path, nil, "--version")
	if err != nil {
		return nil, err
	}
	m := versionRe.FindSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("unrecognized solc --version output: %q", strings.TrimSpace(string(out)))
	}
	return semver.NewVersion(string(m[1]))
}

// CheckVersion fails with ErrVersionMismatch unless the binary is the
// configured release.
func (s *Solc) CheckVersion(ctx context.Context) error {
	want, err := semver.NewVersion(s.Settings.Version)
	if err != nil {
		return fmt.Errorf("parse compiler version %q: %w", s.Settings.Version, err)
	}
	got, err := s.InstalledVersion(ctx)
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return fmt.Errorf("%w: have %s, want %s", ErrVersionMismatch, got, want)
	}
	return nil
}

// Compile compiles sources (source name to content) and returns one
// artifact per contract, sorted by source then contract name.
func (s *Solc) Compile(ctx context.Context, sources map[string]string) ([]model.Artifact, error) {
	if len(sources) == 0 {
		return nil, errors.New("no sources to compile")
	}
	if err := s.CheckVersion(ctx); err != nil {
		return nil, err
	}

	input, err := json.Marshal(s.Settings.StandardInput(sources))
	if err != nil {
		return nil, err
	}

	zap.L().Debug("running solc", zap.String("path", s.Path), zap.Int("sources", len(sources)))
	raw, err := s.runner()(ctx, s.Path, input, "--standard-json")
	if err != nil {
		zap.L().Error("solc failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCompilationFailed, err)
	}

	var out StandardOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode solc output: %w", err)
	}

	errs, warnings := out.errorsOf()
	for _, w := range warnings {
		zap.L().Warn("solc warning", zap.String("message", w.String()))
	}
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, d := range errs {
			msgs[i] = d.String()
			zap.L().Error("solc error", zap.String("message", d.String()))
		}
		return nil, fmt.Errorf("%w: %s", ErrCompilationFailed, strings.Join(msgs, "; "))
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	stamp := now().UTC()

	var artifacts []model.Artifact
	for _, key := range out.contractNames() {
		c := out.Contracts[key[0]][key[1]]
		a := model.Artifact{
			ContractName:     key[1],
			ABI:              c.ABI,
			Bytecode:         hexPrefixed(c.EVM.Bytecode.Object),
			DeployedBytecode: hexPrefixed(c.EVM.DeployedBytecode.Object),
			SourceName:       key[0],
			Compiler: model.CompilerInfo{
				Name:    "solc",
				Version: s.Settings.Version,
				Optimizer: model.OptimizerInfo{
					Enabled: s.Settings.OptimizerEnabled,
				},
			},
			Networks:  map[string]model.Deployment{},
			UpdatedAt: stamp,
		}
		if s.Settings.OptimizerEnabled {
			a.Compiler.Optimizer.Runs = s.Settings.OptimizerRuns
		}
		artifacts = append(artifacts, a)
	}
	zap.L().Info("compiled contracts", zap.Int("count", len(artifacts)))
	return artifacts, nil
}

func hexPrefixed(code string) string {
	if code == "" || strings.HasPrefix(code, "0x") {
		return code
	}
	return "0x" + code
}

// LoadSources reads every *.sol file under dir. Source names are paths
// relative to dir with forward slashes, as solc expects.
func LoadSources(dir string) (map[string]string, error) {
	sources := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".sol" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sources[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no .sol files in %s", dir)
	}
	return sources, nil
}

// WriteArtifacts writes each artifact to dir/<ContractName>.json.
func WriteArtifacts(dir string, artifacts []model.Artifact) ([]string, error) {
	seen := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		if prev, ok := seen[a.ContractName]; ok {
			return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateContract, a.ContractName, prev, a.SourceName)
		}
		seen[a.ContractName] = a.SourceName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.ContractName+".json")
		if err := WriteArtifact(p, a); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// WriteArtifact writes a single artifact as indented JSON.
func WriteArtifact(path string, a model.Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ReadArtifact reads and validates an artifact file.
func ReadArtifact(path string) (model.Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Artifact{}, err
	}
	defer f.Close()
	return DecodeArtifact(f)
}

// DecodeArtifact decodes and validates an artifact.
func DecodeArtifact(r io.Reader) (model.Artifact, error) {
	var a model.Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return model.Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return model.Artifact{}, err
	}
	return a, nil
}
