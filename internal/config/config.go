// Package config discovers and parses the daemon's configuration file
// (SPEC_FULL.md §4.8, component C11). Grounded on the teacher's
// internal/config/config.go Load shape (koanf + mapstructure decode hooks +
// validator/v10), generalized from a single env-var-only source to
// file-based discovery across JSON and YAML, since the ambient stack still
// needs these libraries even though the daemon has no environment-variable
// surface of its own (SPEC_FULL.md §10). The one genuinely new piece of
// code is chains.go's order-preserving parse of the "actions" mapping: no
// dependency in the pack offers that, koanf included (see DESIGN.md).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/stefal/pyruse-go/internal/domain"
	"github.com/stefal/pyruse-go/internal/pipeline"
)

// Ambient holds the ambient-collaborator options from the top-level
// document (SPEC_FULL.md §4.8): logSource, mailer, banBackend, banStorage,
// counterSweepOnRead. Each adapter interprets its own sub-map's shape; this
// package only decodes and validates the shared scalar knob.
type Ambient struct {
	LogSource          map[string]any `koanf:"logSource"`
	Mailer             map[string]any `koanf:"mailer"`
	BanBackend         map[string]any `koanf:"banBackend"`
	BanStorage         map[string]any `koanf:"banStorage"`
	CounterSweepOnRead bool           `koanf:"counterSweepOnRead"`
}

// Config is the fully parsed daemon configuration.
type Config struct {
	Chains  []pipeline.Chain
	Ambient Ambient
}

// knownTopLevelKeys are documented top-level keys; anything else present is
// logged once at WARNING rather than being fatal (SPEC_FULL.md §4.8).
var knownTopLevelKeys = map[string]bool{
	"actions":            true,
	"logSource":          true,
	"mailer":             true,
	"banBackend":         true,
	"banStorage":         true,
	"counterSweepOnRead": true,
}

// candidateNames are tried, in order, at each discovery directory.
var candidateNames = []string{"pyruse.json", "pyruse.yaml", "pyruse.yml"}

// Discover returns the path of the configuration file to load, per the
// discovery order in SPEC_FULL.md §4.8. It does not read the file.
func Discover() (string, error) {
	if envPath := os.Getenv("PYRUSE_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", domain.WrapError(domain.ErrConfig,
				fmt.Sprintf("PYRUSE_CONFIG=%q is not readable", envPath), err)
		}
		return envPath, nil
	}
	for _, dir := range []string{".", "/etc/pyruse"} {
		for _, name := range candidateNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}
	return "", domain.NewError(domain.ErrConfig,
		"no configuration file found (set PYRUSE_CONFIG, or place pyruse.{json,yaml,yml} in the working directory or /etc/pyruse)")
}

// Load discovers and parses the configuration file.
func Load() (*Config, error) {
	path, err := Discover()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile parses a specific configuration file, chosen by extension.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "read configuration file "+path, err)
	}

	generic, err := decodeGeneric(path, raw)
	if err != nil {
		return nil, err
	}
	if err := rejectFloats(generic); err != nil {
		return nil, err
	}
	warnUnknownTopLevelKeys(path, generic)

	ambient, err := loadAmbient(path)
	if err != nil {
		return nil, err
	}

	chains, err := parseChains(path, raw)
	if err != nil {
		return nil, err
	}

	return &Config{Chains: chains, Ambient: ambient}, nil
}

func loadAmbient(path string) (Ambient, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return Ambient{}, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return Ambient{}, domain.WrapError(domain.ErrConfigValue, "parse configuration "+path, err)
	}

	var ambient Ambient
	if err := k.Unmarshal("", &ambient); err != nil {
		return Ambient{}, domain.WrapError(domain.ErrConfigValue, "decode configuration "+path, err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(&ambient); err != nil {
		return Ambient{}, domain.WrapError(domain.ErrConfigValue, "validate configuration "+path, err)
	}
	return ambient, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, domain.NewError(domain.ErrConfig, "unrecognized configuration extension for "+path)
	}
}

func warnUnknownTopLevelKeys(path string, generic any) {
	m, ok := generic.(map[string]any)
	if !ok {
		return
	}
	for k := range m {
		if !knownTopLevelKeys[k] {
			fmt.Fprintf(os.Stderr, "pyruse: warning: unknown top-level configuration key %q in %s\n", k, path)
		}
	}
}
