package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/inercia/llm-code/pkg/llm"
)

const (
	// EnvProvider selects the default backend
	EnvProvider = "LLM_CODE_PROVIDER"

	// DotEnvFile is the name of the dotenv file read from the working directory
	DotEnvFile = ".env"

	appDir   = "llm-code"
	fileName = "config.yaml"
)

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// Path is an explicit YAML file, which must exist when set
	Path string

	// Dir is the directory holding the .env file. Empty means the current
	// directory.
	Dir string

	// UserConfigDir replaces os.UserConfigDir when looking for the default
	// YAML file
	UserConfigDir string

	// Getenv replaces os.Getenv
	Getenv func(string) string

	Logger *zap.Logger
}

// Load builds the configuration from defaults, YAML, .env and environment
func Load(opts LoadOptions) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("config")

	cfg := Default()

	path, err := configPath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		logger.Debug("loaded config file", zap.String("path", path))
	}

	dotenv, err := readDotEnv(filepath.Join(opts.Dir, DotEnvFile))
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		logger.Debug("loaded dotenv file", zap.Int("variables", len(dotenv)))
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	cfg.applyEnv(lookup)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Debug("configuration ready",
		zap.String("default_provider", cfg.DefaultProvider),
		zap.Strings("usable", cfg.Usable()))
	return cfg, nil
}

// DefaultPath returns the default location of the YAML file
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, fileName), nil
}

func configPath(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		return opts.Path, nil
	}

	var path string
	if opts.UserConfigDir != "" {
		path = filepath.Join(opts.UserConfigDir, appDir, fileName)
	} else {
		var err error
		if path, err = DefaultPath(); err != nil {
			// no home directory: run on defaults
			return "", nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// loadFile overlays a YAML file onto the configuration
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if file.DefaultProvider != "" {
		c.DefaultProvider = normalize(file.DefaultProvider)
	}
	for name, pc := range file.Providers {
		name = normalize(name)
		c.Providers[name] = merge(c.Providers[name], pc)
	}
	return nil
}

// readDotEnv parses a dotenv file without touching the process environment.
// A missing file is not an error.
func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// applyEnv overlays environment variables onto the configuration
func (c *Config) applyEnv(lookup func(string) string) {
	for name, pc := range c.Providers {
		prefix := envPrefix(name)
		c.Providers[name] = merge(pc, llm.ProviderConfig{
			APIKey:  lookup(prefix + "_API_KEY"),
			Model:   lookup(prefix + "_MODEL"),
			BaseURL: lookup(prefix + "_BASE_URL"),
		})
	}

	if gemini, ok := c.Providers[llm.ProviderGemini]; ok && gemini.APIKey == "" {
		gemini.APIKey = lookup("GOOGLE_API_KEY")
		c.Providers[llm.ProviderGemini] = gemini
	}

	if ollama, ok := c.Providers[llm.ProviderOllama]; ok {
		if host := lookup("OLLAMA_HOST"); host != "" {
			ollama.BaseURL = host
			c.Providers[llm.ProviderOllama] = ollama
		}
	}

	if bedrock, ok := c.Providers[llm.ProviderBedrock]; ok {
		region := lookup("AWS_REGION")
		if region == "" {
			region = lookup("AWS_DEFAULT_REGION")
		}
		extra := map[string]string{}
		if region != "" {
			extra["region"] = region
		}
		bedrock = merge(bedrock, llm.ProviderConfig{Extra: extra})
		if lookup("AWS_ACCESS_KEY_ID") != "" || lookup("AWS_PROFILE") != "" {
			bedrock.Keyless = true
		}
		c.Providers[llm.ProviderBedrock] = bedrock
	}

	if provider := lookup(EnvProvider); provider != "" {
		c.DefaultProvider = normalize(provider)
	}
}

func envPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
