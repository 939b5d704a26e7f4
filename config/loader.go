package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/weld/errors"
	"github.com/kbukum/weld/logger"
)

// DefaultEnvPrefix is stripped from environment variable names before they
// are bound, so WELD_NAME and NAME both set "name".
const DefaultEnvPrefix = "WELD"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// Resolver handles finding and resolving config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds config and env files for a container.
// Returns explicit paths if provided, otherwise searches for them.
func (cr *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}

	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.findConfigFile(name)
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.findEnvFile(name)
	}

	return resolved
}

// findConfigFile searches for config.yml in standard locations.
func (cr *Resolver) findConfigFile(name string) string {
	shortName := name
	if idx := strings.LastIndex(name, "-"); idx != -1 {
		shortName = name[idx+1:]
	}

	searchPaths := []string{
		fmt.Sprintf("./cmd/%s/config.yml", name),
		fmt.Sprintf("./cmd/%s/config.yml", shortName),
		fmt.Sprintf("../cmd/%s/config.yml", name),
		fmt.Sprintf("../cmd/%s/config.yml", shortName),
		fmt.Sprintf("../../cmd/%s/config.yml", name),
		fmt.Sprintf("../../cmd/%s/config.yml", shortName),
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	}

	for _, path := range searchPaths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// findEnvFile searches for .env files in standard locations.
func (cr *Resolver) findEnvFile(name string) string {
	shortName := name
	if idx := strings.LastIndex(name, "-"); idx != -1 {
		shortName = name[idx+1:]
	}

	envFiles := []string{
		fmt.Sprintf(".env.%s", name),
		".env",
	}

	searchDirs := envSearchDirs(name)
	if shortName != name {
		searchDirs = append(searchDirs, envSearchDirs(shortName)...)
	}

	for _, envFile := range envFiles {
		for _, dir := range searchDirs {
			fullPath := fmt.Sprintf("%s/%s", dir, envFile)
			if cr.FileSystem.Exists(fullPath) {
				return fullPath
			}
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string // Prefix stripped from env var names (default WELD)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix sets the prefix stripped from environment variable names.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Load reads the container configuration for name, applies defaults and
// validates it. Failures are INVALID_CONFIG errors.
func Load(name string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{Name: name}
	if err := LoadConfig(name, cfg, opts...); err != nil {
		return nil, errors.InvalidConfig(err)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.InvalidConfig(err)
	}
	return cfg, nil
}

// LoadConfig loads configuration for a container into the provided cfg struct.
// It searches for config.yml and .env files in standard locations, binds
// environment variables, and unmarshals the result into cfg.
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{EnvPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)

	return loadFromResolvedFiles(name, cfg, files, lc)
}

// loadFromResolvedFiles loads configuration from specific files.
func loadFromResolvedFiles(name string, cfg interface{}, files ResolvedFiles, lc LoaderConfig) error {
	log := logger.WithComponent("config")
	v := viper.New()

	// 1. YAML config first
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("failed to load config file", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	// 2. Environment
	v.AutomaticEnv()
	autoBindEnvVars(v, lc.EnvPrefix)

	// 3. .env file, then re-bind to pick up new variables
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		} else {
			autoBindEnvVars(v, lc.EnvPrefix)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}

	return nil
}

// envSearchDirs lists the directories searched for .env files, most
// specific first.
func envSearchDirs(name string) []string {
	var dirs []string
	for _, prefix := range []string{"cmd/" + name, "config/" + name, "config", ""} {
		dirs = append(dirs, dirsByPrefix(prefix)...)
	}
	return dirs
}

func dirsByPrefix(path string) []string {
	if path == "" {
		return []string{".", "..", "../.."}
	}
	return []string{
		fmt.Sprintf("./%s", path),
		fmt.Sprintf("../%s", path),
		fmt.Sprintf("../../%s", path),
	}
}

// autoBindEnvVars automatically binds environment variables to Viper
// by converting UPPER_CASE_WITH_UNDERSCORES to multiple possible nested key formats.
// Prefixed variables are bound after unprefixed ones so they win.
func autoBindEnvVars(v *viper.Viper, prefix string) {
	var prefixed [][2]string
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		key := pair[0]
		if prefix != "" && strings.HasPrefix(key, prefix+"_") {
			prefixed = append(prefixed, [2]string{strings.TrimPrefix(key, prefix+"_"), pair[1]})
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
	for _, kv := range prefixed {
		for _, variant := range generateEnvKeyVariants(kv[0]) {
			v.Set(variant, kv[1])
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// Examples:
//
//	LOGGING_LEVEL -> [logging_level, logging.level]
//	TRACING_SAMPLE_RATE -> [tracing_sample_rate, tracing.sample.rate, tracing.sample_rate, ...]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Generate progressive nesting patterns
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	for i := 2; i <= len(parts); i++ {
		prefix := strings.Join(parts[:i-1], ".")
		suffix := strings.Join(parts[i-1:], "_")
		if i < len(parts) {
			variants = append(variants, prefix+"."+suffix)
		}
	}

	if len(parts) >= 3 {
		prefix := strings.Join(parts[:len(parts)-1], ".")
		lastPart := parts[len(parts)-1]
		variants = append(variants, prefix+"."+lastPart)
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
