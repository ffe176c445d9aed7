package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "kgviz"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// EnvConfigPath names an explicit settings file.
	EnvConfigPath = "KGVIZ_CONFIG"
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

var validate = validator.New(validator.WithRequiredStructEnabled())

// GlobalConfigPath returns the path to the global settings file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/kgviz/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// ResolvePath picks the settings file to load: explicit, then $KGVIZ_CONFIG,
// then the global file if it exists. An empty result means built-in defaults.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return ExpandTilde(explicit)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return ExpandTilde(env)
	}
	if global := GlobalConfigPath(); global != "" {
		if info, err := os.Stat(global); err == nil && !info.IsDir() {
			return global
		}
	}
	return ""
}

// Load reads the settings file at path over the defaults and validates the
// result. An empty path returns Default.
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
	}

	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML settings from r over the defaults. Keys absent from
// the document keep their default values; unknown keys are rejected.
func Parse(r io.Reader) (Settings, error) {
	s := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("parsing settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field against its allowed range.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %s", fe.Namespace(), describeTag(fe)))
	}
	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Marshal renders s as YAML, suitable for a settings file.
func (s Settings) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return buf.Bytes(), nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
