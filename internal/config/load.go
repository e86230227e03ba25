package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Error codes of LoadError.
const (
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeParseFailed = "E008" // File could not be parsed
	ErrCodeInvalid     = "E009" // Parsed config is not valid
	ErrCodeUnsupported = "E010" // Unknown file extension
)

// LoadError represents an error that occurred while loading a config file.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError returns true if err is, or wraps, a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Load reads the config at path. The format follows the extension:
// .yaml/.yml or .cue. Settings the file leaves out keep their defaults.
// The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "config file not found"}
		}
		return Config{}, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
	}

	var cfg Config
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	case ".cue":
		cfg, err = parseCUE(path, data)
	default:
		return Config{}, &LoadError{
			Code:    ErrCodeUnsupported,
			Path:    path,
			Message: fmt.Sprintf("unsupported config extension %q (want .yaml, .yml or .cue)", ext),
		}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return Config{}, le
		}
		return Config{}, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, &LoadError{Code: ErrCodeInvalid, Path: path, Message: err.Error()}
	}
	return cfg, nil
}

// parseYAML decodes YAML on top of Default().
func parseYAML(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("yaml: %v", err)}
	}
	return cfg, nil
}

// parseCUE unifies the file with the #Config schema, which supplies
// defaults and rejects unknown fields, then decodes the result.
func parseCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return Config{}, cueLoadError(ErrCodeParseFailed, err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(user)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, cueLoadError(ErrCodeInvalid, err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, cueLoadError(ErrCodeInvalid, err)
	}
	return cfg, nil
}

// cueLoadError keeps the position of the first CUE error, if any.
func cueLoadError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: err.Error()}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Message = errs[0].Error()
		le.Pos = errs[0].Position()
	}
	return le
}
