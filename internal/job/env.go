package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

var ErrUndefinedVariable = errors.New("undefined variable")

var varRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Env resolves ${NAME} references from dotenv files and the process
// environment. Values from dotenv files take precedence.
type Env struct {
	vars map[string]string
}

// LoadEnv reads the given dotenv files. Relative paths are resolved against
// baseDir. Missing files are skipped.
func LoadEnv(baseDir string, files ...string) (*Env, error) {
	env := &Env{vars: make(map[string]string)}
	for _, file := range files {
		if file == "" {
			continue
		}
		path := file
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load dotenv file %s: %w", file, err)
		}
		for k, v := range vars {
			env.vars[k] = v
		}
	}
	return env, nil
}

// Lookup returns the value of a variable.
func (e *Env) Lookup(name string) (string, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	return os.LookupEnv(name)
}

// Expand replaces ${NAME} references in s. Other uses of "$" are left
// untouched so passwords containing it survive.
func (e *Env) Expand(s string) (string, error) {
	var missing []string
	out := varRef.ReplaceAllStringFunc(s, func(ref string) string {
		name := varRef.FindStringSubmatch(ref)[1]
		v, ok := e.Lookup(name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUndefinedVariable, missing[0])
	}
	return out, nil
}
