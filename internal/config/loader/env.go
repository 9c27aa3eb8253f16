package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix scanned by NewEnvLoader callers by default.
const DefaultEnvPrefix = "MOTTO_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "MOTTO_")
	mapping map[string]string // Env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "MOTTO_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

// defaultEnvMapping returns short aliases for common settings.
func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":   "logging.level",
		prefix + "LOG_FORMAT":  "logging.format",
		prefix + "TAB_WIDTH":   "editor.tabWidth",
		prefix + "LINE_ENDING": "editor.lineEnding",
		prefix + "READ_ONLY":   "editor.readOnly",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if ok {
			l.set(config, name, value)
		}
	}

	return config, nil
}

// set stores one variable in config if it carries the loader's prefix.
func (l *EnvLoader) set(config map[string]any, name, value string) {
	if !strings.HasPrefix(name, l.prefix) {
		return
	}

	path, mapped := l.mapping[name]
	if !mapped {
		// MOTTO_EDITOR_MAX_UNDO_ENTRIES -> editor.maxUndoEntries
		path = l.envToPath(name)
	}
	if path == "" {
		return
	}
	setByPath(config, path, parseValue(value))
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// RemoveMapping removes an environment variable mapping.
func (l *EnvLoader) RemoveMapping(envVar string) {
	delete(l.mapping, envVar)
}

// envToPath converts MOTTO_EDITOR_TAB_WIDTH to editor.tabWidth.
// The first part is the section; the rest form a camelCase key.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	parts := strings.Split(name, "_")

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	var key strings.Builder
	key.WriteString(strings.ToLower(parts[1]))
	for _, part := range parts[2:] {
		if part == "" {
			continue
		}
		key.WriteString(strings.ToUpper(part[:1]))
		key.WriteString(strings.ToLower(part[1:]))
	}

	return section + "." + key.String()
}

// parseValue converts an environment string into a bool, int64, float64
// or string. "1" and "0" stay integers.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	return s
}
