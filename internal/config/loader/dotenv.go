package loader

import (
	"bytes"
	"io"

	"github.com/joho/godotenv"
)

// DotenvLoader reads MOTTO_ variables from a .env file without touching
// the process environment. Keys map to paths the same way EnvLoader does.
type DotenvLoader struct {
	fs   FileSystem
	path string
	env  *EnvLoader
}

// NewDotenvLoader creates a loader for the .env file at path.
func NewDotenvLoader(path, prefix string) *DotenvLoader {
	return NewDotenvLoaderWithFS(DefaultFS(), path, prefix)
}

// NewDotenvLoaderWithFS creates a .env loader with a custom file system.
func NewDotenvLoaderWithFS(fs FileSystem, path, prefix string) *DotenvLoader {
	return &DotenvLoader{fs: fs, path: path, env: NewEnvLoader(prefix)}
}

// Load reads the configured file. A missing file yields nil, nil.
func (l *DotenvLoader) Load() (map[string]any, error) {
	return readFile(l.fs, l.path, l.parse)
}

// LoadFromReader reads .env content from r.
func (l *DotenvLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	return readAll(r, l.parse)
}

func (l *DotenvLoader) parse(source string, data []byte) (map[string]any, error) {
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}

	config := make(map[string]any)
	for name, value := range vars {
		l.env.set(config, name, value)
	}
	return config, nil
}
