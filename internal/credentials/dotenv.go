package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/joho/godotenv"
)

// DotenvPersister rewrites one key of a .env file, leaving every other key intact.
// The file is re-serialized on each write: comments and export prefixes are
// dropped, keys come out sorted and values are re-quoted.
type DotenvPersister struct {
	Path string
	Key  string

	mu sync.Mutex
}

// NewDotenvPersister builds a persister for key in the file at path.
func NewDotenvPersister(path, key string) *DotenvPersister {
	return &DotenvPersister{Path: path, Key: key}
}

// PersistAccessToken writes token under the configured key, creating the file if needed.
func (p *DotenvPersister) PersistAccessToken(_ context.Context, token string) error {
	if p.Path == "" || p.Key == "" {
		return errors.New("dotenv persister requires a path and key")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := godotenv.Read(p.Path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		values = map[string]string{}
	default:
		return fmt.Errorf("read %s: %w", p.Path, err)
	}
	values[p.Key] = token
	if err := godotenv.Write(values, p.Path); err != nil {
		return fmt.Errorf("write %s: %w", p.Path, err)
	}
	return nil
}
