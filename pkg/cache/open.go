package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// Open selects a backend from a cache location. Caching is off unless the
// location names a backend.
//
//   - "" or "none": a NullCache
//   - "file://<dir>": a FileCache in dir, or defaultDir when dir is empty
//   - "redis://..." or "rediss://...": a RedisCache
func Open(location, defaultDir string) (Cache, error) {
	switch {
	case location == "", location == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		return NewRedisCache(location)
	case strings.HasPrefix(location, "file://"):
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parse cache url: %w", err)
		}
		dir := u.Path
		if dir == "" {
			dir = defaultDir
		}
		return openFile(dir)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, location)
	}
}

func openFile(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
