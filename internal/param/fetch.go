package param

import "context"

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// StaticFetcher serves parameters from memory. Useful outside AWS and in tests.
type StaticFetcher map[string]string

func (f StaticFetcher) Fetch(_ context.Context, path string) (string, error) {
	v, ok := f[path]
	if !ok {
		return "", &NotFoundError{Path: path}
	}
	return v, nil
}

type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "parameter not found: " + e.Path
}
