package config

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// WatchConfig holds the validated users mapping: user ID to the engine
// names that user follows. Immutable once loaded; a refresh produces a
// new value.
type WatchConfig struct {
	Users map[string][]string
}

// LoadWatchBytes parses and validates a watch config document.
// The document is compiled as CUE, so strict JSON and commented JSON
// both work. Any schema violation fails the whole load; there is no
// partial config.
func LoadWatchBytes(data []byte, filename string) (*WatchConfig, error) {
	cuectx := cuecontext.New()

	schema := cuectx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal: embedded schema does not compile: %w", err)
	}

	doc := cuectx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, validationErrors(ErrCodeParse, err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, validationErrors(ErrCodeSchema, err)
	}

	var raw struct {
		Users map[string][]string `json:"users"`
	}
	if err := unified.Decode(&raw); err != nil {
		return nil, validationErrors(ErrCodeSchema, err)
	}

	return &WatchConfig{Users: raw.Users}, nil
}

// LoadWatchFile loads a watch config from a local file.
func LoadWatchFile(path string) (*WatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ValidationErrors{{Code: ErrCodeNotFound, Message: fmt.Sprintf("watch config not found: %s", path)}}
		}
		return nil, fmt.Errorf("read watch config: %w", err)
	}
	return LoadWatchBytes(data, path)
}

// validationErrors converts a CUE error list into ValidationErrors,
// keeping file positions and field paths.
func validationErrors(code string, err error) ValidationErrors {
	var out ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		ve := ValidationError{
			Code:    code,
			Message: e.Error(),
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		if path := e.Path(); len(path) > 0 {
			ve.Path = pathString(path)
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Code: code, Message: err.Error()})
	}
	return out
}

func pathString(parts []string) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}

// Equal reports whether two configs describe the same interests.
// Engine lists compare as sets; order and duplicates don't matter.
func (c *WatchConfig) Equal(other *WatchConfig) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.Users) != len(other.Users) {
		return false
	}
	for user, engines := range c.Users {
		otherEngines, ok := other.Users[user]
		if !ok {
			return false
		}
		if !sameSet(engines, otherEngines) {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, s := range a {
		as[s] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, s := range b {
		bs[s] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if _, ok := bs[s]; !ok {
			return false
		}
	}
	return true
}

// Engines returns the sorted union of all followed engine names.
func (c *WatchConfig) Engines() []string {
	set := make(map[string]struct{})
	for _, engines := range c.Users {
		for _, e := range engines {
			set[e] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Provider supplies the current watch config. Implementations may read
// a local file, fetch a URL, or serve a cached copy kept fresh in the
// background.
type Provider interface {
	Load(ctx context.Context) (*WatchConfig, error)
}

// NewProvider picks a Provider for a config reference: http(s) URLs get
// an HTTPProvider, anything else is treated as a file path.
func NewProvider(ref string) Provider {
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return &HTTPProvider{URL: ref}
	}
	return &FileProvider{Path: ref}
}

// FileProvider loads the watch config from a local file on every call.
type FileProvider struct {
	Path string
}

// Load implements Provider.
func (p *FileProvider) Load(ctx context.Context) (*WatchConfig, error) {
	return LoadWatchFile(p.Path)
}

// HTTPProvider fetches the watch config from a URL on every call, the
// way the poller refreshes a remotely hosted config. Redirects are not
// followed.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

const fetchTimeout = 15 * time.Second

// Load implements Provider.
func (p *HTTPProvider) Load(ctx context.Context) (*WatchConfig, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{
			Timeout: fetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, ValidationErrors{{Code: ErrCodeFetch, Message: err.Error()}}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, ValidationErrors{{Code: ErrCodeFetch, Message: err.Error()}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ValidationErrors{{Code: ErrCodeFetch, Message: fmt.Sprintf("unexpected server response: %s", resp.Status)}}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ValidationErrors{{Code: ErrCodeFetch, Message: err.Error()}}
	}

	return LoadWatchBytes(data, p.URL)
}
