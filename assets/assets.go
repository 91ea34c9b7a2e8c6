// Package assets resolves background image references. References are
// either asset identifiers ("asset:<name>") looked up in a backgrounds
// directory, or file paths written by older releases.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/example/snapframe/internal/imageio"
)

// Prefix marks an asset identifier.
const Prefix = "asset:"

// ErrNotFound is returned when a reference names nothing that exists.
var ErrNotFound = errors.New("background not found")

var extensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp", ".tif", ".tiff"}

// Resolver loads background images. Decoded images are cached per
// resolved file, so repeated renders do not decode again.
type Resolver struct {
	fsys fs.FS
	dir  string

	mu    sync.Mutex
	cache map[string]*entry
}

type entry struct {
	once sync.Once
	img  image.Image
	err  error
}

// NewResolver returns a resolver serving assets from dir. An empty dir
// still resolves absolute legacy paths.
func NewResolver(dir string) *Resolver {
	r := &Resolver{dir: dir, cache: map[string]*entry{}}
	if dir != "" {
		r.fsys = os.DirFS(dir)
	}
	return r
}

// Dir returns the backgrounds directory.
func (r *Resolver) Dir() string { return r.dir }

// Background implements render.BackgroundSource.
func (r *Resolver) Background(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc, err := r.locate(ref)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	e, ok := r.cache[loc.key()]
	if !ok {
		e = &entry{}
		r.cache[loc.key()] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.img, e.err = loc.decode(ctx)
	})
	if e.err != nil {
		// failures are not cached so a fixed file is picked up
		r.mu.Lock()
		if r.cache[loc.key()] == e {
			delete(r.cache, loc.key())
		}
		r.mu.Unlock()
	}
	return e.img, e.err
}

// Canonical rewrites ref to the current reference format. Legacy paths whose
// file lives in the backgrounds directory become asset identifiers; anything
// else is returned unchanged.
func (r *Resolver) Canonical(ref string) string {
	if IsAsset(ref) {
		return ref
	}
	loc, err := r.locate(ref)
	if err != nil || loc.name == "" {
		return ref
	}
	return Prefix + strings.TrimSuffix(loc.name, path.Ext(loc.name))
}

// List returns the asset identifiers available in the backgrounds directory.
func (r *Resolver) List() ([]string, error) {
	if r.fsys == nil {
		return nil, nil
	}
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list backgrounds: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !knownExt(e.Name()) {
			continue
		}
		out = append(out, Prefix+strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(out)
	return out, nil
}

// IsAsset reports whether ref is an asset identifier.
func IsAsset(ref string) bool {
	return strings.HasPrefix(ref, Prefix)
}

// location is either a name inside the backgrounds directory or a file on
// disk.
type location struct {
	fsys fs.FS
	name string
	file string
}

func (l location) key() string {
	if l.name != "" {
		return "asset/" + l.name
	}
	return "file/" + l.file
}

func (l location) decode(ctx context.Context) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	if l.name != "" {
		data, err = fs.ReadFile(l.fsys, l.name)
	} else {
		data, err = os.ReadFile(l.file)
	}
	if err != nil {
		return nil, err
	}
	return imageio.Decode(ctx, bytes.NewReader(data))
}

func (r *Resolver) locate(ref string) (location, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return location{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if IsAsset(ref) {
		name := strings.TrimPrefix(ref, Prefix)
		if n, ok := r.lookup(name); ok {
			return location{fsys: r.fsys, name: n}, nil
		}
		return location{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	// Legacy references are paths. Prefer the asset directory copy so old
	// settings keep working after the files move.
	if n, ok := r.lookup(filepath.Base(ref)); ok {
		return location{fsys: r.fsys, name: n}, nil
	}
	if filepath.IsAbs(ref) {
		if _, err := os.Stat(ref); err == nil {
			return location{file: ref}, nil
		}
	}
	return location{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// lookup finds name in the backgrounds directory, trying known extensions
// when name has none.
func (r *Resolver) lookup(name string) (string, bool) {
	if r.fsys == nil || name == "" || !fs.ValidPath(name) || strings.Contains(name, "/") {
		return "", false
	}
	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}
	for _, c := range candidates {
		if st, err := fs.Stat(r.fsys, c); err == nil && !st.IsDir() {
			return c, true
		}
	}
	return "", false
}

func knownExt(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
