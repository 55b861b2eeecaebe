package workspace

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/datasprayio/dataspray/internal/shared/fserr"
)

// Scheme is the only URI scheme the resolver accepts.
const Scheme = "io.dataspray.remote"

// Resolver converts resource URIs into host paths under a Root.
type Resolver struct {
	root *Root
}

// NewResolver creates a resolver bound to root.
func NewResolver(root *Root) *Resolver {
	return &Resolver{root: root}
}

// Root returns the working directory the resolver is bound to.
func (r *Resolver) Root() *Root {
	return r.root
}

// Resolve parses uri and returns the absolute, normalized host path it
// designates. The target does not need to exist.
func (r *Resolver) Resolve(uri string) (string, error) {
	rel, err := parse(uri)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.root.dir, filepath.FromSlash(rel)), nil
}

// Unresolve converts a host path into a resource URI. Relative paths are taken
// as relative to the root; absolute paths must lie inside it.
func (r *Resolver) Unresolve(p string) (string, error) {
	var rel string
	if filepath.IsAbs(p) {
		var err error
		rel, err = filepath.Rel(r.root.dir, filepath.Clean(p))
		if err != nil {
			return "", fserr.New(fserr.InvalidURI, "unresolve", p, err)
		}
	} else {
		rel = filepath.Clean(p)
	}

	if isParentRef(rel) {
		return "", fserr.New(fserr.InvalidURI, "unresolve", p, errors.New("path escapes working directory"))
	}
	if rel == "." {
		rel = ""
	}
	u := url.URL{Scheme: Scheme, Path: "/" + filepath.ToSlash(rel)}
	return u.String(), nil
}

// parse validates uri and returns its root-relative, slash-separated path with
// "." and ".." collapsed. The empty string designates the root.
func parse(uri string) (string, error) {
	scheme, _, found := strings.Cut(uri, ":")
	if !found || scheme != Scheme {
		return "", fserr.Newf(fserr.InvalidURI, "resolve", uri, "scheme must be %q", Scheme)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fserr.New(fserr.InvalidURI, "resolve", uri, err)
	}
	if u.Opaque != "" {
		return "", fserr.Newf(fserr.InvalidURI, "resolve", uri, "expected %s:///<path>", Scheme)
	}
	if u.Host != "" {
		return "", fserr.New(fserr.InvalidURI, "resolve", uri, fmt.Errorf("unexpected authority %q", u.Host))
	}
	// A literal '?' or '#' in a name must be percent-encoded.
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" || strings.HasSuffix(uri, "#") {
		return "", fserr.Newf(fserr.InvalidURI, "resolve", uri, "query and fragment are not allowed")
	}

	// Cleaning a rooted path clamps ".." at the root.
	cleaned := path.Clean("/" + strings.TrimLeft(u.Path, "/"))
	return strings.TrimPrefix(cleaned, "/"), nil
}
