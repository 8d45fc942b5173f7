// ABOUTME: Durable cookie jar that snapshots session cookies to disk
// ABOUTME: Stand-in for the browser cookie store so a session survives CLI invocations

package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// storedCookie is the on-disk form of a session cookie.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// FileJar is an http.CookieJar persisted to a single JSON file. Cookie
// values are written with 0600 permissions and are only ever touched by
// the jar itself; the rest of the client treats session state as opaque.
type FileJar struct {
	mu    sync.Mutex
	path  string
	inner *cookiejar.Jar
	hosts map[string][]storedCookie
}

// NewFileJar loads (or initializes) a jar backed by the given file path.
func NewFileJar(path string) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &FileJar{
		path:  path,
		inner: inner,
		hosts: make(map[string][]storedCookie),
	}
	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

// SetCookies implements http.CookieJar and snapshots the change to disk.
func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.inner.SetCookies(u, cookies)

	now := time.Now()
	kept := j.hosts[u.Host]
	for _, c := range cookies {
		kept = removeCookie(kept, c.Name)
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			continue // deletion
		}
		sc := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		kept = append(kept, sc)
	}
	if len(kept) == 0 {
		delete(j.hosts, u.Host)
	} else {
		j.hosts[u.Host] = kept
	}

	j.persist()
}

// Cookies implements http.CookieJar.
func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Clear drops all cookies, in memory and on disk.
func (j *FileJar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	inner, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.inner = inner
	j.hosts = make(map[string][]storedCookie)

	if err := os.Remove(j.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// load reads the snapshot file and replays unexpired cookies into the jar.
func (j *FileJar) load() error {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var hosts map[string][]storedCookie
	if err := json.Unmarshal(data, &hosts); err != nil {
		// A corrupt snapshot is not worth failing startup over; the user
		// simply has to log in again.
		return nil
	}

	now := time.Now()
	for host, cookies := range hosts {
		u := &url.URL{Scheme: "https", Host: host}
		var live []*http.Cookie
		var keep []storedCookie
		for _, sc := range cookies {
			if !sc.Expires.IsZero() && sc.Expires.Before(now) {
				continue
			}
			live = append(live, &http.Cookie{
				Name:     sc.Name,
				Value:    sc.Value,
				Path:     sc.Path,
				Expires:  sc.Expires,
				Secure:   sc.Secure,
				HttpOnly: sc.HTTPOnly,
			})
			keep = append(keep, sc)
		}
		if len(live) > 0 {
			j.inner.SetCookies(u, live)
			j.hosts[host] = keep
		}
	}
	return nil
}

// persist writes the snapshot; failures are swallowed because an
// unsaved cookie only costs the user a re-login, never correctness.
func (j *FileJar) persist() {
	data, err := json.MarshalIndent(j.hosts, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(j.path, data, 0o600)
}

// memJar is an in-memory jar that supports Clear, used when no durable jar
// is configured (tests, one-shot commands).
type memJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
}

func newMemoryJar() (*memJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &memJar{inner: inner}, nil
}

func (m *memJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inner.SetCookies(u, cookies)
}

func (m *memJar) Cookies(u *url.URL) []*http.Cookie {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inner.Cookies(u)
}

func (m *memJar) Clear() error {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.inner = inner
	m.mu.Unlock()
	return nil
}

func removeCookie(cookies []storedCookie, name string) []storedCookie {
	out := cookies[:0]
	for _, c := range cookies {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}
