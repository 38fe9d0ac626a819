package httpapi

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"
)

// SavedCookie is a cookie as persisted between runs.
type SavedCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// RecordingJar is a cookie jar that remembers every cookie it accepts.
// cookiejar.Jar cannot enumerate its contents, and path-scoped cookies such
// as the refresh cookie are invisible to Cookies() for other paths.
type RecordingJar struct {
	inner *cookiejar.Jar

	mu      sync.Mutex
	records map[string]SavedCookie
	now     func() time.Time
}

// NewRecordingJar creates an empty jar.
func NewRecordingJar() *RecordingJar {
	// cookiejar.New only fails on a broken public suffix list.
	inner, _ := cookiejar.New(nil)
	return &RecordingJar{
		inner:   inner,
		records: make(map[string]SavedCookie),
		now:     time.Now,
	}
}

// SetCookies implements http.CookieJar.
func (j *RecordingJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = defaultPath(u.Path)
		}
		key := u.Hostname() + "|" + c.Domain + "|" + path + "|" + c.Name
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(j.now())) {
			delete(j.records, key)
			continue
		}
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
		}
		j.records[key] = SavedCookie{
			URL:      origin,
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   c.Domain,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
}

// Cookies implements http.CookieJar.
func (j *RecordingJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	inner := j.inner
	j.mu.Unlock()
	return inner.Cookies(u)
}

// Saved returns the live cookies in a stable order.
func (j *RecordingJar) Saved() []SavedCookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	out := make([]SavedCookie, 0, len(j.records))
	for _, c := range j.records {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}
		return out[a].Path < out[b].Path
	})
	return out
}

// Lookup returns the saved cookie with the given name, if any.
func (j *RecordingJar) Lookup(name string) (SavedCookie, bool) {
	for _, c := range j.Saved() {
		if c.Name == name {
			return c, true
		}
	}
	return SavedCookie{}, false
}

// Restore loads previously saved cookies. Expired entries and entries with
// an unparsable URL are skipped.
func (j *RecordingJar) Restore(saved []SavedCookie) {
	now := j.now()
	for _, s := range saved {
		if !s.Expires.IsZero() && !s.Expires.After(now) {
			continue
		}
		u, err := url.Parse(s.URL)
		if err != nil || u.Host == "" {
			continue
		}
		j.SetCookies(u, []*http.Cookie{{
			Name:     s.Name,
			Value:    s.Value,
			Path:     s.Path,
			Domain:   s.Domain,
			Expires:  s.Expires,
			Secure:   s.Secure,
			HttpOnly: s.HttpOnly,
		}})
	}
}

// Clear forgets every cookie.
func (j *RecordingJar) Clear() {
	inner, _ := cookiejar.New(nil)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner = inner
	j.records = make(map[string]SavedCookie)
}

// defaultPath mirrors the RFC 6265 default-path algorithm.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := len(p) - 1
	for i > 0 && p[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return p[:i]
}
