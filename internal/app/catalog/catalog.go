package catalog

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

// Seed is the built-in name pool: deep sky objects and bright stars that
// resolve through the name index, plus a few solar-system bodies.
var Seed = []string{
	"Sun", "Moon", "Mars", "Jupiter", "Saturn",
	"M31", "M42", "M45", "Cygnus X-1",
	"Sirius", "Vega", "Polaris", "Betelgeuse", "Rigel", "Arcturus",
}

//Catalog - pool of resolvable object names, replaced as a whole on reload
type Catalog struct {
	names atomic.Pointer[[]string]
}

func New(seed ...string) *Catalog {
	c := &Catalog{}
	c.Replace(seed)
	return c
}

// Names returns the current pool. The slice must not be modified.
func (c *Catalog) Names() []string {
	p := c.names.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Replace swaps the pool for a sorted, de-duplicated copy of names.
func (c *Catalog) Replace(names []string) {
	pool := normalize(names)
	c.names.Store(&pool)
}

// Suggest returns up to limit names starting with prefix, ignoring case.
// A limit <= 0 means no limit.
func (c *Catalog) Suggest(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := []string{}
	for _, n := range c.Names() {
		if !strings.HasPrefix(strings.ToLower(n), prefix) {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// LoadFile replaces the pool with Seed plus the names listed in path, one
// per line. Blank lines and lines starting with # are ignored.
func (c *Catalog) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	names := append([]string{}, Seed...)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	c.Replace(names)
	return len(c.Names()), nil
}

func normalize(names []string) []string {
	seen := map[string]bool{}
	pool := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, n)
	}
	sort.Slice(pool, func(i, j int) bool {
		return strings.ToLower(pool[i]) < strings.ToLower(pool[j])
	})
	return pool
}
