package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestSeedIsSortedAndUnique(t *testing.T) {
	c := New(append(Seed, "polaris", " Vega ")...)
	names := c.Names()
	if len(names) != len(Seed) {
		t.Fatalf("expected %d names, got %d: %v", len(Seed), len(names), names)
	}
	if names[0] != "Arcturus" || names[len(names)-1] != "Vega" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestSuggest(t *testing.T) {
	c := New(Seed...)

	tests := []struct {
		prefix string
		limit  int
		want   []string
	}{
		{"m", 0, []string{"M31", "M42", "M45", "Mars", "Moon"}},
		{"M", 2, []string{"M31", "M42"}},
		{"cyg", 10, []string{"Cygnus X-1"}},
		{"zz", 10, []string{}},
	}
	for _, tt := range tests {
		got := c.Suggest(tt.prefix, tt.limit)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Suggest(%q, %d) = %v, want %v", tt.prefix, tt.limit, got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.txt")
	content := "# extra objects\nDeneb\n\nAltair\nvega\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	n, err := c.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(Seed)+2 {
		t.Fatalf("loaded %d names", n)
	}
	if got := c.Suggest("de", 0); !reflect.DeepEqual(got, []string{"Deneb"}) {
		t.Fatalf("Deneb not loaded: %v", got)
	}

	if _, err := c.LoadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for a missing file")
	}
	if len(c.Names()) != n {
		t.Fatal("failed reload changed the pool")
	}
}

func TestConcurrentReplace(t *testing.T) {
	c := New(Seed...)
	small := []string{"Deneb", "Altair"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Replace(small)
				c.Replace(Seed)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if n := len(c.Names()); n != len(small) && n != len(Seed) {
					t.Errorf("partial pool of %d names", n)
					return
				}
			}
		}()
	}
	wg.Wait()
}
