package persona

import (
	"testing"

	"github.com/containerd/errdefs"
)

func TestCatalogGetRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	for _, p := range c.List() {
		got, err := c.Get(p.ID)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", p.ID, err)
		}
		if got.ID != p.ID {
			t.Errorf("Get(%q) returned persona with id %q", p.ID, got.ID)
		}
	}
}

func TestCatalogGetUnknown(t *testing.T) {
	t.Parallel()

	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	_, err = c.Get("no-such-persona")
	if err == nil {
		t.Fatal("expected error for unknown persona")
	}
	if !errdefs.IsNotFound(err) {
		t.Errorf("expected not-found classification, got %v", err)
	}
}

func TestCatalogListStableOrder(t *testing.T) {
	t.Parallel()

	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	first := c.List()
	if len(first) == 0 {
		t.Fatal("expected at least one persona")
	}
	second := c.List()
	if len(first) != len(second) {
		t.Fatalf("list length changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("order changed at index %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestCatalogLikelihoodsBounded(t *testing.T) {
	t.Parallel()

	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	for _, p := range c.List() {
		for cat, prob := range p.ObjectionLikelihood {
			if prob < 0 || prob > 1 {
				t.Errorf("persona %q: likelihood for %q out of range: %f", p.ID, cat, prob)
			}
		}
	}
}
