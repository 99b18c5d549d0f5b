package agent

import "testing"

func TestResourcesAddFileIsIdempotent(t *testing.T) {
	r := NewResources()
	r.AddFile("a.go")
	r.AddFile("a.go")
	r.AddFile("b.go")

	files := r.OpenFiles()
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
}

func TestResourcesStartsEmpty(t *testing.T) {
	r := NewResources()
	if len(r.OpenFiles()) != 0 {
		t.Fatal("expected empty ledger")
	}
}
