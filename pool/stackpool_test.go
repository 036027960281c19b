package pool

import "testing"

func TestStackPoolReuse(t *testing.T) {
	p := NewStackPool()
	b1 := p.Get(128)
	b1[0] = 0xAB
	p.Put(b1)

	b2 := p.Get(128)
	if len(b2) != 128 {
		t.Fatalf("expected reused buffer of len 128, got %d", len(b2))
	}
}

func TestStackPoolDifferentSizeClasses(t *testing.T) {
	p := NewStackPool()
	small := p.Get(64)
	large := p.Get(256)
	if len(small) != 64 || len(large) != 256 {
		t.Fatalf("unexpected buffer sizes: %d, %d", len(small), len(large))
	}
	p.Put(small)
	p.Put(large)

	if got := p.Get(64); len(got) != 64 {
		t.Fatalf("expected size-64 class to return a 64-byte buffer, got %d", len(got))
	}
}

func TestStackPoolDefaultSingleton(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default() must return the same process-wide pool")
	}
}
