package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestSnowflake_Generate(t *testing.T) {
	// Arrange
	gen, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}

	// Act
	seen := make(map[int64]struct{}, 1000)
	var prev int64
	for range 1000 {
		id := gen.Generate()

		// Assert
		if id <= prev {
			t.Fatalf("ids must increase: %d after %d", id, prev)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
		prev = id
	}
}

func TestNewSnowflake_NodeRange(t *testing.T) {
	if _, err := NewSnowflake(1 << 20); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := NewSnowflake(-1); err != nil {
		t.Fatalf("host derived node should work: %v", err)
	}
}

func TestUUID_Generate(t *testing.T) {
	// Arrange
	gen := NewUUID()

	// Act
	id := gen.Generate()

	// Assert
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("invalid uuid %q: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected v7, got %d", parsed.Version())
	}
}
