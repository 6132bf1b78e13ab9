package itemref

import "testing"

func TestNewProfileRef_RequiresIDOrSlug(t *testing.T) {
	if _, err := NewProfileRef("", ""); err == nil {
		t.Fatal("expected error for empty ref")
	}

	if _, err := NewProfileRef("uuid-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewProfileRef("", "work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProfileRef_IsZero(t *testing.T) {
	if !(ProfileRef{}).IsZero() {
		t.Fatal("zero value should report IsZero")
	}

	ref, _ := NewProfileRef("uuid-1", "work")
	if ref.IsZero() {
		t.Fatal("populated ref should not report IsZero")
	}
}

func TestItemKey_IsZero(t *testing.T) {
	if !(ItemKey{}).IsZero() {
		t.Fatal("zero value should report IsZero")
	}

	if NewItemKey("local-1", "").IsZero() {
		t.Fatal("key with local id should not report IsZero")
	}
}

func TestItemKey_String(t *testing.T) {
	k := NewItemKey("local-1", "srv-1")
	if got, want := k.String(), "local-1/srv-1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
