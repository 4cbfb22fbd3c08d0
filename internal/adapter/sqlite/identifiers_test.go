package sqlite_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/neomorfeo/catalogue/internal/domain"
)

func TestLastIdentifiers_Empty(t *testing.T) {
	store := newTestStore(t)

	for _, class := range domain.Classes() {
		got, err := store.LastIdentifiers(context.Background(), class)
		if err != nil {
			t.Fatalf("%s: LastIdentifiers failed: %v", class, err)
		}
		if len(got) != 0 {
			t.Errorf("%s: got %v, want nothing", class, got)
		}
	}
}

func TestLastIdentifiers_TableScanIsNumeric(t *testing.T) {
	store := newTestStore(t)
	nouns := store.Nouns()

	mustCreate(t, nouns, withID(domain.NewNoun("A", "A", ""), "N_9"))
	mustCreate(t, nouns, withID(domain.NewNoun("B", "B", ""), "N_10"))

	got, err := store.LastIdentifiers(context.Background(), domain.ClassNoun)
	if err != nil {
		t.Fatalf("LastIdentifiers failed: %v", err)
	}
	if !slices.Equal(got, []string{"N_10"}) {
		t.Errorf("got %v, want [N_10]", got)
	}
}

func TestSaveLastIdentifier_SurvivesDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mfrs := store.Manufacturers()

	id := domain.Identifier{Class: domain.ClassManufacturer, Seq: 3}
	mustCreate(t, mfrs, withID(domain.NewManufacturer("", "SKF", "", ""), id.String()))
	if err := store.SaveLastIdentifier(ctx, id); err != nil {
		t.Fatalf("SaveLastIdentifier failed: %v", err)
	}
	if err := mfrs.Delete(ctx, id.String()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := store.LastIdentifiers(ctx, domain.ClassManufacturer)
	if err != nil {
		t.Fatalf("LastIdentifiers failed: %v", err)
	}
	if !slices.Equal(got, []string{"MFR_0003"}) {
		t.Errorf("got %v, want [MFR_0003]", got)
	}
}

func TestSaveLastIdentifier_Overwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for seq := uint64(1); seq <= 3; seq++ {
		if err := store.SaveLastIdentifier(ctx, domain.Identifier{Class: domain.ClassAttribute, Seq: seq}); err != nil {
			t.Fatalf("SaveLastIdentifier(%d) failed: %v", seq, err)
		}
	}

	got, err := store.LastIdentifiers(ctx, domain.ClassAttribute)
	if err != nil {
		t.Fatalf("LastIdentifiers failed: %v", err)
	}
	if !slices.Equal(got, []string{"ATR_0003"}) {
		t.Errorf("got %v, want [ATR_0003]", got)
	}
}

func TestLastIdentifiers_ReturnsBothCandidates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A row inserted behind the counter's back, e.g. by a legacy import.
	mustCreate(t, store.Modifiers(), withID(domain.NewModifier("BALL", "BL", ""), "M_0007"))
	if err := store.SaveLastIdentifier(ctx, domain.Identifier{Class: domain.ClassModifier, Seq: 2}); err != nil {
		t.Fatalf("SaveLastIdentifier failed: %v", err)
	}

	got, err := store.LastIdentifiers(ctx, domain.ClassModifier)
	if err != nil {
		t.Fatalf("LastIdentifiers failed: %v", err)
	}
	if !slices.Equal(got, []string{"M_0002", "M_0007"}) {
		t.Errorf("got %v, want [M_0002 M_0007]", got)
	}

	next, err := domain.ClassModifier.Next(got...)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if next.String() != "M_0008" {
		t.Errorf("Next = %q, want %q", next, "M_0008")
	}
}

func TestLastIdentifiers_MixedPadding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mods := store.Modifiers()

	mustCreate(t, mods, withID(domain.NewModifier("BALL", "BL", ""), "M_7"))
	mustCreate(t, mods, withID(domain.NewModifier("ROLLER", "RL", ""), "M_0003"))

	got, err := store.LastIdentifiers(ctx, domain.ClassModifier)
	if err != nil {
		t.Fatalf("LastIdentifiers failed: %v", err)
	}

	next, err := domain.ClassModifier.Next(got...)
	if err != nil {
		t.Fatalf("Next(%v) failed: %v", got, err)
	}
	if next.String() != "M_0008" {
		t.Errorf("Next(%v) = %q, want %q", got, next, "M_0008")
	}
}

func TestLastIdentifiers_SurfacesMalformedRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.DB().ExecContext(ctx,
		`INSERT INTO manufacturers (id, name, created_at, updated_at) VALUES ('MFR-0007', 'SKF', '', '')`,
	); err != nil {
		t.Fatalf("seeding malformed row: %v", err)
	}

	got, err := store.LastIdentifiers(ctx, domain.ClassManufacturer)
	if err != nil {
		t.Fatalf("LastIdentifiers failed: %v", err)
	}

	_, err = domain.ClassManufacturer.Next(got...)
	var malformed *domain.MalformedIdentifierError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedIdentifierError, got %v", err)
	}
}

func TestLastIdentifiers_UnknownClass(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LastIdentifiers(context.Background(), domain.Class{Name: "widget", Prefix: "W"})
	if err == nil {
		t.Fatal("expected error for unknown class")
	}
}
