package domain_test

import (
	"testing"
	"time"

	"github.com/neomorfeo/catalogue/internal/domain"
)

func TestNewNoun(t *testing.T) {
	before := time.Now().UTC()
	noun := domain.NewNoun("BEARING", "BRG", "Rolling element bearing")
	after := time.Now().UTC()

	if noun.ID != "" {
		t.Errorf("ID = %q, want empty until minted", noun.ID)
	}
	if noun.Status != domain.StatusActive {
		t.Errorf("Status = %q, want %q", noun.Status, domain.StatusActive)
	}
	if noun.CreatedAt.Before(before) || noun.CreatedAt.After(after) {
		t.Errorf("CreatedAt = %v, want between %v and %v", noun.CreatedAt, before, after)
	}
	if noun.UpdatedAt != noun.CreatedAt {
		t.Error("UpdatedAt should equal CreatedAt on a new record")
	}
}

func TestMeta_PointsAtEmbeddedMaster(t *testing.T) {
	m := domain.NewManufacturer("", "SKF", "", "")
	m.Meta().ID = "MFR_0001"

	if m.ID != "MFR_0001" {
		t.Errorf("ID = %q, want %q", m.ID, "MFR_0001")
	}
}

func TestNounModifierName(t *testing.T) {
	if got := domain.NounModifierName(" BEARING ", "BALL"); got != "BEARING, BALL" {
		t.Errorf("NounModifierName = %q, want %q", got, "BEARING, BALL")
	}
}

func TestTransitions_ValidPaths(t *testing.T) {
	cases := []struct {
		event domain.Event
		src   domain.Status
		dst   domain.Status
	}{
		{domain.EventDeactivate, domain.StatusActive, domain.StatusInactive},
		{domain.EventActivate, domain.StatusInactive, domain.StatusActive},
	}

	for _, tc := range cases {
		found := false
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src && tr.Dst == tc.dst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing transition: %q from %q → %q", tc.event, tc.src, tc.dst)
		}
	}
}

func TestTransitions_InvalidPaths(t *testing.T) {
	invalid := []struct {
		event domain.Event
		src   domain.Status
	}{
		{domain.EventActivate, domain.StatusActive},
		{domain.EventDeactivate, domain.StatusInactive},
	}

	for _, tc := range invalid {
		for _, tr := range domain.Transitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}
