package odds

import (
	"errors"
	"math"
	"testing"
)

func TestRemoveVig_StandardJuice(t *testing.T) {
	m, err := DeVigAmerican(-110, -110)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, o := range m.Outcomes {
		if math.Abs(o.Implied-0.5238) > 0.0001 {
			t.Errorf("outcome %d implied = %f, want 0.5238", i, o.Implied)
		}
		if math.Abs(o.True-0.5) > 1e-9 {
			t.Errorf("outcome %d true = %f, want 0.5", i, o.True)
		}
	}
	if math.Abs(m.MarginPercent()-4.76) > 0.01 {
		t.Errorf("margin = %f%%, want ~4.76%%", m.MarginPercent())
	}
}

func TestRemoveVig_NoMarginUnchanged(t *testing.T) {
	m, err := DeVigAmerican(150, -150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(m.Outcomes[0].Implied-0.40) > 1e-9 || math.Abs(m.Outcomes[1].Implied-0.60) > 1e-9 {
		t.Fatalf("implied = %f/%f, want 0.40/0.60", m.Outcomes[0].Implied, m.Outcomes[1].Implied)
	}
	if math.Abs(m.Outcomes[0].True-0.40) > 1e-9 || math.Abs(m.Outcomes[1].True-0.60) > 1e-9 {
		t.Errorf("true = %f/%f, want 0.40/0.60", m.Outcomes[0].True, m.Outcomes[1].True)
	}
	if math.Abs(m.Margin) > 1e-9 {
		t.Errorf("margin = %f, want 0", m.Margin)
	}
}

func TestRemoveVig_SumsToOne(t *testing.T) {
	pairs := [][2]float64{
		{0.5238, 0.5238},
		{0.01, 0.99},
		{0.3, 0.3},
		{0.48, 0.49},
		{0.9, 0.2},
		{1e-6, 0.7},
	}
	for _, p := range pairs {
		m, err := RemoveVig(p)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", p, err)
		}
		sum := m.Outcomes[0].True + m.Outcomes[1].True
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("%v: true probabilities sum to %.12f", p, sum)
		}
	}
}

func TestRemoveVig_NegativeMarginIsValid(t *testing.T) {
	m, err := DeVigMarket(0.45, 0.50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Margin >= 0 {
		t.Errorf("margin = %f, want negative", m.Margin)
	}
}

func TestRemoveVig_Degenerate(t *testing.T) {
	if _, err := RemoveVig([2]float64{0, 0}); !errors.Is(err, ErrDegenerateMarket) {
		t.Errorf("expected ErrDegenerateMarket, got %v", err)
	}
}

func TestDeVig_PropagatesConversionErrors(t *testing.T) {
	if _, err := DeVigAmerican(0, -110); !errors.Is(err, ErrInvalidOdds) {
		t.Errorf("expected ErrInvalidOdds, got %v", err)
	}
	if _, err := DeVigMarket(0.5, 1); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}
