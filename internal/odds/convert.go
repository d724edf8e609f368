package odds

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrInvalidOdds is returned for American odds that cannot be priced (zero).
	ErrInvalidOdds = errors.New("invalid american odds")
	// ErrInvalidPrice is returned for market prices outside (0,1), i.e. settled or empty books.
	ErrInvalidPrice = errors.New("invalid market price")
	// ErrInvalidProbability is returned when a probability has no finite American equivalent.
	ErrInvalidProbability = errors.New("invalid probability")
)

// AmericanToImpliedProbability converts American odds to an implied probability.
// +150 → 0.40, -150 → 0.60.
func AmericanToImpliedProbability(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("%w: cannot be 0", ErrInvalidOdds)
	}
	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}
	abs := float64(-american)
	return abs / (abs + 100.0), nil
}

// MarketPriceToImpliedProbability validates a prediction-market price. Prices are
// already probabilities, so the value is returned unchanged.
func MarketPriceToImpliedProbability(price float64) (float64, error) {
	if math.IsNaN(price) || price <= 0 || price >= 1 {
		return 0, fmt.Errorf("%w: %v must be between 0 and 1", ErrInvalidPrice, price)
	}
	return price, nil
}

// ProbabilityToAmericanOdds is the inverse of AmericanToImpliedProbability, rounded to
// the nearest integer. Favorites (p >= 0.5) get negative odds.
func ProbabilityToAmericanOdds(p float64) (int, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: %v must be between 0 and 1", ErrInvalidProbability, p)
	}
	if p >= 0.5 {
		return int(math.Round(-100 * p / (1 - p))), nil
	}
	return int(math.Round(100 * (1 - p) / p)), nil
}

// AmericanToDecimal converts American odds to a decimal payout multiplier.
// +150 → 2.50, -150 → 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("%w: cannot be 0", ErrInvalidOdds)
	}
	if american > 0 {
		return float64(american)/100.0 + 1.0, nil
	}
	return 100.0/float64(-american) + 1.0, nil
}

// ProbabilityToDecimal returns the fair decimal multiplier for a probability.
func ProbabilityToDecimal(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, fmt.Errorf("%w: %v must be between 0 and 1", ErrInvalidProbability, p)
	}
	return 1.0 / p, nil
}

// FormatAmerican renders odds the way books print them (+150, -110).
func FormatAmerican(american int) string {
	if american > 0 {
		return "+" + strconv.Itoa(american)
	}
	return strconv.Itoa(american)
}
