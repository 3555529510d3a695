package domain

import "fmt"

// bpsDenominator scales split rates: 10000 basis points == 100%.
const bpsDenominator = 10000

// SplitRates holds the configured share of an order total allocated to each
// party, in basis points. Rates are converted from fractions once at config
// load so no floating point reaches the money path. The four rates need not
// sum to 100%: cashback is funded from platform margin, not carved from the
// customer total.
type SplitRates struct {
	VendorBps   int64
	DriverBps   int64
	PlatformBps int64
	CashbackBps int64
}

// NewSplitRates converts fractional rates (0.80 == 80%) to basis points,
// rejecting anything outside [0, 1].
func NewSplitRates(vendor, driver, platform, cashback float64) (SplitRates, error) {
	toBps := func(name string, rate float64) (int64, error) {
		if rate < 0 || rate > 1 {
			return 0, fmt.Errorf("%s share %v out of range [0, 1]", name, rate)
		}
		return int64(rate*bpsDenominator + 0.5), nil
	}

	var (
		r   SplitRates
		err error
	)
	if r.VendorBps, err = toBps("vendor", vendor); err != nil {
		return SplitRates{}, err
	}
	if r.DriverBps, err = toBps("driver", driver); err != nil {
		return SplitRates{}, err
	}
	if r.PlatformBps, err = toBps("platform", platform); err != nil {
		return SplitRates{}, err
	}
	if r.CashbackBps, err = toBps("cashback", cashback); err != nil {
		return SplitRates{}, err
	}
	return r, nil
}

// Split is the result of dividing an order total between the parties.
// Vendor + Driver + Platform always equals the total exactly; Cashback is
// independent of that sum.
type Split struct {
	Vendor   int64 `json:"vendor"`
	Driver   int64 `json:"driver"`
	Platform int64 `json:"platform"`
	Cashback int64 `json:"cashback"`
}

// ErrNegativeTotal is returned by ComputeSplit for a negative order total.
// Callers surface it as an invalid-amount rejection.
var ErrNegativeTotal = fmt.Errorf("order total must not be negative")

// ComputeSplit divides total (centavos) between vendor, driver and platform
// per the configured rates, plus an independently computed cashback amount.
//
// Each share is rounded half-up to the centavo; any residual from rounding is
// assigned to the platform share so that Vendor + Driver + Platform == total
// exactly. Pure and reentrant.
func ComputeSplit(total int64, rates SplitRates) (Split, error) {
	if total < 0 {
		return Split{}, ErrNegativeTotal
	}

	s := Split{
		Vendor:   roundHalfUpShare(total, rates.VendorBps),
		Driver:   roundHalfUpShare(total, rates.DriverBps),
		Platform: roundHalfUpShare(total, rates.PlatformBps),
		Cashback: roundHalfUpShare(total, rates.CashbackBps),
	}

	// Residual centavo(s) from rounding go to the platform share.
	s.Platform += total - (s.Vendor + s.Driver + s.Platform)

	return s, nil
}

// roundHalfUpShare computes total * bps / 10000 rounded half-up, in integer
// arithmetic only. Both operands are non-negative.
func roundHalfUpShare(total, bps int64) int64 {
	return (total*bps + bpsDenominator/2) / bpsDenominator
}
