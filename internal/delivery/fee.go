// Package delivery prices the delivery leg of an order from the buyer's
// address. Pricing is zone based: a short list of local-area keywords
// gets the cheapest rate, known domestic keywords the middle rate, and
// everything else the international rate.
package delivery

import "strings"

const (
	FeeLocal         = 10.0
	FeeDomestic      = 30.0
	FeeInternational = 50.0

	defaultMinFee = 3.0
	defaultMaxFee = 50.0
)

// localKeywords mark the cheap delivery zone around the shop's home area.
var localKeywords = []string{
	"rehab",
	"fifth settlement",
	"5th settlement",
	"new cairo",
	"cairo",
	"madinet nasr",
	"nasr city",
}

// domesticKeywords mark addresses inside the country but outside the
// local zone.
var domesticKeywords = []string{
	"alexandria", "giza", "luxor", "aswan", "port said", "suez",
	"mansoura", "tanta", "ismailia", "assiut", "zagazig", "damanhur",
	"minya", "beni suef", "qena", "sohag", "hurghada", "sharm el sheikh",
	"dahab", "nile", "delta", "sinai", "maadi", "zamalek", "heliopolis",
	"dokki", "mohandessin", "6th october", "sheikh zayed",
}

// Config tunes the calculator. The zero value uses zone pricing with the
// default clamp bounds; a non-nil FixedFee overrides zone pricing
// entirely but is still clamped.
type Config struct {
	FixedFee *float64
	MinFee   float64
	MaxFee   float64
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	if cfg.MinFee == 0 {
		cfg.MinFee = defaultMinFee
	}
	if cfg.MaxFee == 0 {
		cfg.MaxFee = defaultMaxFee
	}
	return &Calculator{cfg: cfg}
}

// Fee prices delivery to buyerAddress. Pickup orders are always free;
// the buyer collects from the shop.
func (c *Calculator) Fee(buyerAddress string, pickup bool) float64 {
	if pickup {
		return 0
	}
	if c.cfg.FixedFee != nil {
		return clamp(*c.cfg.FixedFee, c.cfg.MinFee, c.cfg.MaxFee)
	}
	return clamp(zoneFee(buyerAddress), c.cfg.MinFee, c.cfg.MaxFee)
}

// zoneFee classifies the address by keyword. A blank address cannot be
// placed in the local zone, so it gets the domestic rate.
func zoneFee(address string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if normalized == "" {
		return FeeDomestic
	}
	for _, kw := range localKeywords {
		if strings.Contains(normalized, kw) {
			return FeeLocal
		}
	}
	for _, kw := range domesticKeywords {
		if strings.Contains(normalized, kw) {
			return FeeDomestic
		}
	}
	return FeeInternational
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
