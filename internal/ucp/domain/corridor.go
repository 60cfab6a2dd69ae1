package domain

import "math"

// Corridor describes a supported payout rail with its deterministic
// sandbox pricing. Rates are fixed so test runs reproduce exactly.
type Corridor struct {
	Name         string  `json:"name"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	FXRate       float64 `json:"fx_rate"`
	FeeFixed     float64 `json:"fee_fixed"`
	FeePercent   float64 `json:"fee_percent"`
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
}

// Corridor name constants
const (
	CorridorPix  = "pix"
	CorridorSpei = "spei"
	CorridorACH  = "ach"
)

var corridors = map[string]Corridor{
	CorridorPix: {
		Name:         CorridorPix,
		FromCurrency: "USD",
		ToCurrency:   "BRL",
		FXRate:       5.20,
		FeeFixed:     0.50,
		FeePercent:   1.0,
		MinAmount:    1,
		MaxAmount:    10000,
	},
	CorridorSpei: {
		Name:         CorridorSpei,
		FromCurrency: "USD",
		ToCurrency:   "MXN",
		FXRate:       17.50,
		FeeFixed:     0.75,
		FeePercent:   1.0,
		MinAmount:    1,
		MaxAmount:    10000,
	},
	CorridorACH: {
		Name:         CorridorACH,
		FromCurrency: "USD",
		ToCurrency:   "USD",
		FXRate:       1.0,
		FeeFixed:     0.25,
		FeePercent:   0.5,
		MinAmount:    1,
		MaxAmount:    25000,
	},
}

// GetCorridor looks up a corridor by name.
func GetCorridor(name string) (Corridor, bool) {
	c, ok := corridors[name]
	return c, ok
}

// Corridors returns all supported corridors in a stable order.
func Corridors() []Corridor {
	return []Corridor{corridors[CorridorPix], corridors[CorridorSpei], corridors[CorridorACH]}
}

// Fee computes the total fee for an amount on this corridor, rounded to
// cents.
func (c Corridor) Fee(amount float64) float64 {
	return Round2(c.FeeFixed + amount*c.FeePercent/100)
}

// Convert computes the destination amount for a source amount after
// fees, rounded to cents.
func (c Corridor) Convert(amount float64) float64 {
	net := amount - c.Fee(amount)
	if net < 0 {
		net = 0
	}
	return Round2(net * c.FXRate)
}

// InRange reports whether an amount is within corridor limits.
func (c Corridor) InRange(amount float64) bool {
	return amount >= c.MinAmount && amount <= c.MaxAmount
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
