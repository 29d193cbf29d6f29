package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
)

// maxPlausibleDistanceKM guards against bad geocoding input upstream.
// Distances above this are treated as unset and excluded from the surcharge.
const maxPlausibleDistanceKM = 200

// CalculateFee computes a client's monthly charge from the pricing settings.
// The result is rounded to two decimals and never negative.
func CalculateFee(client *models.Client, settings *models.Settings) float64 {
	if client.CustomFee != nil {
		return *client.CustomFee
	}

	if client.PoolVolume <= 0 {
		return 0
	}

	total := basePrice(client.PoolVolume, settings.Tiers)

	if client.HasWellWater {
		total += settings.WellWaterFee
	}
	if client.HasProducts {
		total += settings.ProductsFee
	}
	if client.IsPartyPool {
		total += settings.PartyPoolFee
	}

	if client.DistanceKM > settings.FreeRadiusKM && client.DistanceKM <= maxPlausibleDistanceKM {
		total += (client.DistanceKM - settings.FreeRadiusKM) * settings.PricePerKM
	}

	// Fidelity discount applies after all additive fees
	if client.IsVIP() && client.FidelityDiscount != nil {
		total *= 1 - *client.FidelityDiscount/100
	}

	return round2(math.Max(total, 0))
}

// basePrice finds the tier containing volume. A volume above every tier's
// max falls back to the tier with the greatest max (explicit policy, not an
// error); a volume below the smallest tier has no base price.
func basePrice(volume float64, tiers []models.PriceTier) float64 {
	var fallback *models.PriceTier
	for i := range tiers {
		t := &tiers[i]
		if volume >= t.Min && volume <= t.Max {
			return t.Price
		}
		if fallback == nil || t.Max > fallback.Max {
			fallback = t
		}
	}
	if fallback != nil && volume > fallback.Max {
		return fallback.Price
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount formats a monetary value in Brazilian convention,
// e.g. 1234.5 -> "1.234,50"
func FormatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(s, ".", 2)
	intPart, decPart := parts[0], parts[1]

	negative := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var result strings.Builder
	length := len(intPart)
	for i, char := range intPart {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(".")
		}
		result.WriteRune(char)
	}

	out := result.String() + "," + decPart
	if negative {
		out = "-" + out
	}
	return out
}
