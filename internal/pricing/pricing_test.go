package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
)

func testSettings() *models.Settings {
	return &models.Settings{
		Tiers: []models.PriceTier{
			{Min: 0, Max: 50, Price: 100},
			{Min: 51, Max: 100, Price: 180},
		},
		WellWaterFee: 50,
		ProductsFee:  80,
		PartyPoolFee: 120,
		PricePerKM:   2.5,
		FreeRadiusKM: 10,
	}
}

func TestCalculateFee_BasePrice(t *testing.T) {
	settings := testSettings()

	t.Run("volume inside a tier", func(t *testing.T) {
		fee := CalculateFee(&models.Client{PoolVolume: 60}, settings)
		assert.Equal(t, 180.0, fee)
	})

	t.Run("volume above every tier falls back to greatest max", func(t *testing.T) {
		fee := CalculateFee(&models.Client{PoolVolume: 120}, settings)
		assert.Equal(t, 180.0, fee)
	})

	t.Run("volume below smallest tier has zero base", func(t *testing.T) {
		settings := testSettings()
		settings.Tiers = []models.PriceTier{{Min: 20, Max: 50, Price: 100}}
		fee := CalculateFee(&models.Client{PoolVolume: 10}, settings)
		assert.Equal(t, 0.0, fee)
	})

	t.Run("zero volume", func(t *testing.T) {
		fee := CalculateFee(&models.Client{PoolVolume: 0}, settings)
		assert.Equal(t, 0.0, fee)
	})

	t.Run("no tiers configured", func(t *testing.T) {
		fee := CalculateFee(&models.Client{PoolVolume: 60}, &models.Settings{})
		assert.Equal(t, 0.0, fee)
	})
}

func TestCalculateFee_AddOns(t *testing.T) {
	settings := testSettings()

	t.Run("well water adds exactly its flat fee", func(t *testing.T) {
		base := CalculateFee(&models.Client{PoolVolume: 60}, settings)
		withWell := CalculateFee(&models.Client{PoolVolume: 60, HasWellWater: true}, settings)
		assert.Equal(t, base+50, withWell)
	})

	t.Run("all add-ons accumulate", func(t *testing.T) {
		fee := CalculateFee(&models.Client{
			PoolVolume:   60,
			HasWellWater: true,
			HasProducts:  true,
			IsPartyPool:  true,
		}, settings)
		assert.Equal(t, 180.0+50+80+120, fee)
	})
}

func TestCalculateFee_Distance(t *testing.T) {
	settings := testSettings()

	t.Run("inside free radius", func(t *testing.T) {
		fee := CalculateFee(&models.Client{PoolVolume: 60, DistanceKM: 8}, settings)
		assert.Equal(t, 180.0, fee)
	})

	t.Run("beyond free radius", func(t *testing.T) {
		fee := CalculateFee(&models.Client{PoolVolume: 60, DistanceKM: 14}, settings)
		assert.Equal(t, 180.0+4*2.5, fee)
	})

	t.Run("implausible distance excluded", func(t *testing.T) {
		fee := CalculateFee(&models.Client{PoolVolume: 60, DistanceKM: 5000}, settings)
		assert.Equal(t, 180.0, fee)
	})
}

func TestCalculateFee_VIPDiscount(t *testing.T) {
	settings := testSettings()
	discount := 10.0

	t.Run("applies after additive fees", func(t *testing.T) {
		// pre-discount total 180 + 20 = 200, minus 10% -> 180.00
		settings := testSettings()
		settings.WellWaterFee = 20
		fee := CalculateFee(&models.Client{
			PoolVolume:       60,
			HasWellWater:     true,
			Plan:             models.PlanVIP,
			FidelityDiscount: &discount,
		}, settings)
		assert.Equal(t, 180.0, fee)
	})

	t.Run("simple plan ignores discount", func(t *testing.T) {
		fee := CalculateFee(&models.Client{
			PoolVolume:       60,
			Plan:             models.PlanSimple,
			FidelityDiscount: &discount,
		}, settings)
		assert.Equal(t, 180.0, fee)
	})
}

func TestCalculateFee_Override(t *testing.T) {
	settings := testSettings()
	override := 250.0
	fee := CalculateFee(&models.Client{PoolVolume: 60, CustomFee: &override, HasWellWater: true}, settings)
	assert.Equal(t, 250.0, fee)
}

func TestCalculateFee_Rounding(t *testing.T) {
	settings := testSettings()
	discount := 33.33
	fee := CalculateFee(&models.Client{
		PoolVolume:       60,
		Plan:             models.PlanVIP,
		FidelityDiscount: &discount,
	}, settings)
	assert.Equal(t, 120.01, fee) // 180 * 0.6667 = 120.006 -> 120.01
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "180,00", FormatAmount(180))
	assert.Equal(t, "1.234,50", FormatAmount(1234.5))
	assert.Equal(t, "0,00", FormatAmount(0))
	assert.Equal(t, "1.000.000,99", FormatAmount(1000000.99))
}
