package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFromTitle(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		priceValue    float64
		wantUnit      string
		wantPerUnit   string
		wantPerUnitVal float64
	}{
		{
			name:          "milliliters",
			title:         "Brand X Shampoo 250 ml",
			priceValue:    5.00,
			wantUnit:      "100 ml",
			wantPerUnit:   "2.00",
			wantPerUnitVal: 2.00,
		},
		{
			name:          "grams without space",
			title:         "Protein Powder 500g Vanilla",
			priceValue:    25.00,
			wantUnit:      "100 grams",
			wantPerUnit:   "5.00",
			wantPerUnitVal: 5.00,
		},
		{
			name:          "ounces",
			title:         "Peanut Butter 16 oz Jar",
			priceValue:    4.00,
			wantUnit:      "100 oz",
			wantPerUnit:   "25.00",
			wantPerUnitVal: 25.00,
		},
		{
			name:          "fluid ounces",
			title:         "Conditioner 8 fl oz",
			priceValue:    4.00,
			wantUnit:      "100 fl oz",
			wantPerUnit:   "50.00",
			wantPerUnitVal: 50.00,
		},
		{
			name:          "pounds are not rescaled",
			title:         "Dog Food 30 lb Bag",
			priceValue:    60.00,
			wantUnit:      "pound",
			wantPerUnit:   "2.00",
			wantPerUnitVal: 2.00,
		},
		{
			name:          "first pattern wins",
			title:         "Body Wash 400 ml 13.5 fl oz",
			priceValue:    8.00,
			wantUnit:      "100 ml",
			wantPerUnit:   "2.00",
			wantPerUnitVal: 2.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(Record{Title: tt.title, PriceValue: tt.priceValue})
			assert.Equal(t, tt.wantUnit, rec.Unit)
			assert.Equal(t, tt.wantPerUnit, rec.PricePerUnit)
			assert.InDelta(t, tt.wantPerUnitVal, rec.PricePerUnitValue, 0.001)
		})
	}
}

func TestNormalizeNoSizeToken(t *testing.T) {
	rec := Normalize(Record{Title: "Wireless Mouse", PriceValue: 20.00})
	assert.Empty(t, rec.Unit)
	assert.Empty(t, rec.PricePerUnit)
	assert.Zero(t, rec.PricePerUnitValue)
}

func TestNormalizePlaceholderUnitCleared(t *testing.T) {
	// A placeholder unit with no size token in the title must end up fully
	// cleared, never half-populated.
	for _, placeholder := range []string{"", "N/A", "n/a", "unit"} {
		rec := Normalize(Record{
			Title:             "Mystery Box",
			PriceValue:        10.00,
			Unit:              placeholder,
			PricePerUnit:      "9.99",
			PricePerUnitValue: 9.99,
		})
		assert.Empty(t, rec.Unit, "placeholder %q", placeholder)
		assert.Empty(t, rec.PricePerUnit, "placeholder %q", placeholder)
		assert.Zero(t, rec.PricePerUnitValue, "placeholder %q", placeholder)
	}
}

func TestNormalizeZeroPriceNeverSynthesizes(t *testing.T) {
	rec := Normalize(Record{Title: "Shampoo 250 ml", PriceValue: 0})
	assert.Empty(t, rec.Unit)
	assert.Zero(t, rec.PricePerUnitValue)
}

func TestNormalizeSynonymRescale(t *testing.T) {
	rec := Normalize(Record{
		Title:             "Olive Oil",
		PriceValue:        10.00,
		Unit:              "ml",
		PricePerUnit:      "0.02",
		PricePerUnitValue: 0.02,
	})
	assert.Equal(t, "100 ml", rec.Unit)
	assert.Equal(t, "2.00", rec.PricePerUnit)
	assert.InDelta(t, 2.00, rec.PricePerUnitValue, 0.001)

	rec = Normalize(Record{
		Title:             "Flour",
		PriceValue:        3.00,
		Unit:              "Grams",
		PricePerUnit:      "0.003",
		PricePerUnitValue: 0.003,
	})
	assert.Equal(t, "100 grams", rec.Unit)
	assert.InDelta(t, 0.3, rec.PricePerUnitValue, 0.001)
}

func TestNormalizePoundUnitUntouched(t *testing.T) {
	rec := Normalize(Record{
		Title:             "Rice",
		PriceValue:        12.00,
		Unit:              "pound",
		PricePerUnit:      "1.20",
		PricePerUnitValue: 1.20,
	})
	assert.Equal(t, "pound", rec.Unit)
	assert.Equal(t, "1.20", rec.PricePerUnit)
	assert.InDelta(t, 1.20, rec.PricePerUnitValue, 0.001)
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []Record{
		{Title: "Brand X Shampoo 250 ml", PriceValue: 5.00},
		{Title: "Olive Oil", PriceValue: 10.00, Unit: "ml", PricePerUnit: "0.02", PricePerUnitValue: 0.02},
		{Title: "Dog Food 30 lb Bag", PriceValue: 60.00},
		{Title: "Wireless Mouse", PriceValue: 20.00},
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", in.Title)
	}
}

func TestNormalizeAllLeavesInputUntouched(t *testing.T) {
	records := []Record{{Title: "Shampoo 250 ml", PriceValue: 5.00}}
	out := NormalizeAll(records)
	assert.Equal(t, "100 ml", out[0].Unit)
	assert.Empty(t, records[0].Unit)
}
