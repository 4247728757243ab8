package product

// Record represents one product extracted from a result page
type Record struct {
	Title                 string `json:"title"`
	TitleExtractionMethod string `json:"title_extraction_method,omitempty"`

	Brand                 string `json:"brand,omitempty"`
	BrandExtractionMethod string `json:"brand_extraction_method,omitempty"`

	Link  string `json:"link"`
	Image string `json:"image,omitempty"`

	Price      string  `json:"price"`
	PriceValue float64 `json:"price_value"`

	// Unit is the canonical unit label ("100 ml", "100 grams", ...). An empty
	// Unit marks the record as unit-less: PricePerUnit and PricePerUnitValue
	// must then stay empty/zero.
	Unit              string  `json:"unit,omitempty"`
	PricePerUnit      string  `json:"price_per_unit,omitempty"`
	PricePerUnitValue float64 `json:"price_per_unit_value,omitempty"`

	Rating       string  `json:"rating,omitempty"`
	RatingNumber float64 `json:"rating_number,omitempty"`
	RatingCount  int     `json:"rating_count,omitempty"`
	RatingLink   string  `json:"rating_link,omitempty"`

	DeliveryTime             string `json:"delivery_time,omitempty"`
	DeliveryExtractionMethod string `json:"delivery_extraction_method,omitempty"`
}

// CloneRecords returns an independent copy of records. Record holds no
// reference types, so a slice copy is a deep copy.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	return append([]Record(nil), records...)
}
