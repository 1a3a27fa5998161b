package services

import (
	"math"

	"dealradar/internal/models/entities"
)

// PriceDelta compares a listing price against the closest historical
// reference price. Delta is reference minus listing: positive means the
// listing is cheaper than the original price (a discount), negative
// means it is pricier. Downstream "best deals" ordering depends on this
// sign convention.
type PriceDelta struct {
	ReferencePrice float64
	ReferenceYear  int
	Delta          float64
	DeltaPercent   float64
}

// ComputeDelta selects the reference point whose year is closest to the
// listing year and computes the delta. A missing listing year is
// treated as year 0, so the smallest reference year wins; ties on
// distance also go to the earliest year.
//
// Returns nil when there is nothing to compare: no reference points, a
// non-positive listing price, or a zero reference price. It never
// fails for any input combination.
func ComputeDelta(listingPrice float64, listingYear *int, points []entities.PricePoint) *PriceDelta {
	if len(points) == 0 || listingPrice <= 0 {
		return nil
	}

	target := 0
	if listingYear != nil {
		target = *listingYear
	}

	best := points[0]
	bestDist := absInt(best.Year - target)
	for _, p := range points[1:] {
		dist := absInt(p.Year - target)
		if dist < bestDist || (dist == bestDist && p.Year < best.Year) {
			best = p
			bestDist = dist
		}
	}

	if best.EntryPriceEUR <= 0 {
		return nil
	}

	delta := best.EntryPriceEUR - listingPrice
	percent := math.Round(delta/best.EntryPriceEUR*100*100) / 100

	return &PriceDelta{
		ReferencePrice: best.EntryPriceEUR,
		ReferenceYear:  best.Year,
		Delta:          delta,
		DeltaPercent:   percent,
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
