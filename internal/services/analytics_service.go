package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"dealradar/internal/common"
	"dealradar/internal/constants"
	"dealradar/internal/models/dtos"
	"dealradar/internal/models/entities"
)

const (
	analyticsCacheTTL = 5 * time.Minute

	// anomalyFetchLimit caps how many rows the z-score scan pulls.
	anomalyFetchLimit = 1000
	// anomalyMinSamples is the minimum sample size for a meaningful scan.
	anomalyMinSamples = 10

	// evolutionMinListings is the minimum count for a year bucket to appear.
	evolutionMinListings = 3
	// heatmapMinListings is the minimum count for a location to appear.
	heatmapMinListings = 3

	// fmvMileageRate is the EUR-per-km adjustment against the sample's
	// average mileage.
	fmvMileageRate = 0.5
)

// AnalyticsSource supplies the raw rows the analytics computations run
// over. Aggregation happens here, not in SQL, so the statistics are
// testable without a live database.
type AnalyticsSource interface {
	PriceSamples(ctx context.Context, f dtos.AnalyticsFilter) ([]entities.PriceSample, error)
	MileageSamples(ctx context.Context, f dtos.AnalyticsFilter) ([]entities.PriceSample, error)
	LocationSamples(ctx context.Context) ([]entities.PriceSample, error)
	AnomalyCandidates(ctx context.Context, f dtos.AnalyticsFilter, fetchLimit int) ([]entities.AnomalyCandidate, error)
}

type AnalyticsService struct {
	source AnalyticsSource
	cache  common.CacheInterface
	nowFn  func() time.Time
}

func NewAnalyticsService(source AnalyticsSource, cache common.CacheInterface) *AnalyticsService {
	return &AnalyticsService{source: source, cache: cache, nowFn: time.Now}
}

// PriceDistribution returns distribution statistics over listing
// prices matching the filter.
func (s *AnalyticsService) PriceDistribution(ctx context.Context, f dtos.AnalyticsFilter) (*dtos.DistributionStats, error) {
	key := s.cacheKey("price_dist", f)
	var cached dtos.DistributionStats
	if s.cache.Get(key, &cached) {
		return &cached, nil
	}

	samples, err := s.source.PriceSamples(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load price samples: %w", err)
	}

	prices := make([]float64, 0, len(samples))
	for _, sm := range samples {
		prices = append(prices, sm.PriceEUR)
	}
	stats := distributionOf(prices)

	s.cache.Set(key, *stats, analyticsCacheTTL)
	return stats, nil
}

// MileageDistribution returns distribution statistics over mileage,
// plus the average mileage per year of vehicle age.
func (s *AnalyticsService) MileageDistribution(ctx context.Context, f dtos.AnalyticsFilter) (*dtos.MileageDistribution, error) {
	key := s.cacheKey("mileage_dist", f)
	var cached dtos.MileageDistribution
	if s.cache.Get(key, &cached) {
		return &cached, nil
	}

	samples, err := s.source.MileageSamples(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load mileage samples: %w", err)
	}

	currentYear := s.nowFn().Year()
	mileages := make([]float64, 0, len(samples))
	var perYear []float64
	for _, sm := range samples {
		if sm.MileageKM == nil {
			continue
		}
		mileages = append(mileages, *sm.MileageKM)
		if sm.Year != nil {
			if age := currentYear - *sm.Year; age > 0 {
				perYear = append(perYear, *sm.MileageKM/float64(age))
			}
		}
	}

	out := &dtos.MileageDistribution{DistributionStats: *distributionOf(mileages)}
	if len(perYear) > 0 {
		avg := round2(mean(perYear))
		out.AvgMileagePerYear = &avg
	}

	s.cache.Set(key, *out, analyticsCacheTTL)
	return out, nil
}

// PriceAnomalies flags listings whose price deviates from the sample
// mean by at least threshold standard deviations. Fewer than ten
// samples produce an empty report rather than noise.
func (s *AnalyticsService) PriceAnomalies(ctx context.Context, f dtos.AnalyticsFilter, threshold float64, limit int) (*dtos.AnomalyReport, error) {
	if threshold <= 0 {
		threshold = 2.0
	}
	if limit <= 0 {
		limit = 50
	}

	candidates, err := s.source.AnomalyCandidates(ctx, f, anomalyFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("load anomaly candidates: %w", err)
	}

	report := &dtos.AnomalyReport{Anomalies: []dtos.PriceAnomaly{}}
	if len(candidates) < anomalyMinSamples {
		return report, nil
	}

	prices := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		prices = append(prices, c.PriceEUR)
	}
	m := mean(prices)
	sd := popStddev(prices)
	if sd == 0 {
		return report, nil
	}

	for _, c := range candidates {
		z := (c.PriceEUR - m) / sd
		if z < 0 {
			z = -z
		}
		if z < threshold {
			continue
		}
		anomalyType := "underpriced"
		if c.PriceEUR > m {
			anomalyType = "overpriced"
		}
		report.Anomalies = append(report.Anomalies, dtos.PriceAnomaly{
			ID:          c.ID,
			URL:         c.URL,
			Title:       c.Title,
			PriceEUR:    c.PriceEUR,
			Year:        c.Year,
			MileageKM:   c.MileageKM,
			Make:        c.Make,
			Model:       c.Model,
			ZScore:      round2(z),
			AnomalyType: anomalyType,
		})
	}

	sort.Slice(report.Anomalies, func(i, j int) bool {
		a, b := report.Anomalies[i], report.Anomalies[j]
		if a.ZScore != b.ZScore {
			return a.ZScore > b.ZScore
		}
		return a.ID < b.ID
	})
	if len(report.Anomalies) > limit {
		report.Anomalies = report.Anomalies[:limit]
	}
	return report, nil
}

// PriceEvolution buckets prices by registration year (newest first,
// years with at least three listings) and derives a coarse trend by
// comparing the three most recent buckets against the three oldest.
func (s *AnalyticsService) PriceEvolution(ctx context.Context, f dtos.AnalyticsFilter) (*dtos.PriceEvolution, error) {
	key := s.cacheKey("price_evolution", f)
	var cached dtos.PriceEvolution
	if s.cache.Get(key, &cached) {
		return &cached, nil
	}

	samples, err := s.source.PriceSamples(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load price samples: %w", err)
	}

	byYear := map[int][]float64{}
	for _, sm := range samples {
		if sm.Year == nil {
			continue
		}
		byYear[*sm.Year] = append(byYear[*sm.Year], sm.PriceEUR)
	}

	years := make([]int, 0, len(byYear))
	for y, prices := range byYear {
		if len(prices) >= evolutionMinListings {
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	evo := &dtos.PriceEvolution{Evolution: []dtos.YearBucket{}}
	for _, y := range years {
		prices := sortedCopy(byYear[y])
		evo.Evolution = append(evo.Evolution, dtos.YearBucket{
			Year:         y,
			ListingCount: len(prices),
			AvgPrice:     round2(mean(prices)),
			MedianPrice:  round2(quantile(prices, 0.5)),
			MinPrice:     prices[0],
			MaxPrice:     prices[len(prices)-1],
		})
	}

	evo.Trend, evo.TrendPercent = priceTrend(evo.Evolution)

	s.cache.Set(key, *evo, analyticsCacheTTL)
	return evo, nil
}

// priceTrend compares the newest buckets against the oldest. The
// evolution slice is ordered newest first.
func priceTrend(evolution []dtos.YearBucket) (string, float64) {
	if len(evolution) < 3 {
		return "insufficient_data", 0
	}

	avgs := make([]float64, 0, len(evolution))
	for _, b := range evolution {
		avgs = append(avgs, b.AvgPrice)
	}

	recent := avgs[:3]
	older := avgs[len(avgs)-3:]

	recentAvg := mean(recent)
	olderAvg := mean(older)
	if olderAvg <= 0 {
		return "insufficient_data", 0
	}

	trend := "stable"
	if recentAvg > olderAvg {
		trend = "increasing"
	} else if recentAvg < olderAvg {
		trend = "decreasing"
	}
	return trend, round2((recentAvg - olderAvg) / olderAvg * 100)
}

// LocationHeatmap aggregates priced listings per location, locations
// with at least three listings, most expensive first.
func (s *AnalyticsService) LocationHeatmap(ctx context.Context) (*dtos.LocationHeatmap, error) {
	key := string(constants.CachePrefixAnalytics) + "location_heatmap"
	var cached dtos.LocationHeatmap
	if s.cache.Get(key, &cached) {
		return &cached, nil
	}

	samples, err := s.source.LocationSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("load location samples: %w", err)
	}

	byLocation := map[string][]float64{}
	for _, sm := range samples {
		if sm.Location == nil || *sm.Location == "" {
			continue
		}
		byLocation[*sm.Location] = append(byLocation[*sm.Location], sm.PriceEUR)
	}

	hm := &dtos.LocationHeatmap{HeatmapData: []dtos.LocationBucket{}}
	for loc, prices := range byLocation {
		if len(prices) < heatmapMinListings {
			continue
		}
		sorted := sortedCopy(prices)
		hm.HeatmapData = append(hm.HeatmapData, dtos.LocationBucket{
			Location:     loc,
			ListingCount: len(sorted),
			AvgPrice:     round2(mean(sorted)),
			MedianPrice:  round2(quantile(sorted, 0.5)),
			MinPrice:     sorted[0],
			MaxPrice:     sorted[len(sorted)-1],
		})
	}
	sort.Slice(hm.HeatmapData, func(i, j int) bool {
		a, b := hm.HeatmapData[i], hm.HeatmapData[j]
		if a.AvgPrice != b.AvgPrice {
			return a.AvgPrice > b.AvgPrice
		}
		return a.Location < b.Location
	})

	s.cache.Set(key, *hm, analyticsCacheTTL)
	return hm, nil
}

// FairMarketValue estimates what a comparable car should cost: the
// median price of the matching sample, adjusted for mileage against the
// sample average. Returns (nil, nil) when no comparable listings exist.
func (s *AnalyticsService) FairMarketValue(ctx context.Context, q dtos.FMVQuery) (*dtos.FMVResult, error) {
	samples, err := s.source.PriceSamples(ctx, q.AnalyticsFilter)
	if err != nil {
		return nil, fmt.Errorf("load price samples: %w", err)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	prices := make([]float64, 0, len(samples))
	var mileages []float64
	for _, sm := range samples {
		prices = append(prices, sm.PriceEUR)
		if sm.MileageKM != nil {
			mileages = append(mileages, *sm.MileageKM)
		}
	}
	sorted := sortedCopy(prices)

	median := quantile(sorted, 0.5)
	avg := mean(prices)

	fmv := median
	if fmv == 0 {
		fmv = avg
	}
	if q.MileageKM != nil && len(mileages) > 0 {
		avgMileage := mean(mileages)
		if avgMileage > 0 {
			fmv -= (*q.MileageKM - avgMileage) * fmvMileageRate
			if fmv < 0 {
				fmv = 0
			}
		}
	}

	confidence := "low"
	switch {
	case len(prices) >= 10:
		confidence = "high"
	case len(prices) >= 5:
		confidence = "medium"
	}

	return &dtos.FMVResult{
		FairMarketValue: round2(fmv),
		AveragePrice:    round2(avg),
		MedianPrice:     round2(median),
		MinPrice:        sorted[0],
		MaxPrice:        sorted[len(sorted)-1],
		SampleSize:      len(prices),
		Confidence:      confidence,
	}, nil
}

func (s *AnalyticsService) cacheKey(op string, f dtos.AnalyticsFilter) string {
	year := 0
	if f.Year != nil {
		year = *f.Year
	}
	return fmt.Sprintf("%s%s|%s|%s|%d", constants.CachePrefixAnalytics, op, f.Make, f.Model, year)
}

func distributionOf(values []float64) *dtos.DistributionStats {
	if len(values) == 0 {
		return &dtos.DistributionStats{}
	}
	sorted := sortedCopy(values)
	return &dtos.DistributionStats{
		Count:  len(sorted),
		Mean:   round2(mean(sorted)),
		Median: round2(quantile(sorted, 0.5)),
		Q1:     round2(quantile(sorted, 0.25)),
		Q3:     round2(quantile(sorted, 0.75)),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Stddev: round2(stddev(sorted)),
	}
}
