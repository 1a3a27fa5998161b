package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dealradar/internal/constants"
	"dealradar/internal/models/dtos"
	"dealradar/internal/models/entities"
)

// DealSource supplies the candidate rows of the deals view.
type DealSource interface {
	DealRows(ctx context.Context, maker, model string) ([]entities.DealRow, error)
}

// PriceHistorySource supplies historical reference prices per model.
type PriceHistorySource interface {
	PointsByModelIDs(ctx context.Context, modelIDs []int64) (map[int64][]entities.PricePoint, error)
}

// DealsService is the query/filter layer over the reconciled listings:
// a stateless request-to-response transform with no mutable state of
// its own.
type DealsService struct {
	deals  DealSource
	prices PriceHistorySource
}

func NewDealsService(deals DealSource, prices PriceHistorySource) *DealsService {
	return &DealsService{deals: deals, prices: prices}
}

// Query returns one page of delta-computed deals plus the total count
// of the full filtered set. Listings without a computable delta are
// excluded from both the page and the total.
func (s *DealsService) Query(ctx context.Context, q dtos.DealQuery) (*dtos.DealPage, error) {
	rows, err := s.deals.DealRows(ctx, q.Maker, q.Model)
	if err != nil {
		return nil, fmt.Errorf("load deal candidates: %w", err)
	}

	points, err := s.prices.PointsByModelIDs(ctx, modelIDs(rows))
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}

	deals := make([]dtos.DealView, 0, len(rows))
	for _, row := range rows {
		delta := ComputeDelta(row.PriceEUR, row.Year, points[row.ModelID])
		if delta == nil {
			continue
		}
		if !passesBounds(row.PriceEUR, delta.DeltaPercent, q) {
			continue
		}
		deals = append(deals, dtos.DealView{
			ID:              row.ID,
			URL:             row.URL,
			Title:           row.Title,
			PriceEUR:        row.PriceEUR,
			Currency:        row.Currency,
			MileageKM:       row.MileageKM,
			Year:            row.Year,
			Location:        row.Location,
			Maker:           row.MakerName,
			Model:           row.ModelName,
			ExtractedMake:   row.ExtractedMake,
			ExtractedModel:  row.ExtractedModel,
			ReferencePrice:  delta.ReferencePrice,
			ReferenceYear:   delta.ReferenceYear,
			Discount:        delta.Delta,
			DiscountPercent: delta.DeltaPercent,
		})
	}

	sortDeals(deals, q.Sort)

	total := len(deals)
	limit := q.Limit
	if limit <= 0 {
		limit = constants.DefaultDealsLimit
	}
	if limit > constants.MaxDealsLimit {
		limit = constants.MaxDealsLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return &dtos.DealPage{
		Deals:  deals[offset:end],
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func modelIDs(rows []entities.DealRow) []int64 {
	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ModelID]; ok {
			continue
		}
		seen[row.ModelID] = struct{}{}
		ids = append(ids, row.ModelID)
	}
	return ids
}

// passesBounds applies the inclusive price and discount-percent bounds.
func passesBounds(price, discountPercent float64, q dtos.DealQuery) bool {
	if q.MinPrice != nil && price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && price > *q.MaxPrice {
		return false
	}
	if q.MinDiscount != nil && discountPercent < *q.MinDiscount {
		return false
	}
	if q.MaxDiscount != nil && discountPercent > *q.MaxDiscount {
		return false
	}
	return true
}

// sortDeals orders the filtered set. A leading "-" flips to descending;
// a sort key outside the allow-list falls back to the business default
// of discount percent descending. Ties always break by ascending id so
// pagination stays stable.
func sortDeals(deals []dtos.DealView, sortParam string) {
	desc := strings.HasPrefix(sortParam, "-")
	key := constants.SortKey(strings.TrimPrefix(sortParam, "-"))

	var value func(d dtos.DealView) float64
	var byTitle bool

	switch key {
	case constants.SortKeyDiscount:
		value = func(d dtos.DealView) float64 { return d.Discount }
	case constants.SortKeyPrice:
		value = func(d dtos.DealView) float64 { return d.PriceEUR }
	case constants.SortKeyOriginalPrice:
		value = func(d dtos.DealView) float64 { return d.ReferencePrice }
	case constants.SortKeyYear:
		value = func(d dtos.DealView) float64 {
			if d.Year == nil {
				return 0
			}
			return float64(*d.Year)
		}
	case constants.SortKeyTitle:
		byTitle = true
	case constants.SortKeyDiscountPercent:
		value = func(d dtos.DealView) float64 { return d.DiscountPercent }
	default:
		value = func(d dtos.DealView) float64 { return d.DiscountPercent }
		desc = true
	}

	sort.Slice(deals, func(i, j int) bool {
		a, b := deals[i], deals[j]
		if byTitle {
			if a.Title != b.Title {
				if desc {
					return a.Title > b.Title
				}
				return a.Title < b.Title
			}
		} else {
			va, vb := value(a), value(b)
			if va != vb {
				if desc {
					return va > vb
				}
				return va < vb
			}
		}
		return a.ID < b.ID
	})
}
