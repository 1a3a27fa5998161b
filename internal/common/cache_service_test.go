package common

import (
	"testing"
	"time"
)

type cachedPayload struct {
	Count int
	Mean  float64
}

func TestCacheService_RoundTrip(t *testing.T) {
	cs := NewCacheService(60, 120)
	cs.Set("stats", cachedPayload{Count: 5, Mean: 30000}, time.Minute)

	var got cachedPayload
	if !cs.Get("stats", &got) {
		t.Fatal("expected a hit")
	}
	if got.Count != 5 || got.Mean != 30000 {
		t.Errorf("got %+v, want {Count:5 Mean:30000}", got)
	}
}

func TestCacheService_SliceRoundTrip(t *testing.T) {
	cs := NewCacheService(60, 120)
	cs.Set("rows", []cachedPayload{{Count: 1}, {Count: 2}}, time.Minute)

	var got []cachedPayload
	if !cs.Get("rows", &got) {
		t.Fatal("expected a hit")
	}
	if len(got) != 2 || got[1].Count != 2 {
		t.Errorf("got %+v, want two payloads", got)
	}
}

func TestCacheService_Miss(t *testing.T) {
	cs := NewCacheService(60, 120)

	var got cachedPayload
	if cs.Get("absent", &got) {
		t.Error("expected a miss for an absent key")
	}
}

func TestCacheService_MismatchedDestinationIsMiss(t *testing.T) {
	cs := NewCacheService(60, 120)
	cs.Set("stats", cachedPayload{Count: 5}, time.Minute)

	var got []string
	if cs.Get("stats", &got) {
		t.Error("destination of the wrong type should read as a miss")
	}
}

func TestCacheService_InvalidDestinationIsMiss(t *testing.T) {
	cs := NewCacheService(60, 120)
	cs.Set("stats", cachedPayload{Count: 5}, time.Minute)

	if cs.Get("stats", nil) {
		t.Error("nil destination should read as a miss")
	}

	var p *cachedPayload
	if cs.Get("stats", p) {
		t.Error("nil pointer destination should read as a miss")
	}
}

func TestCacheService_Delete(t *testing.T) {
	cs := NewCacheService(60, 120)
	cs.Set("stats", cachedPayload{Count: 5}, time.Minute)
	cs.Delete("stats")

	var got cachedPayload
	if cs.Get("stats", &got) {
		t.Error("expected a miss after delete")
	}
}
