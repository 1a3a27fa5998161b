package api

import (
	"net/http"
	"strconv"
)

// Query parameter helpers. Unparseable values behave as absent; the
// dashboard sends empty strings for cleared filter fields.

func queryFloat(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryIntDefault(r *http.Request, name string, fallback int) int {
	if v := queryInt(r, name); v != nil {
		return *v
	}
	return fallback
}

func queryFloatDefault(r *http.Request, name string, fallback float64) float64 {
	if v := queryFloat(r, name); v != nil {
		return *v
	}
	return fallback
}
