package pagination

import (
	"net/http/httptest"
	"testing"
)

// TestParseParams_Defaults tests defaults apply when the query is empty
func TestParseParams_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/patients", nil)

	p := ParseParams(req)

	if p.Page != DefaultPage {
		t.Errorf("Expected page %d, got %d", DefaultPage, p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("Expected limit %d, got %d", DefaultLimit, p.Limit)
	}
}

// TestParseParams_ClampsLimit tests the limit is clamped to MaxLimit
func TestParseParams_ClampsLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/patients?page=3&limit=5000", nil)

	p := ParseParams(req)

	if p.Page != 3 {
		t.Errorf("Expected page 3, got %d", p.Page)
	}
	if p.Limit != MaxLimit {
		t.Errorf("Expected limit %d, got %d", MaxLimit, p.Limit)
	}
}

// TestParseParams_IgnoresGarbage tests non-numeric values fall back to defaults
func TestParseParams_IgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest("GET", "/patients?page=abc&limit=-2", nil)

	p := ParseParams(req)

	if p.Page != DefaultPage || p.Limit != DefaultLimit {
		t.Errorf("Expected defaults, got page=%d limit=%d", p.Page, p.Limit)
	}
}

// TestCalculateMeta tests pagination metadata derivation
func TestCalculateMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 10}

	meta := p.CalculateMeta(35)

	if meta.TotalPages != 4 {
		t.Errorf("Expected 4 pages, got %d", meta.TotalPages)
	}
	if !meta.HasNext {
		t.Error("Expected HasNext on page 2 of 4")
	}
	if !meta.HasPrevious {
		t.Error("Expected HasPrevious on page 2")
	}
	if meta.TotalRecords != 35 {
		t.Errorf("Expected 35 records, got %d", meta.TotalRecords)
	}
}

// TestCalculateOffset tests SQL offset derivation
func TestCalculateOffset(t *testing.T) {
	p := Params{Page: 4, Limit: 25}

	if got := p.CalculateOffset(); got != 75 {
		t.Errorf("Expected offset 75, got %d", got)
	}
}
