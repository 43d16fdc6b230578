package planner

import (
	"errors"
	"testing"
	"time"
)

func TestCoerceOperand_IntegerFields(t *testing.T) {
	s := testState(cmsSchema())
	got, err := s.coerceOperand("pages", "id", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != int64(42) {
		t.Errorf("got %v (%T), want int64 42", got, got)
	}
}

func TestCoerceOperand_FloatFields(t *testing.T) {
	s := testState(cmsSchema())
	got, err := s.coerceOperand("pages", "price", "19.99")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 19.99 {
		t.Errorf("got %v, want 19.99", got)
	}
}

func TestCoerceOperand_DateTimeFields(t *testing.T) {
	s := testState(cmsSchema())
	got, err := s.coerceOperand("pages", "created_at", "2024-06-01T10:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("got %T, want time.Time", got)
	}
	if ts.Year() != 2024 || ts.Month() != time.June {
		t.Errorf("unexpected timestamp: %v", ts)
	}
}

func TestCoerceOperand_ArraysElementWise(t *testing.T) {
	s := testState(cmsSchema())
	got, err := s.coerceOperand("pages", "id", []interface{}{"1", nil, float64(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := got.([]interface{})
	if !ok || len(list) != 2 {
		t.Fatalf("nil elements should be dropped: %v", got)
	}
	if list[0] != int64(1) || list[1] != int64(2) {
		t.Errorf("elements not coerced: %v", list)
	}
}

func TestCoerceOperand_UnknownFieldPassesThrough(t *testing.T) {
	s := testState(cmsSchema())
	got, err := s.coerceOperand("pages", "mystery", "raw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "raw" {
		t.Errorf("got %v, want raw", got)
	}
}

func TestCoerceOperand_UncoercibleValueFails(t *testing.T) {
	s := testState(cmsSchema())
	if _, err := s.coerceOperand("pages", "id", "not-a-number"); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := s.coerceOperand("pages", "created_at", "not-a-date"); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}
