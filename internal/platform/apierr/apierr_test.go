package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Fatalf("From(nil) should be nil")
	}

	ae := Newf(http.StatusNotFound, "topic_not_found", "no such topic")
	wrapped := fmt.Errorf("loading topic: %w", ae)
	got := From(wrapped)
	if got.Status != http.StatusNotFound || got.Code != "topic_not_found" {
		t.Fatalf("From lost the wrapped error: %+v", got)
	}

	plain := From(errors.New("boom"))
	if plain.Status != http.StatusInternalServerError || plain.Code != "internal_error" {
		t.Fatalf("plain errors should map to internal_error, got %+v", plain)
	}
}

func TestHasCode(t *testing.T) {
	ae := Newf(http.StatusConflict, "turn_in_progress", "busy")
	if !HasCode(ae, "turn_in_progress") {
		t.Fatalf("HasCode missed a direct match")
	}
	if !HasCode(fmt.Errorf("submit: %w", ae), "turn_in_progress") {
		t.Fatalf("HasCode missed a wrapped match")
	}
	if HasCode(ae, "other_code") {
		t.Fatalf("HasCode matched the wrong code")
	}
	if HasCode(errors.New("boom"), "turn_in_progress") {
		t.Fatalf("HasCode matched a plain error")
	}
}
