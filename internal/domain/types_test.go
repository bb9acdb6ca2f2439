package domain

import "testing"

func TestStringSlice_Value(t *testing.T) {
	var empty StringSlice
	v, err := empty.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != "[]" {
		t.Errorf("Expected empty slice to store as [], got %v", v)
	}

	genres := StringSlice{"bollywood", "filmi"}
	v, err = genres.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if string(v.([]byte)) != `["bollywood","filmi"]` {
		t.Errorf("Unexpected encoding: %s", v)
	}
}

func TestStringSlice_Scan(t *testing.T) {
	var s StringSlice
	if err := s.Scan(`["pop","rock"]`); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(s) != 2 || s[0] != "pop" || s[1] != "rock" {
		t.Errorf("Unexpected result: %v", s)
	}

	if err := s.Scan(nil); err != nil {
		t.Fatalf("Scan nil failed: %v", err)
	}
	if s != nil {
		t.Errorf("Expected nil after scanning NULL, got %v", s)
	}

	if err := s.Scan([]byte("null")); err != nil {
		t.Fatalf("Scan null failed: %v", err)
	}
	if s != nil {
		t.Errorf("Expected nil after scanning null literal, got %v", s)
	}
}
