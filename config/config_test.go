package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default settings should validate, got: %v", err)
	}
}

func TestValidateRejectsBadDimensions(t *testing.T) {
	s := Default()
	s.Width = 0
	if err := s.Validate(); err == nil {
		t.Error("expected an error for zero width")
	}
}

func TestValidateRejectsBadMediaSamples(t *testing.T) {
	s := Default()
	s.MediaMinSamples = 5
	s.MediaMaxSamples = 2
	if err := s.Validate(); err == nil {
		t.Error("expected an error when MaxSamples < MinSamples")
	}
}

func TestValidateRejectsBadConfidence(t *testing.T) {
	s := Default()
	s.MediaConfidence = 1.5
	if err := s.Validate(); err == nil {
		t.Error("expected an error for confidence outside (0,1)")
	}
}
