package manifest

import (
	"errors"
	"testing"
)

func TestClassifyHeight(t *testing.T) {
	tests := []struct {
		height int
		want   Tier
	}{
		{240, TierSD},
		{719, TierSD},
		{720, TierHD},
		{1079, TierHD},
		{1080, TierUnknown}, // kept boundary quirk
		{1081, TierFullHD},
		{2160, TierFullHD},
	}
	for _, tt := range tests {
		if got := ClassifyHeight(tt.height); got != tt.want {
			t.Errorf("ClassifyHeight(%d) = %v, want %v", tt.height, got, tt.want)
		}
	}
}

func TestParseDimensions(t *testing.T) {
	d, err := ParseDimensions("1280x720")
	if err != nil {
		t.Fatalf("ParseDimensions() error = %v", err)
	}
	if d != (Dimensions{Width: 1280, Height: 720}) {
		t.Fatalf("ParseDimensions() = %+v", d)
	}
	if d.Tier() != TierHD {
		t.Fatalf("Tier() = %v, want HD", d.Tier())
	}
	if d.String() != "1280x720" {
		t.Fatalf("String() = %q", d.String())
	}

	d, err = ParseDimensions("640X360")
	if err != nil {
		t.Fatalf("ParseDimensions(640X360) error = %v", err)
	}
	if d.Height != 360 {
		t.Fatalf("Height = %d, want 360", d.Height)
	}
}

func TestParseDimensions_Invalid(t *testing.T) {
	for _, in := range []string{"", "1280", "1280x", "x720", "axb", "0x720", "1280x-1", "1x2x3"} {
		_, err := ParseDimensions(in)
		if err == nil {
			t.Errorf("ParseDimensions(%q) expected error", in)
			continue
		}
		var vpe *ValueParseError
		if !errors.As(err, &vpe) {
			t.Errorf("ParseDimensions(%q) error type = %T, want *ValueParseError", in, err)
			continue
		}
		if vpe.Value != in {
			t.Errorf("ValueParseError.Value = %q, want %q", vpe.Value, in)
		}
	}
}

func TestParseTier(t *testing.T) {
	tests := map[string]Tier{
		"sd":      TierSD,
		" HD ":    TierHD,
		"FULL-HD": TierFullHD,
		"full_hd": TierFullHD,
		"4k":      TierUnknown,
	}
	for in, want := range tests {
		if got := ParseTier(in); got != want {
			t.Errorf("ParseTier(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTierString(t *testing.T) {
	tests := map[Tier]string{
		TierFullHD:  "FULL_HD",
		TierHD:      "HD",
		TierSD:      "SD",
		TierUnknown: "UNKNOWN",
	}
	for tier, want := range tests {
		if got := tier.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
