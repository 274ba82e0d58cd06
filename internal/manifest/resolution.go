package manifest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tier is a coarse resolution class used for rendition selection.
type Tier int

const (
	TierUnknown Tier = iota
	TierSD
	TierHD
	TierFullHD
)

func (t Tier) String() string {
	switch t {
	case TierSD:
		return "SD"
	case TierHD:
		return "HD"
	case TierFullHD:
		return "FULL_HD"
	default:
		return "UNKNOWN"
	}
}

// ParseTier maps a user or page label ("SD", "HD", "FULL-HD", "FULL_HD") to a
// Tier. Matching is case-insensitive; anything else is TierUnknown.
func ParseTier(s string) Tier {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SD":
		return TierSD
	case "HD":
		return TierHD
	case "FULL-HD", "FULL_HD", "FULLHD":
		return TierFullHD
	default:
		return TierUnknown
	}
}

// ClassifyHeight maps a pixel height to a Tier.
//
// A height of exactly 1080 is TierUnknown while 1079 is HD and 1081 is
// FULL_HD. This boundary is kept as observed in the reference downloader.
func ClassifyHeight(height int) Tier {
	switch {
	case height < 720:
		return TierSD
	case height < 1080:
		return TierHD
	case height > 1080:
		return TierFullHD
	default:
		return TierUnknown
	}
}

var errNotPositive = errors.New("must be a positive integer")

// Dimensions is a parsed RESOLUTION attribute. Ordering is by height.
type Dimensions struct {
	Width  int
	Height int
}

// ParseDimensions parses "<width>x<height>" (the separator is case-insensitive).
func ParseDimensions(s string) (Dimensions, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return Dimensions{}, &ValueParseError{Value: s, Err: errors.New("expected WIDTHxHEIGHT")}
	}
	width, err := parsePositive(parts[0])
	if err != nil {
		return Dimensions{}, &ValueParseError{Value: s, Err: fmt.Errorf("width: %w", err)}
	}
	height, err := parsePositive(parts[1])
	if err != nil {
		return Dimensions{}, &ValueParseError{Value: s, Err: fmt.Errorf("height: %w", err)}
	}
	return Dimensions{Width: width, Height: height}, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errNotPositive
	}
	return n, nil
}

// Tier classifies d by its height.
func (d Dimensions) Tier() Tier {
	return ClassifyHeight(d.Height)
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}
