package img2ascii

import "testing"

func TestGlyphForDegenerateRamps(t *testing.T) {
	t.Parallel()

	for _, intensity := range []float64{0, 127, 255} {
		if got := GlyphFor(intensity, nil, false); got != ' ' {
			t.Errorf("Empty ramp should map %v to space, got %q", intensity, got)
		}
		if got := GlyphFor(intensity, []rune{'#'}, false); got != '#' {
			t.Errorf("Single-glyph ramp should map %v to '#', got %q", intensity, got)
		}
		if got := GlyphFor(intensity, []rune{'#'}, true); got != '#' {
			t.Errorf("Invert must not matter for a single-glyph ramp")
		}
	}
}

func TestGlyphForEndpoints(t *testing.T) {
	t.Parallel()

	ramp := []rune(".:-=+*#%@")
	if got := GlyphFor(0, ramp, false); got != '.' {
		t.Errorf("Intensity 0 should map to the darkest glyph, got %q", got)
	}
	if got := GlyphFor(255, ramp, false); got != '@' {
		t.Errorf("Intensity 255 should map to the lightest glyph, got %q", got)
	}
	if got := GlyphFor(0, ramp, true); got != '@' {
		t.Errorf("Inverted intensity 0 should map to the lightest glyph, got %q", got)
	}
	if got := GlyphFor(255, ramp, true); got != '.' {
		t.Errorf("Inverted intensity 255 should map to the darkest glyph, got %q", got)
	}
}

func TestGlyphForMonotonic(t *testing.T) {
	t.Parallel()

	ramp := []rune(" .:-=+*#%@")
	prev := -1
	for i := 0; i <= 255; i++ {
		g := GlyphFor(float64(i), ramp, false)
		idx := runeIndex(ramp, g)
		if idx < prev {
			t.Fatalf("Mapping went backwards at intensity %d", i)
		}
		prev = idx
	}
}

func TestGlyphForInvertMirrors(t *testing.T) {
	t.Parallel()

	ramp := []rune("01234567")
	for i := 0; i <= 255; i++ {
		inverted := GlyphFor(float64(i), ramp, true)
		mirrored := GlyphFor(float64(255-i), ramp, false)
		if inverted != mirrored {
			t.Fatalf("invert=true at %d gave %q, expected %q", i, inverted, mirrored)
		}
	}
}

func runeIndex(ramp []rune, r rune) int {
	for i, c := range ramp {
		if c == r {
			return i
		}
	}
	return -1
}
