package image

import (
	"bytes"
	"image/png"
	"testing"
)

func TestNewSeedsOnePendingUnitPerPixel(t *testing.T) {
	img := New(2, 2)
	sol, empty, undecided := img.Counts()
	if sol != 0 || empty != 0 || undecided != 4 {
		t.Fatalf("fresh image counts = %d/%d/%d, want 0/0/4", sol, empty, undecided)
	}
}

func TestResolveLeafClosesASingleLevelPixel(t *testing.T) {
	img := New(1, 1)
	img.ResolveLeaf(0, 0)
	if got := img.State(0, 0); got != Empty {
		t.Fatalf("State = %v, want Empty", got)
	}
}

func TestSplitThenResolveAllChildrenClosesThePixel(t *testing.T) {
	img := New(1, 1)
	img.Split(0, 0) // pending: 1 -> 4
	for i := 0; i < 4; i++ {
		if img.State(0, 0) != Undecided {
			t.Fatalf("pixel closed early after %d of 4 children resolved", i)
		}
		img.ResolveLeaf(0, 0)
	}
	if got := img.State(0, 0); got != Empty {
		t.Fatalf("State after all children resolved = %v, want Empty", got)
	}
}

func TestMarkSolutionIsSticky(t *testing.T) {
	img := New(1, 1)
	img.Split(0, 0)
	img.MarkSolution(0, 0)
	if got := img.State(0, 0); got != Solution {
		t.Fatalf("State = %v, want Solution", got)
	}
	// resolving the remaining outstanding units must not regress the
	// pixel back to Undecided or forward to Empty.
	for i := 0; i < 4; i++ {
		img.ResolveLeaf(0, 0)
	}
	if got := img.State(0, 0); got != Solution {
		t.Fatalf("State after draining pending = %v, want Solution (sticky)", got)
	}
}

func TestResolveUndecidedLeafPreventsEmptyForever(t *testing.T) {
	img := New(1, 1)
	img.Split(0, 0) // 4 children
	img.ResolveUndecidedLeaf(0, 0)
	img.ResolveLeaf(0, 0)
	img.ResolveLeaf(0, 0)
	img.ResolveLeaf(0, 0)
	// all four units accounted for, but one was permanently undecided.
	if got := img.State(0, 0); got != Undecided {
		t.Fatalf("State = %v, want Undecided (one branch never decided)", got)
	}
}

func TestResolveUndecidedLeafDoesNotOverrideSolution(t *testing.T) {
	img := New(1, 1)
	img.Split(0, 0)
	img.MarkSolution(0, 0)
	img.ResolveUndecidedLeaf(0, 0)
	img.ResolveLeaf(0, 0)
	img.ResolveLeaf(0, 0)
	img.ResolveLeaf(0, 0)
	if got := img.State(0, 0); got != Solution {
		t.Fatalf("State = %v, want Solution", got)
	}
}

func TestCountsTalliesAllThreeTerminalBuckets(t *testing.T) {
	img := New(3, 1)
	img.MarkSolution(0, 0)
	img.ResolveLeaf(1, 0)
	// pixel (2,0) left Undecided.
	sol, empty, undecided := img.Counts()
	if sol != 1 || empty != 1 || undecided != 1 {
		t.Fatalf("Counts = %d/%d/%d, want 1/1/1", sol, empty, undecided)
	}
}

func TestEncodePNGProducesDecodableImageWithExpectedColors(t *testing.T) {
	img := New(3, 1)
	img.MarkSolution(0, 0)
	img.ResolveLeaf(1, 0)
	// (2,0) stays Undecided.

	data, err := img.EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if decoded.Bounds().Dx() != 3 || decoded.Bounds().Dy() != 1 {
		t.Fatalf("decoded bounds = %v, want 3x1", decoded.Bounds())
	}

	r, g, b, a := decoded.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("solution pixel = %v, want black", decoded.At(0, 0))
	}
	r, g, b, a = decoded.At(1, 0).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("empty pixel = %v, want white", decoded.At(1, 0))
	}
	r, g, b, a = decoded.At(2, 0).RGBA()
	if r != 0 || g != 0 || b != 0xffff || a != 0xffff {
		t.Errorf("undecided pixel = %v, want blue", decoded.At(2, 0))
	}
}
