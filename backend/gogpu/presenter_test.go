// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gogpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/vega/backend/software"
)

func TestPresentNilDrawContext(t *testing.T) {
	p := NewPresenter(software.New())
	if err := p.Present(nil, nil); !errors.Is(err, ErrInvalidDrawContext) {
		t.Errorf("Present(nil, nil) = %v, want ErrInvalidDrawContext", err)
	}
}

func TestPremultiply(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	// Opaque red and half-transparent white.
	src.Pix[0], src.Pix[1], src.Pix[2], src.Pix[3] = 255, 0, 0, 255
	src.Pix[4], src.Pix[5], src.Pix[6], src.Pix[7] = 255, 255, 255, 128

	p := NewPresenter(software.New())
	got := p.premultiply(src)

	want := []byte{255, 0, 0, 255, 128, 128, 128, 128}
	if len(got) != len(want) {
		t.Fatalf("premultiply length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("premultiply[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPremultiplyReusesBuffer(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	p := NewPresenter(software.New())

	a := p.premultiply(src)
	b := p.premultiply(src)
	if &a[0] != &b[0] {
		t.Error("premultiply should reuse its staging buffer across frames")
	}
}
