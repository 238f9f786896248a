// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command vegademo demonstrates the vega 2D rendering engine.
package main

import (
	"flag"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/gogpu/vega"
	"github.com/gogpu/vega/backend/software"
	"github.com/gogpu/vega/geom"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		output = flag.String("output", "demo.png", "output file")
	)
	flag.Parse()

	dev := software.New()
	ctx := vega.NewContext(dev)
	s := vega.NewSurface(ctx, *width, *height)
	if s == nil {
		log.Fatal("failed to create surface")
	}
	canvas := s.Canvas()

	drawGradientBackground(canvas, *width, *height)
	drawShapesDemo(canvas)
	drawTransformDemo(canvas)
	drawPathDemo(canvas)

	// Nothing has reached the device yet; the flush compiles the
	// accumulated ops into draw calls and executes them.
	s.Flush()

	if err := savePNG(dev, s, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Demo saved to %s (%dx%d)\n", *output, *width, *height)
}

func savePNG(dev *software.Device, s *vega.Surface, name string) error {
	pix := dev.Pixels(s.Target().Texture().ID())
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, pix)
}

func drawGradientBackground(canvas *vega.Canvas, w, h int) {
	// Vertical gradient simulated with thin rectangles. Adjacent rows
	// share a pipeline, so the whole background batches into one op.
	steps := 100
	for i := 0; i < steps; i++ {
		t := float32(i) / float32(steps)
		paint := vega.Paint{Color: geom.Color{
			R: 0.1 + t*0.4,
			G: 0.2 + t*0.3,
			B: 0.4 + t*0.2,
			A: 1,
		}}
		y := float32(h) * t
		canvas.DrawRect(geom.MakeXYWH(0, y, float32(w), float32(h)/float32(steps)+1), paint)
	}
}

func drawShapesDemo(canvas *vega.Canvas) {
	// Overlapping translucent circles.
	canvas.DrawCircle(150, 150, 60, vega.Paint{Color: geom.Color{R: 1, G: 0.3, B: 0.3, A: 0.8}})
	canvas.DrawCircle(200, 150, 60, vega.Paint{Color: geom.Color{R: 0.3, G: 1, B: 0.3, A: 0.8}})
	canvas.DrawCircle(175, 200, 60, vega.Paint{Color: geom.Color{R: 0.3, G: 0.3, B: 1, A: 0.8}})

	// Rounded rectangle with a stroked outline on top.
	canvas.DrawRoundRect(geom.MakeXYWH(350, 100, 120, 80), 15, 15,
		vega.Paint{Color: geom.Color{R: 1, G: 0.8, A: 1}})

	outline := vega.Paint{
		Color:  geom.White,
		Style:  vega.PaintStroke,
		Stroke: vega.Stroke{Width: 4},
	}
	canvas.DrawRect(geom.MakeXYWH(350, 100, 120, 80), outline)
}

func drawTransformDemo(canvas *vega.Canvas) {
	const (
		centerX = 600.0
		centerY = 150.0
	)

	for i := 0; i < 8; i++ {
		angle := float32(i) * math.Pi / 4
		canvas.Save()
		canvas.Translate(centerX, centerY)
		canvas.Rotate(angle)

		t := float32(i) / 8
		paint := vega.Paint{Color: geom.Color{R: 0.9 - t*0.6, G: 0.3 + t*0.5, B: 0.4 + t*0.4, A: 1}}
		canvas.DrawRect(geom.MakeXYWH(-30, -30, 60, 60), paint)
		canvas.Restore()
	}
}

func drawPathDemo(canvas *vega.Canvas) {
	// Stroked wave.
	canvas.Save()
	canvas.Translate(150, 400)

	wave := vega.NewPath()
	wave.MoveTo(0, 0)
	wave.CubicTo(50, -50, 100, 50, 150, 0)
	wave.CubicTo(200, -30, 250, 30, 300, 0)
	canvas.DrawPath(wave, vega.Paint{
		Color:  geom.Color{R: 1, G: 0.5, A: 1},
		Style:  vega.PaintStroke,
		Stroke: vega.Stroke{Width: 6},
	})

	// Filled five-pointed star.
	canvas.Translate(400, 0)
	star := vega.NewPath()
	const (
		points = 5
		outerR = 60.0
		innerR = 30.0
	)
	for i := 0; i < points*2; i++ {
		angle := float64(i) * math.Pi / points
		r := float64(outerR)
		if i%2 == 1 {
			r = innerR
		}
		x := float32(r * math.Cos(angle-math.Pi/2))
		y := float32(r * math.Sin(angle-math.Pi/2))
		if i == 0 {
			star.MoveTo(x, y)
		} else {
			star.LineTo(x, y)
		}
	}
	star.Close()
	canvas.DrawPath(star, vega.Paint{Color: geom.Color{R: 1, G: 1, A: 1}})

	canvas.Restore()
}
