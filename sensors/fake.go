package sensors

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"
)

// Fake is a sensor that reports a settable value plus uniform noise of up to
// ±jitter.
type Fake struct {
	mutex  sync.Mutex
	name   string
	value  float64
	jitter float64
}

func NewFake(name string, value, jitter float64) *Fake {
	return &Fake{
		name:   name,
		value:  value,
		jitter: jitter,
	}
}

func (s *Fake) Name() string {
	return s.name
}

func (s *Fake) SetValue(val float64) {
	s.mutex.Lock()
	s.value = val
	s.mutex.Unlock()
}

func (s *Fake) ReadValue() (float64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.jitter == 0 {
		return s.value, nil
	}
	return s.value + (rand.Float64()*2-1)*s.jitter, nil
}

// FakeCamera captures a small generated PNG, or the fixed image when one is
// set.
type FakeCamera struct {
	Size  int
	Image []byte
}

func (c *FakeCamera) Capture() ([]byte, error) {
	if len(c.Image) > 0 {
		return c.Image, nil
	}

	size := c.Size
	if size <= 0 {
		size = 32
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	shade := uint8(rand.Intn(128))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(128 + y*127/size), B: uint8(x * 255 / size), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
