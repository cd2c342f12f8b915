package pcmwav

import (
	"bytes"
	"errors"
	"testing"
)

func TestFloatToPCM(t *testing.T) {
	tests := []struct {
		name      string
		value     float32
		byteWidth int
		want      []byte
	}{
		{"32bit zero", 0, 4, []byte{0, 0, 0, 0}},
		{"32bit max", 1, 4, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
		{"32bit min", -1, 4, []byte{0x00, 0x00, 0x00, 0x80}},
		{"32bit half", 0.5, 4, []byte{0xFF, 0xFF, 0xFF, 0x3F}},
		{"32bit negative half", -0.5, 4, []byte{0x00, 0x00, 0x00, 0xC0}},
		{"24bit half", 0.5, 3, []byte{0xFF, 0xFF, 0x3F}},
		{"24bit negative half", -0.5, 3, []byte{0x00, 0x00, 0xC0}},
		{"24bit min", -1, 3, []byte{0x00, 0x00, 0x80}},
		{"16bit max", 1, 2, []byte{0xFF, 0x7F}},
		{"16bit negative half", -0.5, 2, []byte{0x00, 0xC0}},
		{"8bit half", 0.5, 1, []byte{0x3F}},
		{"8bit min", -1, 1, []byte{0x80}},
		{"8bit zero", 0, 1, []byte{0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FloatToPCM(tt.value, tt.byteWidth)
			if err != nil {
				t.Fatalf("FloatToPCM(%f, %d) failed: %v", tt.value, tt.byteWidth, err)
			}

			if !bytes.Equal(got, tt.want) {
				t.Fatalf("FloatToPCM(%f, %d)=% x, want % x", tt.value, tt.byteWidth, got, tt.want)
			}
		})
	}
}

func TestFloatToPCMInvalidWidth(t *testing.T) {
	for _, width := range []int{-1, 0, 5, 8} {
		_, err := FloatToPCM(0.25, width)
		if !errors.Is(err, errUnhandledByteWidth) {
			t.Fatalf("width %d: expected errUnhandledByteWidth, got %v", width, err)
		}
	}
}

func TestFloatToPCMOutOfRangeWraps(t *testing.T) {
	got, err := FloatToPCM(1.5, 4)
	if err != nil {
		t.Fatal(err)
	}

	back, err := PCMToFloat(got)
	if err != nil {
		t.Fatal(err)
	}

	if back >= 0 {
		t.Fatalf("expected 1.5 to wrap into the negative range, decoded %f", back)
	}
}

func TestPCMToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want float32
	}{
		{"32bit max", []byte{0xFF, 0xFF, 0xFF, 0x7F}, 1},
		{"32bit min", []byte{0x00, 0x00, 0x00, 0x80}, -1},
		{"32bit zero", []byte{0, 0, 0, 0}, 0},
		{"24bit negative half", []byte{0x00, 0x00, 0xC0}, -0.5},
		{"24bit min", []byte{0x00, 0x00, 0x80}, -1},
		{"16bit max", []byte{0xFF, 0x7F}, 0.99996948},
		{"16bit min", []byte{0x00, 0x80}, -1},
		{"16bit minus one step", []byte{0xFF, 0xFF}, -1.0 / 32768},
		{"8bit max", []byte{0x7F}, 0.9921875},
		{"8bit min", []byte{0x80}, -1},
		{"8bit top bit only is negative", []byte{0xC0}, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PCMToFloat(tt.in)
			if err != nil {
				t.Fatalf("PCMToFloat(% x) failed: %v", tt.in, err)
			}

			if !float32ApproxEqual(got, tt.want, 1e-6) {
				t.Fatalf("PCMToFloat(% x)=%v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPCMToFloatInvalidWidth(t *testing.T) {
	for _, in := range [][]byte{nil, {1, 2, 3, 4, 5}} {
		_, err := PCMToFloat(in)
		if !errors.Is(err, errUnhandledByteWidth) {
			t.Fatalf("input % x: expected errUnhandledByteWidth, got %v", in, err)
		}
	}
}

func TestPCM32RoundTrip(t *testing.T) {
	for i := -1000; i <= 1000; i++ {
		x := float32(i) / 1000

		enc, err := FloatToPCM(x, 4)
		if err != nil {
			t.Fatal(err)
		}

		got := pcmToFloat(enc)
		if !float32ApproxEqual(got, x, 1e-6) {
			t.Fatalf("round trip of %v gave %v", x, got)
		}
	}
}

func TestLossyRoundTripIsQuantizedAndMonotonic(t *testing.T) {
	for _, width := range []int{1, 2, 3} {
		// one quantization step at this width
		step := float32(1) / float32(int64(1)<<(8*width-1))

		prev := float32(-2)

		for i := -2000; i <= 2000; i++ {
			x := float32(i) / 2000

			enc, err := FloatToPCM(x, width)
			if err != nil {
				t.Fatal(err)
			}

			got := pcmToFloat(enc)

			if !float32ApproxEqual(got, x, step+1e-6) {
				t.Fatalf("width %d: %v decoded as %v, more than one step (%v) away", width, x, got, step)
			}

			if got < prev {
				t.Fatalf("width %d: decode not monotonic at %v: %v < %v", width, x, got, prev)
			}

			prev = got
		}
	}
}

func TestFloatsToPCM32(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, -1}

	got := FloatsToPCM32(in)
	if len(got) != len(in)*4 {
		t.Fatalf("expected %d bytes, got %d", len(in)*4, len(got))
	}

	for i, v := range in {
		want, err := FloatToPCM(v, 4)
		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(got[i*4:(i+1)*4], want) {
			t.Fatalf("sample %d: got % x, want % x", i, got[i*4:(i+1)*4], want)
		}
	}

	if len(FloatsToPCM32(nil)) != 0 {
		t.Fatal("expected no bytes for no samples")
	}
}

func TestPCMToFloats(t *testing.T) {
	got, err := PCMToFloats([]byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}, 2)
	if err != nil {
		t.Fatal(err)
	}

	assertFloat32SlicesClose(t, got, []float32{0.99996948, -1, 0}, 1e-6)

	_, err = PCMToFloats([]byte{1, 2, 3}, 2)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated for a partial sample, got %v", err)
	}

	_, err = PCMToFloats([]byte{1, 2, 3}, 0)
	if !errors.Is(err, errUnhandledByteWidth) {
		t.Fatalf("expected errUnhandledByteWidth, got %v", err)
	}
}

func TestRangePolicyApply(t *testing.T) {
	tests := []struct {
		name    string
		policy  RangePolicy
		in      float32
		want    float32
		wantErr bool
	}{
		{"keep in range", RangeKeep, 0.5, 0.5, false},
		{"keep above", RangeKeep, 1.5, 1.5, false},
		{"clamp above", RangeClamp, 1.5, 1, false},
		{"clamp below", RangeClamp, -3, -1, false},
		{"clamp at edge", RangeClamp, -1, -1, false},
		{"reject above", RangeReject, 1.01, 1.01, true},
		{"reject in range", RangeReject, 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.apply(tt.in)
			if tt.wantErr != (err != nil) {
				t.Fatalf("apply(%f) error=%v, wantErr %t", tt.in, err, tt.wantErr)
			}

			if err != nil && !errors.Is(err, ErrSampleOutOfRange) {
				t.Fatalf("expected ErrSampleOutOfRange, got %v", err)
			}

			if got != tt.want {
				t.Fatalf("apply(%f)=%f, want %f", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRangePolicy(t *testing.T) {
	for _, policy := range []RangePolicy{RangeKeep, RangeClamp, RangeReject} {
		got, err := ParseRangePolicy(policy.String())
		if err != nil {
			t.Fatalf("parse %q: %v", policy, err)
		}

		if got != policy {
			t.Fatalf("parse %q gave %v", policy, got)
		}
	}

	if got, err := ParseRangePolicy("CLAMP"); err != nil || got != RangeClamp {
		t.Fatalf("expected case insensitive match, got %v, %v", got, err)
	}

	if _, err := ParseRangePolicy("wrap"); err == nil {
		t.Fatal("expected an error for an unknown policy")
	}

	if s := RangePolicy(7).String(); s != "RangePolicy(7)" {
		t.Fatalf("unexpected name for unknown policy: %s", s)
	}
}

func TestClampFloat32(t *testing.T) {
	tests := []struct {
		name     string
		value    float32
		min, max float32
		want     float32
	}{
		{"below min", -2, -1, 1, -1},
		{"at min", -1, -1, 1, -1},
		{"in range", 0.5, -1, 1, 0.5},
		{"at max", 1, -1, 1, 1},
		{"above max", 2, -1, 1, 1},
		{"zero", 0, -1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampFloat32(tt.value, tt.min, tt.max)
			if got != tt.want {
				t.Fatalf("clampFloat32(%f, %f, %f)=%f, want %f", tt.value, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestPeak(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    float64
	}{
		{"empty", nil, 0},
		{"silence", []float32{0, 0}, 0},
		{"negative peak", []float32{0.5, -1, 0.25}, 1},
		{"out of range", []float32{0.1, 1.5, -0.2}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Peak(tt.samples); got != tt.want {
				t.Fatalf("Peak=%f, want %f", got, tt.want)
			}
		})
	}
}
