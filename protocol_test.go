package main

import (
	"math"
	"testing"
)

func TestBinaryInputRoundTrip(t *testing.T) {
	in := InputMsg{
		MX: 0.5, MY: -1, Aim: math.Pi / 2, HasAim: true,
		Fire: true, Cycle: true, Cast: [3]bool{true, false, true},
		AutoAim: true, AutoCast: true,
	}
	frame := EncodeBinaryInput(in)
	if len(frame) != binaryInputLen || frame[0] != binaryInputTag {
		t.Fatalf("expected %d-byte tagged frame, got % x", binaryInputLen, frame)
	}
	out, ok := DecodeBinaryInput(frame)
	if !ok {
		t.Fatal("expected frame to decode")
	}
	if math.Abs(out.MX-0.5) > 0.01 || out.MY != -1 {
		t.Errorf("expected move 0.5,-1, got %f,%f", out.MX, out.MY)
	}
	if math.Abs(out.Aim-math.Pi/2) > 1e-3 {
		t.Errorf("expected aim %f, got %f", math.Pi/2, out.Aim)
	}
	if !out.HasAim || !out.Fire || out.Pulse || !out.Cycle || out.AutoFire || !out.AutoAim || !out.AutoCast {
		t.Errorf("flags mismatch: %+v", out)
	}
	if out.Cast != in.Cast {
		t.Errorf("expected cast %v, got %v", in.Cast, out.Cast)
	}
}

func TestBinaryInputAimWraps(t *testing.T) {
	for _, aim := range []float64{-math.Pi / 2, 2*math.Pi - 1e-6, 5 * math.Pi} {
		out, _ := DecodeBinaryInput(EncodeBinaryInput(InputMsg{Aim: aim}))
		want := NormalizeAngle(aim)
		d := math.Abs(NormalizeAngle(out.Aim - want))
		if d > 1e-3 {
			t.Errorf("aim %f: expected %f, got %f", aim, want, out.Aim)
		}
	}
}

func TestDecodeBinaryInputRejectsBadFrames(t *testing.T) {
	for _, frame := range [][]byte{nil, {0x01}, {0x02, 0, 0, 0, 0, 0, 0}, make([]byte, 8)} {
		if _, ok := DecodeBinaryInput(frame); ok {
			t.Errorf("expected % x to be rejected", frame)
		}
	}
}

func TestInputMsgClampsMove(t *testing.T) {
	in := InputMsg{MX: 3, MY: 4}.ToInput()
	if l := math.Hypot(in.MoveX, in.MoveY); math.Abs(l-1) > 1e-9 {
		t.Errorf("expected unit move, got length %f", l)
	}
	in = InputMsg{MX: 0.3}.ToInput()
	if in.MoveX != 0.3 {
		t.Errorf("expected short move kept, got %f", in.MoveX)
	}
}
