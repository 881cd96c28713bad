package main

const (
	BlastLife  = 0.35 // seconds a blast ring stays visible
	FlashDecay = 2.2  // flash units per second
	ShakeFloor = 0.3
	ShakeDecay = 6.0
)

// Blast is the visual ring of an area effect (pulse, grenade, EMP)
type Blast struct {
	X, Y   float64
	Radius float64
	Life   float64
	Color  string
}

// Update ticks the blast lifetime, returns false when expired
func (b *Blast) Update(dt float64) bool {
	b.Life -= dt
	return b.Life > 0
}

// Beam is the draw state of the laser for the current frame
type Beam struct {
	Active         bool
	X1, Y1, X2, Y2 float64
	Width          float64
}

func (w *World) addBlast(x, y, radius float64, color string) {
	w.Blasts = append(w.Blasts, Blast{X: x, Y: y, Radius: radius, Life: BlastLife, Color: color})
}

// shake raises the screen shake magnitude to at least v
func (w *World) shake(v float64) {
	if w.Shake < v {
		w.Shake = v
	}
}

func (w *World) flash(v float64) {
	if w.Flash < v {
		w.Flash = v
	}
}

// decayEffects fades shake, flash and blast rings
func (w *World) decayEffects(dt float64) {
	if w.Shake > ShakeFloor {
		w.Shake *= 1 - ShakeDecay*dt
	} else {
		w.Shake = 0
	}
	if w.Flash > 0 {
		w.Flash -= FlashDecay * dt
		if w.Flash < 0 {
			w.Flash = 0
		}
	}
	n := 0
	for i := range w.Blasts {
		if w.Blasts[i].Update(dt) {
			w.Blasts[n] = w.Blasts[i]
			n++
		}
	}
	w.Blasts = w.Blasts[:n]
}
