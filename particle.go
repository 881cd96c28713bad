package main

const (
	ParticlesPerHit = 8
	ParticleFade    = 0.9 // alpha per second
	ParticleSpread  = 360.0
)

// Particle is a purely visual spark
type Particle struct {
	X, Y   float64
	VX, VY float64
	Alpha  float64
	Size   float64
	Color  string
}

// Update moves the particle and fades it, returning false once invisible
func (p *Particle) Update(dt float64) bool {
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Alpha -= ParticleFade * dt
	return p.Alpha > 0
}

// burst emits a hit burst at (x, y), dropping the oldest sparks over the cap
func (w *World) burst(x, y float64, color string) {
	if over := len(w.Particles) + ParticlesPerHit - w.Cfg.MaxParticles; over > 0 {
		if over > len(w.Particles) {
			over = len(w.Particles)
		}
		n := copy(w.Particles, w.Particles[over:])
		w.Particles = w.Particles[:n]
	}
	for i := 0; i < ParticlesPerHit && len(w.Particles) < w.Cfg.MaxParticles; i++ {
		w.Particles = append(w.Particles, Particle{
			X:     x,
			Y:     y,
			VX:    (w.Rand.Float64() - 0.5) * ParticleSpread,
			VY:    (w.Rand.Float64() - 0.5) * ParticleSpread,
			Alpha: 1,
			Size:  w.Rand.Float64() * 4,
			Color: color,
		})
	}
}

func (w *World) updateParticles(dt float64) {
	n := 0
	for i := range w.Particles {
		if w.Particles[i].Update(dt) {
			w.Particles[n] = w.Particles[i]
			n++
		}
	}
	w.Particles = w.Particles[:n]
}
