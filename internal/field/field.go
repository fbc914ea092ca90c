package field

// Field is a magnetic field model evaluated at points in space.
// The QFM core never samples the field itself; it only threads the model
// through to the residual evaluator bound to the surface.
type Field interface {
	// B returns the field vector at the cartesian point xyz.
	B(xyz [3]float64) [3]float64
}

// Toroidal is a purely toroidal field B = B0*R0/R in the toroidal
// direction, the simplest model with nested circular flux surfaces.
type Toroidal struct {
	B0 float64 // Field strength on the axis circle
	R0 float64 // Major radius of the axis circle
}

// NewToroidal creates a toroidal field with strength b0 at major radius r0.
func NewToroidal(b0, r0 float64) *Toroidal {
	return &Toroidal{B0: b0, R0: r0}
}

// B returns B0*R0/R^2 * (-y, x, 0), i.e. magnitude B0*R0/R along the
// toroidal unit vector. The field is singular on the z axis; B returns the
// zero vector there.
func (t *Toroidal) B(xyz [3]float64) [3]float64 {
	x, y := xyz[0], xyz[1]
	r2 := x*x + y*y
	if r2 == 0 {
		return [3]float64{}
	}
	scale := t.B0 * t.R0 / r2
	return [3]float64{-scale * y, scale * x, 0}
}

// Uniform is a constant field, useful as a trivial model in tests.
type Uniform struct {
	Value [3]float64
}

// B returns the constant field vector.
func (u *Uniform) B(xyz [3]float64) [3]float64 {
	return u.Value
}
