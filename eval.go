// eval.go --  This file is part of goSCF project.
// Mirzaeva Irina, 2025
//
//	goSCF is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package scf

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Evaluator reconstructs density, potential, gradient and Hessian from a
// coefficient table. The table is read-only; every call works on its own
// scratch, so concurrent use from many goroutines is safe.
type Evaluator struct {
	// G is the gravitational constant in the caller's unit system; 1 by
	// default. Set it before the first evaluation.
	G float64

	tab *CoeffTable
	rb  *RadialBasis
	ab  *AngularBasis
}

// NewEvaluator validates the table shapes and builds an evaluator over it.
func NewEvaluator(tab *CoeffTable) (*Evaluator, error) {
	if err := tab.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{
		G:   1,
		tab: tab,
		rb:  &RadialBasis{Nmax: tab.Nmax, Lmax: tab.Lmax},
		ab:  &AngularBasis{Lmax: tab.Lmax},
	}, nil
}

// BuildEvaluator wraps raw S/T arrays (shape-checked) into an evaluator.
func BuildEvaluator(S, T [][][]float64, mass, rs float64) (*Evaluator, error) {
	nmax := len(S) - 1
	lmax := -1
	if nmax >= 0 {
		lmax = len(S[0]) - 1
	}
	tab := &CoeffTable{Nmax: nmax, Lmax: lmax, Mass: mass, RScale: rs, S: S, T: T}
	return NewEvaluator(tab)
}

// Need flags select which quantities an Eval call computes.
type Need uint8

const (
	NeedDensity Need = 1 << iota
	NeedPotential
	NeedGradient
	NeedHessian
)

// EvalResult carries batch outputs; only the requested slices are non-nil.
type EvalResult struct {
	Density   []float64
	Potential []float64
	Gradient  [][3]float64
	Hessian   []*mat.SymDense
}

// Density evaluates the reconstructed mass density at each point.
func (e *Evaluator) Density(pts [][3]float64) []float64 {
	return e.Eval(pts, 0, NeedDensity).Density
}

// Potential evaluates the gravitational potential at each point. The time
// argument exists for interface uniformity with moving-frame wrappers; the
// expansion itself is static and ignores it.
func (e *Evaluator) Potential(pts [][3]float64, t float64) []float64 {
	return e.Eval(pts, t, NeedPotential).Potential
}

// Gradient evaluates the analytic spatial gradient of the potential.
func (e *Evaluator) Gradient(pts [][3]float64, t float64) [][3]float64 {
	return e.Eval(pts, t, NeedGradient).Gradient
}

// Hessian evaluates the matrix of second spatial derivatives of the
// potential at each point.
func (e *Evaluator) Hessian(pts [][3]float64, t float64) []*mat.SymDense {
	return e.Eval(pts, t, NeedHessian).Hessian
}

// Eval computes every requested quantity in one pass: per point the radial
// and angular recurrence tables are filled once and shared by all (n,l,m)
// terms of all requested outputs.
func (e *Evaluator) Eval(pts [][3]float64, _ float64, need Need) *EvalResult {
	res := &EvalResult{}
	if need&NeedDensity != 0 {
		res.Density = make([]float64, len(pts))
	}
	if need&NeedPotential != 0 {
		res.Potential = make([]float64, len(pts))
	}
	if need&NeedGradient != 0 {
		res.Gradient = make([][3]float64, len(pts))
	}
	if need&NeedHessian != 0 {
		res.Hessian = make([]*mat.SymDense, len(pts))
	}

	sc := e.newScratch()
	for i, p := range pts {
		e.evalPoint(p, need, sc, res, i)
	}
	return res
}

type evalScratch struct {
	rt         *RadialTables
	at         *AngularTables
	cosm, sinm []float64
}

func (e *Evaluator) newScratch() *evalScratch {
	return &evalScratch{
		rt:   e.rb.NewTables(),
		at:   e.ab.NewTables(),
		cosm: make([]float64, e.tab.Lmax+1),
		sinm: make([]float64, e.tab.Lmax+1),
	}
}

// sums of the expansion series and the partial derivatives needed for the
// chain rule, all in dimensionless (s, theta, phi) variables
type seriesSums struct {
	dens float64 // sum A rho_nl P
	v    float64 // sum A Phi_nl P
	vs   float64 // d/ds
	vss  float64
	vt   float64 // d/dtheta
	vst  float64
	vtt  float64
	w    float64 // (1/sin theta) d/dphi, via the regular P/sin family
	ws   float64
	vtp  float64 // d2/dtheta dphi
	vpp  float64 // d2/dphi2
}

func (e *Evaluator) evalPoint(p [3]float64, need Need, sc *evalScratch, res *EvalResult, i int) {
	x, y, z := p[0], p[1], p[2]
	r := math.Sqrt(x*x + y*y + z*z)
	rxy := math.Hypot(x, y)
	s := r / e.tab.RScale

	X, sinth := 1.0, 0.0
	if r > 0 {
		X = z / r
		sinth = rxy / r
	}
	cphi, sphi := 1.0, 0.0
	if rxy > 0 {
		cphi, sphi = x/rxy, y/rxy
	}

	sums := e.series(s, X, cphi, sphi, sc, need)

	M, rs := e.tab.Mass, e.tab.RScale
	if need&NeedDensity != 0 {
		res.Density[i] = M / (rs * rs * rs) * sums.dens
	}
	pc := e.G * M / rs // potential scale
	if need&NeedPotential != 0 {
		res.Potential[i] = pc * sums.v
	}

	if need&NeedGradient != 0 {
		res.Gradient[i] = e.gradientFromSums(sums, s, X, sinth, cphi, sphi)
	}

	if need&NeedHessian != 0 {
		if sinth*sinth < 1e-10 || s == 0 {
			res.Hessian[i] = e.hessianFD(p)
		} else {
			res.Hessian[i] = e.hessianFromSums(sums, s, X, sinth, cphi, sphi)
		}
	}
}

// series accumulates every needed partial sum at one point.
func (e *Evaluator) series(s, X, cphi, sphi float64, sc *evalScratch, need Need) seriesSums {
	tab := e.tab
	_ = e.rb.Fill(s, sc.rt) // s is a vector norm, never negative
	_ = e.ab.Fill(X, sc.at)

	sc.cosm[0], sc.sinm[0] = 1, 0
	for m := 1; m <= tab.Lmax; m++ {
		sc.cosm[m] = sc.cosm[m-1]*cphi - sc.sinm[m-1]*sphi
		sc.sinm[m] = sc.sinm[m-1]*cphi + sc.cosm[m-1]*sphi
	}

	var out seriesSums
	for n := 0; n <= tab.Nmax; n++ {
		for l := 0; l <= tab.Lmax; l++ {
			rho := sc.rt.Rho[n][l]
			phi := sc.rt.Phi[n][l]
			dphi := sc.rt.DPhi[n][l]
			d2phi := sc.rt.D2Phi[n][l]
			for m := 0; m <= l; m++ {
				S := tab.S[n][l][m]
				T := tab.T[n][l][m]
				if S == 0 && T == 0 {
					continue
				}
				a := S*sc.cosm[m] + T*sc.sinm[m] // even combination
				b := T*sc.cosm[m] - S*sc.sinm[m] // d(a)/d(m phi)
				mf := float64(m)
				P := sc.at.P[l][m]
				dP := sc.at.DP[l][m]

				if need&NeedDensity != 0 {
					out.dens += a * rho * P
				}
				out.v += a * phi * P
				if need&(NeedGradient|NeedHessian) != 0 {
					out.vs += a * dphi * P
					out.vt += a * phi * dP
					out.w += mf * b * phi * sc.at.R[l][m]
				}
				if need&NeedHessian != 0 {
					out.vss += a * d2phi * P
					out.vst += a * dphi * dP
					out.vtt += a * phi * sc.at.D2P[l][m]
					out.ws += mf * b * dphi * sc.at.R[l][m]
					out.vtp += mf * b * phi * dP
					out.vpp -= mf * mf * a * phi * P
				}
			}
		}
	}
	return out
}

// gradientFromSums maps the spherical-frame derivatives to Cartesian. The
// phi component uses the P~/sin(theta) family, so the polar axis needs no
// division guard; the origin itself has no defined direction and returns a
// zero vector.
func (e *Evaluator) gradientFromSums(sums seriesSums, s, X, sinth, cphi, sphi float64) [3]float64 {
	if s == 0 {
		return [3]float64{}
	}
	rs := e.tab.RScale
	gc := e.G * e.tab.Mass / (rs * rs)
	gr := gc * sums.vs
	gt := gc * sums.vt / s
	gp := gc * sums.w / s

	return [3]float64{
		gr*sinth*cphi + gt*X*cphi - gp*sphi,
		gr*sinth*sphi + gt*X*sphi + gp*cphi,
		gr*X - gt*sinth,
	}
}

// hessianFromSums assembles the orthonormal-frame second derivatives and
// transforms them to Cartesian. Valid off the polar axis; the axis falls
// back to differencing the (everywhere regular) analytic gradient.
func (e *Evaluator) hessianFromSums(sums seriesSums, s, X, sinth, cphi, sphi float64) *mat.SymDense {
	rs := e.tab.RScale
	hc := e.G * e.tab.Mass / (rs * rs * rs)

	hrr := hc * sums.vss
	hrt := hc * (sums.vst/s - sums.vt/(s*s))
	hrp := hc * (sums.ws/s - sums.w/(s*s))
	htt := hc * (sums.vtt/(s*s) + sums.vs/s)
	htp := hc * (sums.vtp - X*sums.w) / (s * s * sinth)
	hpp := hc * (sums.vpp/(s*s*sinth*sinth) + sums.vs/s + X*sums.vt/(s*s*sinth))

	er := [3]float64{sinth * cphi, sinth * sphi, X}
	et := [3]float64{X * cphi, X * sphi, -sinth}
	ep := [3]float64{-sphi, cphi, 0}

	h := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			v := hrr*er[i]*er[j] + htt*et[i]*et[j] + hpp*ep[i]*ep[j] +
				hrt*(er[i]*et[j]+et[i]*er[j]) +
				hrp*(er[i]*ep[j]+ep[i]*er[j]) +
				htp*(et[i]*ep[j]+ep[i]*et[j])
			h.SetSym(i, j, v)
		}
	}
	return h
}

// hessianFD is the near-axis fallback: central differences of the analytic
// gradient, symmetrized.
func (e *Evaluator) hessianFD(p [3]float64) *mat.SymDense {
	r := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	h := 1e-5 * math.Max(r, e.tab.RScale)
	sc := e.newScratch()

	grad := func(q [3]float64) [3]float64 {
		x, y, z := q[0], q[1], q[2]
		rr := math.Sqrt(x*x + y*y + z*z)
		rxy := math.Hypot(x, y)
		s := rr / e.tab.RScale
		X, sinth := 1.0, 0.0
		if rr > 0 {
			X, sinth = z/rr, rxy/rr
		}
		cphi, sphi := 1.0, 0.0
		if rxy > 0 {
			cphi, sphi = x/rxy, y/rxy
		}
		sums := e.series(s, X, cphi, sphi, sc, NeedGradient)
		return e.gradientFromSums(sums, s, X, sinth, cphi, sphi)
	}

	var d [3][3]float64
	for j := 0; j < 3; j++ {
		hi, lo := p, p
		hi[j] += h
		lo[j] -= h
		ghi, glo := grad(hi), grad(lo)
		for i := 0; i < 3; i++ {
			d[i][j] = (ghi[i] - glo[i]) / (2 * h)
		}
	}
	out := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			out.SetSym(i, j, 0.5*(d[i][j]+d[j][i]))
		}
	}
	return out
}
