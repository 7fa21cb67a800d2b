// coeffs.go --  This file is part of goSCF project.
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
	"fmt"
	"math"
	"runtime"
	"sync"
)

// DensityFunc maps a Cartesian position to mass density. Extra positional
// parameters configured via Options.Args are forwarded after the coordinates.
// The function may be singular at the origin.
type DensityFunc func(x, y, z float64, args ...float64) float64

// Options configures coefficient estimation. The zero value is usable.
type Options struct {
	SkipM bool // compute only m=0 terms (axisymmetric input); m>0 stays exactly zero
	SOnly bool // skip every T projection; caller asserts the input has no sin(m phi) part

	Args []float64 // forwarded to the density function after x, y, z

	Tol       float64 // per-coefficient quadrature tolerance (default 1e-10)
	MaxSubdiv int     // bisection budget per 1D integral (default 2000)
	Workers   int     // parallel coefficient workers (default GOMAXPROCS)

	// Progress, if set, is called after each finished (n,l,m). Purely
	// cosmetic: it must not influence results and never gates control flow.
	Progress func(n, l, m int)

	ErrEst bool // discrete mode only: block-jackknife sampling errors
}

func (o *Options) tol() float64 {
	if o == nil || o.Tol <= 0 {
		return 1e-10
	}
	return o.Tol
}

func (o *Options) maxSubdiv() int {
	if o == nil || o.MaxSubdiv <= 0 {
		return 2000
	}
	return o.MaxSubdiv
}

func (o *Options) workers() int {
	if o == nil || o.Workers <= 0 {
		return runtime.GOMAXPROCS(-1)
	}
	return o.Workers
}

// Anl is the projection constant 1/(2 pi I_nl), where I_nl is the
// bi-orthogonality integral of the radial pair (rho_nl, Phi_nl):
//
//	I_nl = -K_nl/2^(8l+6) * Gamma(n+4l+3) / (n! (n+2l+3/2) Gamma(2l+3/2)^2)
//
// The Gamma ratio is formed in log space so large (n,l) never overflow.
func Anl(n, l int) float64 {
	nf, lf := float64(n), float64(l)
	alpha := 2*lf + 1.5
	lg1, _ := math.Lgamma(nf + 4*lf + 3)
	lg2, _ := math.Lgamma(nf + 1)
	lg3, _ := math.Lgamma(alpha)
	lnI := math.Log(Knl(n, l)) - (8*lf+6)*math.Ln2 + lg1 - lg2 - math.Log(nf+alpha) - 2*lg3
	return -1 / (2 * math.Pi * math.Exp(lnI))
}

type nlmJob struct{ n, l, m int }

// ComputeCoeffs estimates S_nlm and T_nlm for an analytic density by nested
// adaptive quadrature over (phi, cos theta, u) with the radial substitution
// s = u/(1-u) mapping [0,inf) onto [0,1). Coefficients are independent, so
// they are fanned out over a worker pool writing disjoint table slots.
// A coefficient whose quadrature exhausts the subdivision budget is still
// stored, with an inflated error estimate, and reported in the returned
// warning list; only structural errors abort.
func ComputeCoeffs(rho DensityFunc, nmax, lmax int, mass, rs float64, opts *Options) (*CoeffTable, []ConvergenceWarning, error) {
	if rho == nil {
		return nil, nil, fmt.Errorf("%w: nil density function", ErrConfiguration)
	}
	tab, err := NewCoeffTable(nmax, lmax, mass, rs)
	if err != nil {
		return nil, nil, err
	}

	var jobs []nlmJob
	for n := 0; n <= nmax; n++ {
		for l := 0; l <= lmax; l++ {
			mtop := l
			if opts != nil && opts.SkipM {
				mtop = 0
			}
			for m := 0; m <= mtop; m++ {
				jobs = append(jobs, nlmJob{n, l, m})
			}
		}
	}

	est := &analyticEstimator{
		rho: rho, opts: opts,
		mass: mass, rs: rs,
		tol: opts.tol(), maxSubdiv: opts.maxSubdiv(),
	}

	ch := make(chan nlmJob)
	var mu sync.Mutex
	var warns []ConvergenceWarning
	var wg sync.WaitGroup
	for w := 0; w < opts.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range ch {
				ws := est.oneCoeff(j, tab)
				mu.Lock()
				warns = append(warns, ws...)
				if opts != nil && opts.Progress != nil {
					opts.Progress(j.n, j.l, j.m)
				}
				mu.Unlock()
			}
		}()
	}
	for _, j := range jobs {
		ch <- j
	}
	close(ch)
	wg.Wait()

	return tab, warns, nil
}

type analyticEstimator struct {
	rho       DensityFunc
	opts      *Options
	mass, rs  float64
	tol       float64
	maxSubdiv int
}

// oneCoeff fills S[n][l][m] (and T unless skipped) and returns any
// convergence warnings. Workers touch disjoint slots, so no locking here.
func (e *analyticEstimator) oneCoeff(j nlmJob, tab *CoeffTable) []ConvergenceWarning {
	var warns []ConvergenceWarning

	scale := Anl(j.n, j.l) * e.rs * e.rs * e.rs / e.mass
	if j.m == 0 {
		scale /= 2
	}

	v, errEst, ok := e.project(j.n, j.l, j.m, false)
	tab.S[j.n][j.l][j.m] = scale * v
	tab.SErr[j.n][j.l][j.m] = math.Abs(scale) * errEst
	if !ok {
		tab.SErr[j.n][j.l][j.m] = math.Max(tab.SErr[j.n][j.l][j.m], math.Abs(scale*v))
		warns = append(warns, ConvergenceWarning{j.n, j.l, j.m, false, tab.SErr[j.n][j.l][j.m]})
	}

	// T_nl0 vanishes identically (sin 0 = 0); S_only skips T by assertion.
	if j.m == 0 || (e.opts != nil && e.opts.SOnly) {
		return warns
	}
	v, errEst, ok = e.project(j.n, j.l, j.m, true)
	tab.T[j.n][j.l][j.m] = scale * v
	tab.TErr[j.n][j.l][j.m] = math.Abs(scale) * errEst
	if !ok {
		tab.TErr[j.n][j.l][j.m] = math.Max(tab.TErr[j.n][j.l][j.m], math.Abs(scale*v))
		warns = append(warns, ConvergenceWarning{j.n, j.l, j.m, true, tab.TErr[j.n][j.l][j.m]})
	}
	return warns
}

// project evaluates the raw triple integral
//
//	Int rho(x) Phi_nl(s) P~_lm(X) trig(m phi) s^2 ds dX dphi
//
// with trig = cos (S) or sin (T). Inner integrals run at a tenth of the outer
// tolerance; their convergence failures taint the whole coefficient.
func (e *analyticEstimator) project(n, l, m int, sine bool) (val, errEst float64, converged bool) {
	mf := float64(m)
	conv := true

	phiHi := 2 * math.Pi
	phiFac := 1.0
	if e.opts != nil && e.opts.SOnly {
		// cos(m phi) is even about phi=0 for a reflection-symmetric input
		phiHi = math.Pi
		phiFac = 2
	}

	var args []float64
	if e.opts != nil {
		args = e.opts.Args
	}

	fu := func(u float64) float64 {
		s := u / (1 - u)
		radial := radialPhiOne(n, l, s) * s * s / ((1 - u) * (1 - u))
		if radial == 0 {
			return 0
		}
		r := e.rs * s
		fX := func(X float64) float64 {
			p := plmOne(l, m, X)
			if p == 0 {
				return 0
			}
			sinth := math.Sqrt(1 - X*X)
			z := r * X
			fphi := func(phi float64) float64 {
				x := r * sinth * math.Cos(phi)
				y := r * sinth * math.Sin(phi)
				d := e.rho(x, y, z, args...)
				if sine {
					return d * math.Sin(mf*phi)
				}
				return d * math.Cos(mf*phi)
			}
			v, _, ok := integrate1D(fphi, 0, phiHi, e.tol*0.1, e.maxSubdiv)
			if !ok {
				conv = false
			}
			return phiFac * v * p
		}
		v, _, ok := integrate1D(fX, -1, 1, e.tol*0.1, e.maxSubdiv)
		if !ok {
			conv = false
		}
		return v * radial
	}
	val, errEst, ok := integrate1D(fu, 0, 1, e.tol, e.maxSubdiv)
	if !ok {
		conv = false
	}
	return val, errEst, conv
}
