// discrete.go --  This file is part of goSCF project.
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
	"sync"

	"gonum.org/v1/gonum/stat"
)

// ComputeCoeffsDiscrete estimates the same S_nlm, T_nlm as ComputeCoeffs by
// direct weighted summation over particles: the Monte-Carlo estimator of the
// analytic projection integral. Radial values, Legendre values and
// cos/sin(m phi) are computed once per particle and reused across every
// (n,l,m); recomputing them per coefficient would dominate the runtime.
// Particles are processed in chunks by a worker pool, each worker summing
// into its own partial table, joined once at the end. With Options.ErrEst
// the chunk partials additionally feed a delete-one-block jackknife that
// fills SErr/TErr with shot-noise estimates.
func ComputeCoeffsDiscrete(pos [][3]float64, masses []float64, nmax, lmax int, mass, rs float64, opts *Options) (*CoeffTable, error) {
	if len(pos) != len(masses) {
		return nil, fmt.Errorf("%w: %d positions vs %d masses", ErrConfiguration, len(pos), len(masses))
	}
	if len(pos) == 0 {
		return nil, fmt.Errorf("%w: empty particle set", ErrConfiguration)
	}
	tab, err := NewCoeffTable(nmax, lmax, mass, rs)
	if err != nil {
		return nil, err
	}

	skipM := opts != nil && opts.SkipM
	sOnly := opts != nil && opts.SOnly
	errEst := opts != nil && opts.ErrEst

	// Chunk count: enough blocks for a jackknife even on few workers.
	nchunk := opts.workers()
	if errEst && nchunk < 16 {
		nchunk = 16
	}
	if nchunk > len(pos) {
		nchunk = len(pos)
	}
	chunkLen := (len(pos) + nchunk - 1) / nchunk
	nchunk = (len(pos) + chunkLen - 1) / chunkLen // actual chunk count

	type chunk struct{ lo, hi, idx int }
	partialS := make([][][][]float64, nchunk)
	partialT := make([][][][]float64, nchunk)

	jobs := make(chan chunk)
	var wg sync.WaitGroup
	for w := 0; w < opts.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rb := &RadialBasis{Nmax: nmax, Lmax: lmax}
			rt := rb.NewTables()
			ab := &AngularBasis{Lmax: lmax}
			at := ab.NewTables()
			cosm := make([]float64, lmax+1)
			sinm := make([]float64, lmax+1)
			for c := range jobs {
				ps := newCoeffArray(nmax, lmax)
				pt := newCoeffArray(nmax, lmax)
				for i := c.lo; i < c.hi; i++ {
					accumulateParticle(pos[i], masses[i], rs, rb, rt, ab, at, cosm, sinm, ps, pt, skipM, sOnly)
				}
				partialS[c.idx] = ps
				partialT[c.idx] = pt
			}
		}()
	}
	for idx, lo := 0, 0; lo < len(pos); idx, lo = idx+1, lo+chunkLen {
		hi := lo + chunkLen
		if hi > len(pos) {
			hi = len(pos)
		}
		jobs <- chunk{lo, hi, idx}
	}
	close(jobs)
	wg.Wait()

	// Join: raw sums, then the shared projection constant.
	for n := 0; n <= nmax; n++ {
		for l := 0; l <= lmax; l++ {
			scale := Anl(n, l) / mass
			for m := 0; m <= l; m++ {
				sc := scale
				if m == 0 {
					sc /= 2
				}
				var s, t float64
				for _, p := range partialS {
					s += p[n][l][m]
				}
				for _, p := range partialT {
					t += p[n][l][m]
				}
				tab.S[n][l][m] = sc * s
				tab.T[n][l][m] = sc * t
			}
		}
	}

	if errEst && nchunk > 1 {
		jackknifeErrors(tab, partialS, partialT)
	}
	return tab, nil
}

// accumulateParticle adds one particle's contribution to the raw S/T sums.
func accumulateParticle(p [3]float64, w, rs float64, rb *RadialBasis, rt *RadialTables,
	ab *AngularBasis, at *AngularTables, cosm, sinm []float64,
	ps, pt [][][]float64, skipM, sOnly bool) {

	x, y, z := p[0], p[1], p[2]
	r := math.Sqrt(x*x + y*y + z*z)
	X := 1.0
	if r > 0 {
		X = z / r
	}
	rb.Fill(r/rs, rt)
	ab.Fill(X, at)

	rxy := math.Hypot(x, y)
	cosm[0], sinm[0] = 1, 0
	if len(cosm) > 1 {
		c, s := 1.0, 0.0
		if rxy > 0 {
			c, s = x/rxy, y/rxy
		}
		for m := 1; m < len(cosm); m++ {
			cosm[m] = cosm[m-1]*c - sinm[m-1]*s
			sinm[m] = sinm[m-1]*c + cosm[m-1]*s
		}
	}

	for n := range ps {
		for l := range ps[n] {
			phi := w * rt.Phi[n][l]
			mtop := l
			if skipM {
				mtop = 0
			}
			for m := 0; m <= mtop; m++ {
				b := phi * at.P[l][m]
				ps[n][l][m] += b * cosm[m]
				if m > 0 && !sOnly {
					pt[n][l][m] += b * sinm[m]
				}
			}
		}
	}
}

// jackknifeErrors fills SErr/TErr by delete-one-block resampling over the
// chunk partial sums: cheap, and reuses what the parallel pass already built.
func jackknifeErrors(tab *CoeffTable, partialS, partialT [][][][]float64) {
	k := len(partialS)
	kf := float64(k)
	thS := make([]float64, k)
	thT := make([]float64, k)
	for n := 0; n <= tab.Nmax; n++ {
		for l := 0; l <= tab.Lmax; l++ {
			scale := Anl(n, l) / tab.Mass
			for m := 0; m <= l; m++ {
				sc := scale
				if m == 0 {
					sc /= 2
				}
				var totS, totT float64
				for _, p := range partialS {
					totS += p[n][l][m]
				}
				for _, p := range partialT {
					totT += p[n][l][m]
				}
				for i := 0; i < k; i++ {
					// leave-one-out estimates, rescaled to the full set
					thS[i] = sc * (totS - partialS[i][n][l][m]) * kf / (kf - 1)
					thT[i] = sc * (totT - partialT[i][n][l][m]) * kf / (kf - 1)
				}
				// SE^2 = (k-1)/k * sum (theta_i - mean)^2, and the sum of
				// squares is (k-1) times the sample variance.
				tab.SErr[n][l][m] = math.Sqrt((kf - 1) * (kf - 1) / kf * stat.Variance(thS, nil))
				tab.TErr[n][l][m] = math.Sqrt((kf - 1) * (kf - 1) / kf * stat.Variance(thT, nil))
			}
		}
	}
}
