// angular.go --  This file is part of goSCF project.
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
)

// Fully normalized associated Legendre functions
//
//	P~_lm(X) = sqrt((2l+1)/(4 pi) * (l-m)!/(l+m)!) P_lm(X),  X = cos(theta)
//
// (no Condon-Shortley phase), so downstream code needs no extra Y_lm factor.
// Everything is generated by the upward recurrence in l for fixed m, seeded
// from the sectoral l=m closed form with the normalization folded in
// incrementally; no factorials are ever formed, so large l does not overflow.

const cosTol = 1e-12

// AngularBasis evaluates P~_lm and theta-derivatives up to Lmax.
type AngularBasis struct {
	Lmax int
}

func NewAngularBasis(lmax int) (*AngularBasis, error) {
	if err := checkOrder(0, lmax); err != nil {
		return nil, err
	}
	return &AngularBasis{Lmax: lmax}, nil
}

// AngularTables holds per-point values indexed [l][m], m slices of length l+1.
type AngularTables struct {
	P   [][]float64 // P~_lm(X)
	DP  [][]float64 // d P~_lm / d theta
	D2P [][]float64 // d^2 P~_lm / d theta^2
	R   [][]float64 // P~_lm / sin(theta) for m >= 1; R[l][0] = 0
}

func (ab *AngularBasis) NewTables() *AngularTables {
	t := &AngularTables{
		P:   make([][]float64, ab.Lmax+1),
		DP:  make([][]float64, ab.Lmax+1),
		D2P: make([][]float64, ab.Lmax+1),
		R:   make([][]float64, ab.Lmax+1),
	}
	for l := range t.P {
		t.P[l] = make([]float64, l+1)
		t.DP[l] = make([]float64, l+1)
		t.D2P[l] = make([]float64, l+1)
		t.R[l] = make([]float64, l+1)
	}
	return t
}

// Fill computes P~_lm, its first and second theta-derivatives, and the
// axis-regular ratio P~_lm/sin(theta) at X = cos(theta). The derivative
// recurrences are the l-recurrence differentiated with dX/dtheta = -sin,
// d2X/dtheta2 = -X; every seed is finite at the poles, so no pole needs a
// special case. |X| beyond 1 + 1e-12 is a domain error; within tolerance X
// is clamped.
func (ab *AngularBasis) Fill(X float64, t *AngularTables) error {
	if math.Abs(X) > 1+cosTol || math.IsNaN(X) {
		return fmt.Errorf("%w: cos(theta)=%g outside [-1,1]", ErrDomain, X)
	}
	X = math.Max(-1, math.Min(1, X))
	sin := math.Sqrt(1 - X*X)

	cm := math.Sqrt(1 / (4 * math.Pi)) // normalization of P~_mm, built up in m
	sinm, sinm1, sinm2 := 1.0, 0.0, 0.0
	for m := 0; m <= ab.Lmax; m++ {
		mf := float64(m)
		if m > 0 {
			cm *= math.Sqrt((2*mf + 1) / (2 * mf))
			sinm2 = sinm1
			sinm1 = sinm
			sinm *= sin
		}

		// Sectoral seeds at l = m; sinm, sinm1, sinm2 hold sin^m, sin^(m-1),
		// sin^(m-2) without ever dividing by sin.
		t.P[m][m] = cm * sinm
		t.DP[m][m] = mf * X * cm * sinm1
		if m == 0 {
			t.D2P[m][m] = 0
			t.R[m][m] = 0
		} else {
			t.D2P[m][m] = mf * cm * ((mf-1)*X*X*sinm2 - sinm)
			t.R[m][m] = cm * sinm1
		}

		if m+1 <= ab.Lmax {
			f := math.Sqrt(2*mf + 3)
			t.P[m+1][m] = f * X * t.P[m][m]
			t.DP[m+1][m] = f * (-sin*t.P[m][m] + X*t.DP[m][m])
			t.D2P[m+1][m] = f * (-X*t.P[m][m] - 2*sin*t.DP[m][m] + X*t.D2P[m][m])
			t.R[m+1][m] = f * X * t.R[m][m]
		}

		for l := m + 2; l <= ab.Lmax; l++ {
			lf := float64(l)
			den := lf*lf - mf*mf
			a := math.Sqrt((4*lf*lf - 1) / den)
			b := math.Sqrt((2*lf + 1) * ((lf-1)*(lf-1) - mf*mf) / ((2*lf - 3) * den))
			t.P[l][m] = a*X*t.P[l-1][m] - b*t.P[l-2][m]
			t.DP[l][m] = a*(-sin*t.P[l-1][m]+X*t.DP[l-1][m]) - b*t.DP[l-2][m]
			t.D2P[l][m] = a*(-X*t.P[l-1][m]-2*sin*t.DP[l-1][m]+X*t.D2P[l-1][m]) - b*t.D2P[l-2][m]
			t.R[l][m] = a*X*t.R[l-1][m] - b*t.R[l-2][m]
		}
	}
	return nil
}

// plmOne evaluates a single P~_lm(X) by the same recurrence, used inside
// quadrature integrands where only one (l,m) is live.
func plmOne(l, m int, X float64) float64 {
	X = math.Max(-1, math.Min(1, X))
	sin := math.Sqrt(1 - X*X)
	mf := float64(m)
	cm := math.Sqrt(1 / (4 * math.Pi))
	for k := 1; k <= m; k++ {
		cm *= math.Sqrt((2*float64(k) + 1) / (2 * float64(k)))
	}
	p := cm * math.Pow(sin, mf)
	if l == m {
		return p
	}
	p1 := math.Sqrt(2*mf+3) * X * p
	if l == m+1 {
		return p1
	}
	for k := m + 2; k <= l; k++ {
		kf := float64(k)
		den := kf*kf - mf*mf
		a := math.Sqrt((4*kf*kf - 1) / den)
		b := math.Sqrt((2*kf + 1) * ((kf-1)*(kf-1) - mf*mf) / ((2*kf - 3) * den))
		p, p1 = p1, a*X*p1-b*p
	}
	return p1
}
