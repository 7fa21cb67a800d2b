// basis.go --  This file is part of goSCF project.
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

// Hernquist-Ostriker radial basis. With s = r/r_s, u = (s-1)/(s+1) and
// alpha = 2l + 3/2:
//
//	Phi_nl(s) = -sqrt(4 pi) * s^l / (1+s)^(2l+1) * C_n^alpha(u)
//	rho_nl(s) =  sqrt(4 pi) * K_nl/(2 pi) * s^(l-1) / (1+s)^(2l+3) * C_n^alpha(u)
//
// so that S_000 = 1 reproduces the Hernquist profile with total mass M.

var sqrt4pi = math.Sqrt(4 * math.Pi)

// Knl is the Hernquist-Ostriker density prefactor n(n+4l+3)/2 + (l+1)(2l+1).
func Knl(n, l int) float64 {
	nf, lf := float64(n), float64(l)
	return 0.5*nf*(nf+4*lf+3) + (lf+1)*(2*lf+1)
}

// gegenbauerAll fills c[n] = C_n^alpha(u) for n = 0..len(c)-1 by the
// bottom-up three-term recurrence. Closed-form polynomial coefficients lose
// precision at high degree, the recurrence does not.
func gegenbauerAll(c []float64, alpha, u float64) {
	if len(c) == 0 {
		return
	}
	c[0] = 1
	if len(c) == 1 {
		return
	}
	c[1] = 2 * alpha * u
	for n := 2; n < len(c); n++ {
		nf := float64(n)
		c[n] = (2*(nf-1+alpha)*u*c[n-1] - (nf-2+2*alpha)*c[n-2]) / nf
	}
}

// gegenbauerOne evaluates C_n^alpha(u) alone, same recurrence, no allocation.
func gegenbauerOne(n int, alpha, u float64) float64 {
	if n == 0 {
		return 1
	}
	prev, cur := 1.0, 2*alpha*u
	for k := 2; k <= n; k++ {
		kf := float64(k)
		prev, cur = cur, (2*(kf-1+alpha)*u*cur-(kf-2+2*alpha)*prev)/kf
	}
	return cur
}

// RadialBasis evaluates the radial basis functions up to (Nmax, Lmax) at one
// dimensionless radius per Fill call. It holds no state beyond the orders.
type RadialBasis struct {
	Nmax, Lmax int
}

func NewRadialBasis(nmax, lmax int) (*RadialBasis, error) {
	if err := checkOrder(nmax, lmax); err != nil {
		return nil, err
	}
	return &RadialBasis{Nmax: nmax, Lmax: lmax}, nil
}

// RadialTables holds per-point basis values indexed [n][l].
type RadialTables struct {
	Rho   [][]float64 // rho_nl(s)
	Phi   [][]float64 // Phi_nl(s)
	DPhi  [][]float64 // d Phi_nl / ds
	D2Phi [][]float64 // d^2 Phi_nl / ds^2

	c, c1, c2 []float64 // Gegenbauer scratch for alpha, alpha+1, alpha+2
}

func (rb *RadialBasis) NewTables() *RadialTables {
	t := &RadialTables{
		Rho:   make([][]float64, rb.Nmax+1),
		Phi:   make([][]float64, rb.Nmax+1),
		DPhi:  make([][]float64, rb.Nmax+1),
		D2Phi: make([][]float64, rb.Nmax+1),
		c:     make([]float64, rb.Nmax+1),
		c1:    make([]float64, rb.Nmax+1),
		c2:    make([]float64, rb.Nmax+1),
	}
	for n := range t.Rho {
		t.Rho[n] = make([]float64, rb.Lmax+1)
		t.Phi[n] = make([]float64, rb.Lmax+1)
		t.DPhi[n] = make([]float64, rb.Lmax+1)
		t.D2Phi[n] = make([]float64, rb.Lmax+1)
	}
	return t
}

// Fill computes all basis values and s-derivatives at s = r/r_s. Derivatives
// of the Gegenbauer factor come from dC_n^a/du = 2a C_{n-1}^{a+1} and
// d^2C_n^a/du^2 = 4a(a+1) C_{n-2}^{a+2}; the envelope is differentiated by
// the product rule. rho_n0 diverges as 1/s at the origin (Hernquist cusp):
// Fill returns +-Inf there, never a panic.
func (rb *RadialBasis) Fill(s float64, t *RadialTables) error {
	if s < 0 || math.IsNaN(s) {
		return fmt.Errorf("%w: negative radius s=%g", ErrDomain, s)
	}
	u := (s - 1) / (s + 1)
	du := 2 / ((1 + s) * (1 + s))    // du/ds
	d2u := -4 / math.Pow(1+s, 3)     // d^2u/ds^2
	rhoC := sqrt4pi / (2 * math.Pi)  // shared rho prefactor (without K_nl)

	for l := 0; l <= rb.Lmax; l++ {
		lf := float64(l)
		alpha := 2*lf + 1.5
		gegenbauerAll(t.c, alpha, u)
		gegenbauerAll(t.c1[:rb.Nmax], alpha+1, u)
		if rb.Nmax >= 2 {
			gegenbauerAll(t.c2[:rb.Nmax-1], alpha+2, u)
		}

		// Envelope e = -sqrt(4 pi) s^l (1+s)^-(2l+1) and its s-derivatives.
		var e, de, d2e float64
		if s > 0 {
			e = -sqrt4pi * math.Pow(s, lf) * math.Pow(1+s, -(2*lf + 1))
			de = e * (lf/s - (2*lf+1)/(1+s))
			d2e = e * (lf*(lf-1)/(s*s) - 2*lf*(2*lf+1)/(s*(1+s)) + (2*lf+1)*(2*lf+2)/((1+s)*(1+s)))
		} else {
			switch l {
			case 0:
				e, de, d2e = -sqrt4pi, sqrt4pi, -2*sqrt4pi
			case 1:
				e, de, d2e = 0, -sqrt4pi, 6*sqrt4pi
			case 2:
				e, de, d2e = 0, 0, -2*sqrt4pi
			default:
				e, de, d2e = 0, 0, 0
			}
		}

		renv := rhoC * math.Pow(s, lf-1) * math.Pow(1+s, -(2*lf + 3))

		for n := 0; n <= rb.Nmax; n++ {
			cn := t.c[n]
			t.Rho[n][l] = Knl(n, l) * renv * cn
			t.Phi[n][l] = e * cn

			var dc, d2c float64
			if n >= 1 {
				dc = 2 * alpha * t.c1[n-1]
			}
			if n >= 2 {
				d2c = 4 * alpha * (alpha + 1) * t.c2[n-2]
			}
			t.DPhi[n][l] = de*cn + e*dc*du
			t.D2Phi[n][l] = d2e*cn + 2*de*dc*du + e*(d2c*du*du+dc*d2u)
		}
	}
	return nil
}

// radialPhiOne evaluates a single Phi_nl(s), used inside quadrature
// integrands where only one (n,l) is live.
func radialPhiOne(n, l int, s float64) float64 {
	lf := float64(l)
	u := (s - 1) / (s + 1)
	env := -sqrt4pi * math.Pow(s, lf) * math.Pow(1+s, -(2*lf + 1))
	return env * gegenbauerOne(n, 2*lf+1.5, u)
}
