// basis_test.go --  This file is part of goSCF project.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGegenbauerLowOrders(t *testing.T) {
	alpha := 1.5
	for _, u := range []float64{-0.9, -0.3, 0.0, 0.4, 0.99} {
		assert.InDelta(t, 1.0, gegenbauerOne(0, alpha, u), 1e-15)
		assert.InDelta(t, 2*alpha*u, gegenbauerOne(1, alpha, u), 1e-14)
		// C_2^a(u) = 2a(1+a)u^2 - a
		assert.InDelta(t, 2*alpha*(1+alpha)*u*u-alpha, gegenbauerOne(2, alpha, u), 1e-13)
	}
}

func TestGegenbauerAllMatchesOne(t *testing.T) {
	c := make([]float64, 9)
	gegenbauerAll(c, 3.5, 0.42)
	for n := range c {
		assert.InDelta(t, gegenbauerOne(n, 3.5, 0.42), c[n], 1e-12)
	}
}

func fillRadial(t *testing.T, rb *RadialBasis, s float64) *RadialTables {
	t.Helper()
	rt := rb.NewTables()
	require.NoError(t, rb.Fill(s, rt))
	return rt
}

func TestRadialZerothIsHernquist(t *testing.T) {
	rb, err := NewRadialBasis(0, 0)
	require.NoError(t, err)
	for _, s := range []float64{0.1, 0.5, 1, 3, 10} {
		rt := fillRadial(t, rb, s)
		// Phi_00 * P~_00 is the Hernquist potential -1/(1+s)
		assert.InDelta(t, -sqrt4pi/(1+s), rt.Phi[0][0], 1e-14)
		// rho_00 * P~_00 is the Hernquist profile 1/(2 pi s (1+s)^3)
		p00 := plmOne(0, 0, 0.3)
		assert.InEpsilon(t, 1/(2*math.Pi*s*math.Pow(1+s, 3)), rt.Rho[0][0]*p00, 1e-12)
	}
}

func TestRadialDerivativesFiniteDiff(t *testing.T) {
	rb, err := NewRadialBasis(4, 3)
	require.NoError(t, err)
	h := 1e-6
	for _, s := range []float64{0.3, 1.1, 4.5} {
		rt := fillRadial(t, rb, s)
		hi := fillRadial(t, rb, s+h)
		lo := fillRadial(t, rb, s-h)
		for n := 0; n <= rb.Nmax; n++ {
			for l := 0; l <= rb.Lmax; l++ {
				fd1 := (hi.Phi[n][l] - lo.Phi[n][l]) / (2 * h)
				assert.InDelta(t, fd1, rt.DPhi[n][l], 1e-5*(1+math.Abs(fd1)),
					"dPhi n=%d l=%d s=%g", n, l, s)
				fd2 := (hi.DPhi[n][l] - lo.DPhi[n][l]) / (2 * h)
				assert.InDelta(t, fd2, rt.D2Phi[n][l], 1e-4*(1+math.Abs(fd2)),
					"d2Phi n=%d l=%d s=%g", n, l, s)
			}
		}
	}
}

func TestRadialOrigin(t *testing.T) {
	rb, err := NewRadialBasis(3, 2)
	require.NoError(t, err)
	rt := fillRadial(t, rb, 0)
	for n := 0; n <= 3; n++ {
		// l=0 density envelope has the 1/s cusp
		assert.True(t, math.IsInf(rt.Rho[n][0], 0), "rho n=%d", n)
		// potential stays finite everywhere
		assert.False(t, math.IsInf(rt.Phi[n][0], 0))
		assert.False(t, math.IsNaN(rt.Phi[n][0]))
		// l>=2 envelopes vanish at the origin
		assert.Equal(t, 0.0, rt.Phi[n][2])
		assert.Equal(t, 0.0, rt.Rho[n][2])
	}
}

func TestRadialSingleValueAgrees(t *testing.T) {
	rb, err := NewRadialBasis(5, 2)
	require.NoError(t, err)
	for _, s := range []float64{0.2, 1.7} {
		rt := fillRadial(t, rb, s)
		for n := 0; n <= 5; n++ {
			for l := 0; l <= 2; l++ {
				assert.InDelta(t, rt.Phi[n][l], radialPhiOne(n, l, s), 1e-13)
			}
		}
	}
}

func TestRadialDomainAndConfigErrors(t *testing.T) {
	rb, err := NewRadialBasis(2, 1)
	require.NoError(t, err)
	rt := rb.NewTables()
	err = rb.Fill(-0.5, rt)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = NewRadialBasis(-1, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = NewRadialBasis(MaxOrder+1, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

// The pair (rho_nl, Phi_nl) is bi-orthogonal in n: the radial overlap
// integral vanishes off the diagonal and equals 2/Anl on it.
func TestRadialBiOrthogonality(t *testing.T) {
	const nmax = 3
	rb, err := NewRadialBasis(nmax, 0)
	require.NoError(t, err)
	rt := rb.NewTables()
	for n := 0; n <= nmax; n++ {
		for np := 0; np <= nmax; np++ {
			f := func(u float64) float64 {
				s := u / (1 - u)
				require.NoError(t, rb.Fill(s, rt))
				return rt.Rho[n][0] * rt.Phi[np][0] * s * s / ((1 - u) * (1 - u))
			}
			got, _, ok := integrate1D(f, 0, 1, 1e-11, 4000)
			assert.True(t, ok)
			if n == np {
				assert.InEpsilon(t, 2/Anl(n, 0), got, 1e-7, "n=%d", n)
			} else {
				assert.InDelta(t, 0, got, 1e-8, "n=%d np=%d", n, np)
			}
		}
	}
}
