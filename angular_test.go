// angular_test.go --  This file is part of goSCF project.
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

func fillAngular(t *testing.T, ab *AngularBasis, X float64) *AngularTables {
	t.Helper()
	at := ab.NewTables()
	require.NoError(t, ab.Fill(X, at))
	return at
}

func TestLegendreClosedForms(t *testing.T) {
	ab, err := NewAngularBasis(2)
	require.NoError(t, err)
	for _, X := range []float64{-0.8, 0.0, 0.3, 0.95} {
		sin := math.Sqrt(1 - X*X)
		at := fillAngular(t, ab, X)
		assert.InDelta(t, math.Sqrt(1/(4*math.Pi)), at.P[0][0], 1e-15)
		assert.InDelta(t, math.Sqrt(3/(4*math.Pi))*X, at.P[1][0], 1e-14)
		assert.InDelta(t, math.Sqrt(3/(8*math.Pi))*sin, at.P[1][1], 1e-14)
		assert.InDelta(t, math.Sqrt(5/(16*math.Pi))*(3*X*X-1), at.P[2][0], 1e-14)
		assert.InDelta(t, math.Sqrt(15/(8*math.Pi))*X*sin, at.P[2][1], 1e-14)
		assert.InDelta(t, math.Sqrt(15/(32*math.Pi))*sin*sin, at.P[2][2], 1e-14)
	}
}

func TestLegendreNormalization(t *testing.T) {
	// integral of P~_lm^2 over X in [-1,1] is 1/(2 pi)
	for _, lm := range [][2]int{{0, 0}, {3, 2}, {5, 0}, {7, 7}} {
		l, m := lm[0], lm[1]
		f := func(X float64) float64 {
			p := plmOne(l, m, X)
			return p * p
		}
		got, _, ok := integrate1D(f, -1, 1, 1e-12, 1000)
		assert.True(t, ok)
		assert.InEpsilon(t, 1/(2*math.Pi), got, 1e-10, "l=%d m=%d", l, m)
	}
}

func TestLegendreDerivativesFiniteDiff(t *testing.T) {
	ab, err := NewAngularBasis(6)
	require.NoError(t, err)
	h := 1e-6
	for _, theta := range []float64{0.4, 1.1, 2.5} {
		at := fillAngular(t, ab, math.Cos(theta))
		hi := fillAngular(t, ab, math.Cos(theta+h))
		lo := fillAngular(t, ab, math.Cos(theta-h))
		for l := 0; l <= 6; l++ {
			for m := 0; m <= l; m++ {
				fd1 := (hi.P[l][m] - lo.P[l][m]) / (2 * h)
				assert.InDelta(t, fd1, at.DP[l][m], 1e-7*(1+math.Abs(fd1)),
					"dP l=%d m=%d theta=%g", l, m, theta)
				fd2 := (hi.DP[l][m] - lo.DP[l][m]) / (2 * h)
				assert.InDelta(t, fd2, at.D2P[l][m], 1e-6*(1+math.Abs(fd2)),
					"d2P l=%d m=%d theta=%g", l, m, theta)
			}
		}
	}
}

func TestLegendreAxisRegularRatio(t *testing.T) {
	ab, err := NewAngularBasis(5)
	require.NoError(t, err)
	X := 0.6
	sin := math.Sqrt(1 - X*X)
	at := fillAngular(t, ab, X)
	for l := 1; l <= 5; l++ {
		for m := 1; m <= l; m++ {
			assert.InDelta(t, at.P[l][m], at.R[l][m]*sin, 1e-14, "l=%d m=%d", l, m)
		}
	}
}

func TestLegendrePolesFinite(t *testing.T) {
	ab, err := NewAngularBasis(8)
	require.NoError(t, err)
	for _, X := range []float64{1, -1} {
		at := fillAngular(t, ab, X)
		for l := 0; l <= 8; l++ {
			for m := 0; m <= l; m++ {
				for _, v := range []float64{at.P[l][m], at.DP[l][m], at.D2P[l][m], at.R[l][m]} {
					assert.False(t, math.IsNaN(v) || math.IsInf(v, 0),
						"X=%g l=%d m=%d", X, l, m)
				}
				if m > 0 {
					// sin^m kills every m>0 function on the axis
					assert.Equal(t, 0.0, at.P[l][m])
				}
			}
		}
	}
}

func TestLegendreDomainError(t *testing.T) {
	ab, err := NewAngularBasis(2)
	require.NoError(t, err)
	at := ab.NewTables()
	assert.ErrorIs(t, ab.Fill(1.001, at), ErrDomain)
	assert.ErrorIs(t, ab.Fill(-2, at), ErrDomain)
	// within clamp tolerance is fine
	assert.NoError(t, ab.Fill(1+1e-14, at))
}

func TestLegendreHighOrderNoOverflow(t *testing.T) {
	ab, err := NewAngularBasis(200)
	require.NoError(t, err)
	at := fillAngular(t, ab, 0.37)
	for l := 0; l <= 200; l++ {
		for m := 0; m <= l; m++ {
			v := at.P[l][m]
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "l=%d m=%d", l, m)
			// normalized functions stay modest in magnitude
			assert.Less(t, math.Abs(v), 100.0, "l=%d m=%d", l, m)
		}
	}
}
