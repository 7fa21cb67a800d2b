// discrete_test.go --  This file is part of goSCF project.
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
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func TestSampleHernquist(t *testing.T) {
	pos, masses := SampleHernquist(20000, 2.0, rand.NewSource(42))
	require.Len(t, pos, 20000)
	require.Len(t, masses, 20000)
	assert.InDelta(t, 1.0, floats.Sum(masses), 1e-12)

	radii := make([]float64, len(pos))
	for i, p := range pos {
		radii[i] = math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
	}
	sort.Float64s(radii)
	// half-mass radius of the Hernquist profile is (1+sqrt 2) r_s
	med := stat.Quantile(0.5, stat.Empirical, radii, nil)
	assert.InDelta(t, (1+math.Sqrt2)*2.0, med, 0.3)
}

func TestDiscreteHernquistConverges(t *testing.T) {
	var lastErr float64
	for i, n := range []int{1000, 10000, 100000} {
		pos, masses := SampleHernquist(n, 1, rand.NewSource(uint64(i+1)))
		tab, err := ComputeCoeffsDiscrete(pos, masses, 2, 0, 1, 1, &Options{ErrEst: true})
		require.NoError(t, err)

		// shot noise brackets the deviation from the analytic coefficients
		se := tab.SErr[0][0][0]
		require.Greater(t, se, 0.0)
		assert.InDelta(t, 1.0, tab.S[0][0][0], 6*se, "N=%d", n)
		for nn := 1; nn <= 2; nn++ {
			assert.InDelta(t, 0.0, tab.S[nn][0][0], 6*tab.SErr[nn][0][0], "N=%d n=%d", n, nn)
		}
		assert.Equal(t, 0.0, tab.T[0][0][0])

		// jackknife errors shrink like 1/sqrt(N)
		if i > 0 {
			assert.Less(t, se, lastErr, "N=%d", n)
		}
		lastErr = se
	}
}

func TestDiscreteAgainstAnalyticQuadrature(t *testing.T) {
	rho := HernquistDensity(1, 1)
	want, _, err := ComputeCoeffs(rho, 1, 1, 1, 1, &Options{Tol: 1e-8})
	require.NoError(t, err)

	pos, masses := SampleHernquist(50000, 1, rand.NewSource(7))
	got, err := ComputeCoeffsDiscrete(pos, masses, 1, 1, 1, 1, &Options{ErrEst: true})
	require.NoError(t, err)

	for n := 0; n <= 1; n++ {
		for l := 0; l <= 1; l++ {
			for m := 0; m <= l; m++ {
				tol := 6*got.SErr[n][l][m] + 1e-6
				assert.InDelta(t, want.S[n][l][m], got.S[n][l][m], tol, "S n=%d l=%d m=%d", n, l, m)
			}
		}
	}
}

func TestDiscreteInputErrors(t *testing.T) {
	pos := [][3]float64{{1, 0, 0}, {0, 1, 0}}
	_, err := ComputeCoeffsDiscrete(pos, []float64{0.5}, 1, 1, 1, 1, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = ComputeCoeffsDiscrete(nil, nil, 1, 1, 1, 1, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = ComputeCoeffsDiscrete(pos, []float64{0.5, 0.5}, 1, 1, 0, 1, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDiscreteSkipMAndSOnly(t *testing.T) {
	pos, masses := SampleHernquist(500, 1, rand.NewSource(3))

	tab, err := ComputeCoeffsDiscrete(pos, masses, 1, 2, 1, 1, &Options{SkipM: true})
	require.NoError(t, err)
	for n := 0; n <= 1; n++ {
		for l := 0; l <= 2; l++ {
			for m := 1; m <= l; m++ {
				assert.Equal(t, 0.0, tab.S[n][l][m])
				assert.Equal(t, 0.0, tab.T[n][l][m])
			}
		}
	}

	tab, err = ComputeCoeffsDiscrete(pos, masses, 1, 2, 1, 1, &Options{SOnly: true})
	require.NoError(t, err)
	for n := 0; n <= 1; n++ {
		for l := 0; l <= 2; l++ {
			for m := 0; m <= l; m++ {
				assert.Equal(t, 0.0, tab.T[n][l][m])
				if m > 0 {
					assert.NotEqual(t, 0.0, tab.S[n][l][m])
				}
			}
		}
	}
}

func TestDiscreteFewParticles(t *testing.T) {
	// fewer particles than the requested jackknife blocks
	pos, masses := SampleHernquist(5, 1, rand.NewSource(9))
	tab, err := ComputeCoeffsDiscrete(pos, masses, 0, 0, 1, 1, &Options{ErrEst: true})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(tab.S[0][0][0]))
	assert.False(t, math.IsNaN(tab.SErr[0][0][0]))
}
