// models.go --  This file is part of goSCF project.
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

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Built-in analytic density models, in the DensityFunc form the estimator
// consumes. All are spherical; they serve as inputs, initial guesses and
// test fixtures.

// HernquistDensity is rho(r) = m/(2 pi rs^3) * 1/(s (1+s)^3), s = r/rs:
// the zeroth basis member, so expanding it must give S_000 = 1 when the
// estimator is run with the same mass and length scales.
func HernquistDensity(m, rs float64) DensityFunc {
	return func(x, y, z float64, _ ...float64) float64 {
		s := math.Sqrt(x*x+y*y+z*z) / rs
		return m / (2 * math.Pi * rs * rs * rs) / (s * math.Pow(1+s, 3))
	}
}

// PlummerDensity is rho(r) = 3m/(4 pi rs^3) * (1+s^2)^(-5/2).
func PlummerDensity(m, rs float64) DensityFunc {
	return func(x, y, z float64, _ ...float64) float64 {
		s := math.Sqrt(x*x+y*y+z*z) / rs
		return 3 * m / (4 * math.Pi * rs * rs * rs) * math.Pow(1+s*s, -2.5)
	}
}

// TwoPowerDensity is the unnormalized double power law
// rho(r) = 1/(s^a (1+s)^(b-a)), inner slope a, outer slope b.
func TwoPowerDensity(a, b, rs float64) DensityFunc {
	return func(x, y, z float64, _ ...float64) float64 {
		s := math.Sqrt(x*x+y*y+z*z) / rs
		return 1 / (math.Pow(s, a) * math.Pow(1+s, b-a))
	}
}

// SampleHernquist draws n equal-mass particles from the Hernquist profile
// with total mass 1 and scale radius rs. The radius comes from the analytic
// inverse of the enclosed-mass fraction q = s^2/(1+s)^2; angles are
// isotropic. Deterministic for a fixed source.
func SampleHernquist(n int, rs float64, src rand.Source) ([][3]float64, []float64) {
	uq := distuv.Uniform{Min: 0, Max: 1, Src: src}
	ux := distuv.Uniform{Min: -1, Max: 1, Src: src}
	uphi := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}

	pos := make([][3]float64, n)
	masses := make([]float64, n)
	w := 1 / float64(n)
	for i := 0; i < n; i++ {
		sq := math.Sqrt(uq.Rand())
		s := sq / (1 - sq)
		X := ux.Rand()
		phi := uphi.Rand()
		sinth := math.Sqrt(1 - X*X)
		r := rs * s
		pos[i] = [3]float64{
			r * sinth * math.Cos(phi),
			r * sinth * math.Sin(phi),
			r * X,
		}
		masses[i] = w
	}
	return pos, masses
}
