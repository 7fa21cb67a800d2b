// errors.go --  This file is part of goSCF project.
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
	"errors"
	"fmt"
)

var (
	// ErrDomain marks an out-of-range input: negative radius, |cos(theta)|>1.
	ErrDomain = errors.New("scf: input outside domain")
	// ErrConfiguration marks invalid expansion setup: negative or oversized
	// nmax/lmax, non-positive scales, mismatched particle arrays.
	ErrConfiguration = errors.New("scf: invalid configuration")
	// ErrShapeMismatch marks coefficient arrays whose shapes disagree with
	// each other or with the m <= l structural constraint.
	ErrShapeMismatch = errors.New("scf: coefficient shape mismatch")
)

// MaxOrder bounds nmax and lmax. Above this the Gegenbauer and Legendre
// recurrences start to lose the precision their normalization folding buys.
const MaxOrder = 256

// ConvergenceWarning records one coefficient whose quadrature did not reach
// tolerance within the subdivision budget. The coefficient is still stored,
// with an inflated error estimate.
type ConvergenceWarning struct {
	N, L, M int
	Sine    bool // true if the T (sin m phi) projection, false if S
	ErrEst  float64
}

func (w ConvergenceWarning) String() string {
	name := "S"
	if w.Sine {
		name = "T"
	}
	return fmt.Sprintf("quadrature for %s(%d,%d,%d) not converged, error estimate %.3e",
		name, w.N, w.L, w.M, w.ErrEst)
}

func checkOrder(nmax, lmax int) error {
	if nmax < 0 || lmax < 0 {
		return fmt.Errorf("%w: nmax=%d lmax=%d must be non-negative", ErrConfiguration, nmax, lmax)
	}
	if nmax > MaxOrder || lmax > MaxOrder {
		return fmt.Errorf("%w: nmax=%d lmax=%d exceed the recurrence ceiling %d", ErrConfiguration, nmax, lmax, MaxOrder)
	}
	return nil
}

func checkScales(mass, rs float64) error {
	if !(mass > 0) || !(rs > 0) {
		return fmt.Errorf("%w: mass=%g rscale=%g must be strictly positive", ErrConfiguration, mass, rs)
	}
	return nil
}
