// table.go --  This file is part of goSCF project.
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
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CoeffTable holds one expansion instance: S and T coefficients and their
// estimated standard errors, indexed [n][l][m] with m slices of length l+1
// (entries with m > l do not exist). A table is written once by an estimator
// and read-only afterwards; evaluators never mutate it.
type CoeffTable struct {
	Nmax, Lmax   int
	Mass, RScale float64

	S, T       [][][]float64
	SErr, TErr [][][]float64
}

func newCoeffArray(nmax, lmax int) [][][]float64 {
	a := make([][][]float64, nmax+1)
	for n := range a {
		a[n] = make([][]float64, lmax+1)
		for l := range a[n] {
			a[n][l] = make([]float64, l+1)
		}
	}
	return a
}

// NewCoeffTable allocates a zeroed table for the given orders and scales.
func NewCoeffTable(nmax, lmax int, mass, rs float64) (*CoeffTable, error) {
	if err := checkOrder(nmax, lmax); err != nil {
		return nil, err
	}
	if err := checkScales(mass, rs); err != nil {
		return nil, err
	}
	return &CoeffTable{
		Nmax: nmax, Lmax: lmax,
		Mass: mass, RScale: rs,
		S:    newCoeffArray(nmax, lmax),
		T:    newCoeffArray(nmax, lmax),
		SErr: newCoeffArray(nmax, lmax),
		TErr: newCoeffArray(nmax, lmax),
	}, nil
}

func checkArrayShape(a [][][]float64, nmax, lmax int) bool {
	if len(a) != nmax+1 {
		return false
	}
	for _, byL := range a {
		if len(byL) != lmax+1 {
			return false
		}
		for l, byM := range byL {
			if len(byM) != l+1 {
				return false
			}
		}
	}
	return true
}

// Validate checks that every array obeys the [n][l][m<=l] structure.
func (t *CoeffTable) Validate() error {
	if err := checkOrder(t.Nmax, t.Lmax); err != nil {
		return err
	}
	if err := checkScales(t.Mass, t.RScale); err != nil {
		return err
	}
	if !checkArrayShape(t.S, t.Nmax, t.Lmax) || !checkArrayShape(t.T, t.Nmax, t.Lmax) {
		return fmt.Errorf("%w: S/T not shaped [0..%d][0..%d][0..l]", ErrShapeMismatch, t.Nmax, t.Lmax)
	}
	if t.SErr != nil && !checkArrayShape(t.SErr, t.Nmax, t.Lmax) {
		return fmt.Errorf("%w: SErr shape disagrees with S", ErrShapeMismatch)
	}
	if t.TErr != nil && !checkArrayShape(t.TErr, t.Nmax, t.Lmax) {
		return fmt.Errorf("%w: TErr shape disagrees with T", ErrShapeMismatch)
	}
	return nil
}

// Save writes the table as a whitespace-column text file: one header line
//
//	goSCF nmax lmax mass rscale
//
// then one row per coefficient, n outer, l middle, m inner:
//
//	n l m S T SErr TErr
//
// Rows with m > l are never written.
func (t *CoeffTable) Save(fname string) error {
	if err := t.Validate(); err != nil {
		return err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "goSCF %d %d %.17g %.17g\n", t.Nmax, t.Lmax, t.Mass, t.RScale)
	for n := 0; n <= t.Nmax; n++ {
		for l := 0; l <= t.Lmax; l++ {
			for m := 0; m <= l; m++ {
				se, te := 0.0, 0.0
				if t.SErr != nil {
					se = t.SErr[n][l][m]
				}
				if t.TErr != nil {
					te = t.TErr[n][l][m]
				}
				fmt.Fprintf(&sb, "%d %d %d %.17g %.17g %.17g %.17g\n",
					n, l, m, t.S[n][l][m], t.T[n][l][m], se, te)
			}
		}
	}
	return os.WriteFile(fname, []byte(sb.String()), 0644)
}

// ReadFileLines reads a whole text file into a slice of lines.
func ReadFileLines(fname string) ([]string, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var result []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result, scanner.Err()
}

// LoadCoeffTable reads a file written by Save. Rows whose m exceeds l are
// skipped, never trusted as data; a missing coefficient row is an error.
func LoadCoeffTable(fname string) (*CoeffTable, error) {
	lines, err := ReadFileLines(fname)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrShapeMismatch, fname)
	}
	head := strings.Fields(lines[0])
	if len(head) != 5 || head[0] != "goSCF" {
		return nil, fmt.Errorf("%w: %s: bad header %q", ErrShapeMismatch, fname, lines[0])
	}
	nmax, err1 := strconv.Atoi(head[1])
	lmax, err2 := strconv.Atoi(head[2])
	mass, err3 := strconv.ParseFloat(head[3], 64)
	rs, err4 := strconv.ParseFloat(head[4], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, fmt.Errorf("%w: %s: unparseable header %q", ErrShapeMismatch, fname, lines[0])
	}
	tab, err := NewCoeffTable(nmax, lmax, mass, rs)
	if err != nil {
		return nil, err
	}

	seen := 0
	want := (nmax + 1) * (lmax + 1) * (lmax + 2) / 2
	for _, line := range lines[1:] {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		if len(words) != 7 {
			return nil, fmt.Errorf("%w: %s: bad row %q", ErrShapeMismatch, fname, line)
		}
		n, e1 := strconv.Atoi(words[0])
		l, e2 := strconv.Atoi(words[1])
		m, e3 := strconv.Atoi(words[2])
		if e1 != nil || e2 != nil || e3 != nil {
			return nil, fmt.Errorf("%w: %s: bad indices in %q", ErrShapeMismatch, fname, line)
		}
		if n < 0 || n > nmax || l < 0 || l > lmax || m < 0 {
			return nil, fmt.Errorf("%w: %s: indices (%d,%d,%d) out of range", ErrShapeMismatch, fname, n, l, m)
		}
		if m > l {
			continue // sentinel row, structurally absent entry
		}
		vals := make([]float64, 4)
		for i, w := range words[3:] {
			v, e := strconv.ParseFloat(w, 64)
			if e != nil {
				return nil, fmt.Errorf("%w: %s: bad value in %q", ErrShapeMismatch, fname, line)
			}
			vals[i] = v
		}
		tab.S[n][l][m] = vals[0]
		tab.T[n][l][m] = vals[1]
		tab.SErr[n][l][m] = vals[2]
		tab.TErr[n][l][m] = vals[3]
		seen++
	}
	if seen != want {
		return nil, fmt.Errorf("%w: %s: got %d coefficient rows, want %d", ErrShapeMismatch, fname, seen, want)
	}
	return tab, nil
}
