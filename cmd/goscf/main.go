// main.go --  This file is part of goSCF project.
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
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	scf "example.com/goscf"
)

var (
	WarningLogger *log.Logger
	InfoLogger    *log.Logger
	ErrorLogger   *log.Logger
	OutputLogger  *log.Logger
)

func initLog(fname string) {
	file, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal(err)
	}

	InfoLogger = log.New(file, "INFO: ", log.Ldate|log.Ltime)
	WarningLogger = log.New(file, "WARNING: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(file, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	OutputLogger = log.New(file, "", 0)
}

func appInfo() {
	OutputLogger.Print("\n              ____  ___  ____    |\n             / ___|/ __\\|  __|   |" +
		" Author: Mirzaeva Irina Valerievna\n   __    ___ \\___ \\ |   | |__    | email: dairdre@gmail.com\n" +
		" /'_ `\\ / _ \\ ___) | |__ |  _|   | Nikolaev Institute of Inorganic Chemistry SB RAS" +
		" (http://niic.nsc.ru/)\n/\\ \\L\\ \\ (_) |____/\\___/ |_|     | Novosibirsk, Russia" +
		"\n\\ \\____ \\___/                    | SCF stands for Self-Consistent Field\n \\/___L\\ \\" +
		"                       | Have Fun!!!\n   /\\____/                       |\n   \\_/__/                        |\n\n\n")
}

func printOutputDelimiter() {
	OutputLogger.Println(strings.Repeat("-", 70))
}

type runConfig struct {
	nmax, lmax   int
	mass, rscale float64
	model        scf.DensityFunc
	modelName    string
	skipM, sOnly bool
	outTable     string
	particleFile string
}

var modelNames = []string{"hernquist", "plummer", "twopower"}

func parseFloats(words []string) []float64 {
	res := make([]float64, 0, len(words))
	for _, w := range words {
		v, err := strconv.ParseFloat(w, 64)
		if err != nil {
			ErrorLogger.Fatal("Cannot parse number: ", w)
		}
		res = append(res, v)
	}
	return res
}

func processInput(data []string) runConfig {
	cfg := runConfig{nmax: 6, lmax: 0, mass: 1, rscale: 1, outTable: "coeffs.txt"}
	var haveModel bool
	for i := 0; i < len(data); i++ {
		words := strings.Fields(data[i])
		if len(words) == 0 {
			continue
		}
		switch strings.ToLower(words[0]) {
		case "expansion":
			end := findBlockEnd(i, data, "Expansion")
			OutputLogger.Print("Parsing input. Expansion block found at lines ", i, " -- ", end, ".")
			for j := i + 1; j < end; j++ {
				w := strings.Fields(data[j])
				if len(w) < 2 {
					continue
				}
				switch strings.ToLower(w[0]) {
				case "nmax":
					cfg.nmax, _ = strconv.Atoi(w[1])
				case "lmax":
					cfg.lmax, _ = strconv.Atoi(w[1])
				case "mass":
					cfg.mass, _ = strconv.ParseFloat(w[1], 64)
				case "rscale":
					cfg.rscale, _ = strconv.ParseFloat(w[1], 64)
				case "skip_m":
					cfg.skipM = true
				case "s_only":
					cfg.sOnly = true
				}
			}
			i = end
		case "model":
			end := findBlockEnd(i, data, "Model")
			w := strings.Fields(data[i+1])
			if len(w) == 0 || slices.Index(modelNames, strings.ToLower(w[0])) < 0 {
				ErrorLogger.Fatal("Model block must name one of ", modelNames)
			}
			cfg.modelName = strings.ToLower(w[0])
			pars := parseFloats(w[1:])
			switch cfg.modelName {
			case "hernquist":
				cfg.model = scf.HernquistDensity(pars[0], pars[1])
				cfg.mass, cfg.rscale = pars[0], pars[1]
			case "plummer":
				cfg.model = scf.PlummerDensity(pars[0], pars[1])
				cfg.mass, cfg.rscale = pars[0], pars[1]
			case "twopower":
				cfg.model = scf.TwoPowerDensity(pars[0], pars[1], pars[2])
				cfg.rscale = pars[2]
			}
			haveModel = true
			OutputLogger.Print("Parsing input. Model block found: ", cfg.modelName, " ", pars)
			i = end
		case "particles":
			if len(words) < 2 {
				ErrorLogger.Fatal("Particles directive needs a file name.")
			}
			cfg.particleFile = words[1]
			OutputLogger.Print("Parsing input. Particle file: " + cfg.particleFile)
		case "output":
			cfg.outTable = strings.Fields(data[i])[1]
		case "nprocs":
			nprocs, _ := strconv.Atoi(words[1])
			runtime.GOMAXPROCS(nprocs)
			OutputLogger.Print("Parsing input. Number of threads set to " + words[1] + ".")
		}
	}
	if !haveModel && cfg.particleFile == "" {
		ErrorLogger.Fatal("Parsing input. Neither a Model block nor a Particles file found.")
	}
	return cfg
}

// readParticles parses a particle file with one "x y z mass" row per line.
func readParticles(fname string) ([][3]float64, []float64) {
	lines, err := scf.ReadFileLines(fname)
	if err != nil {
		ErrorLogger.Fatal("Cannot read particle file: ", err)
	}
	var pos [][3]float64
	var masses []float64
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		if len(words) != 4 {
			ErrorLogger.Fatal("Particle row must be 'x y z mass', got: ", line)
		}
		v := parseFloats(words)
		pos = append(pos, [3]float64{v[0], v[1], v[2]})
		masses = append(masses, v[3])
	}
	return pos, masses
}

func findBlockEnd(n int, data []string, bname string) int {
	for i := n; i < len(data); i++ {
		words := strings.Fields(data[i])
		if len(words) > 0 {
			if strings.ToLower(words[0]) == "end" {
				return i
			}
		}
	}
	ErrorLogger.Fatal("No end of block " + bname + ".")
	return 0
}

func main() {
	var inpFname, outFname string
	if len(os.Args) > 1 {
		inpFname = os.Args[1]
		splitInpFname := strings.Split(inpFname, ".")
		fExt := splitInpFname[len(splitInpFname)-1]
		outFname = inpFname[0:(len(inpFname)-len(fExt))] + "out"
		fmt.Println("Output file: ", outFname)
	} else {
		log.Fatal("No input file.")
	}

	initLog(outFname)

	InfoLogger.Println("Starting goSCF...")
	appInfo()
	OutputLogger.Print("\n\n")

	OutputLogger.Println("Input file content:")
	printOutputDelimiter()
	inpData, err := scf.ReadFileLines(inpFname)
	if err != nil {
		ErrorLogger.Fatal("Cannot read input file: ", err)
	}
	for _, line := range inpData {
		OutputLogger.Println(line)
	}
	printOutputDelimiter()

	cfg := processInput(inpData)

	OutputLogger.Println("Expansion orders: nmax =", cfg.nmax, " lmax =", cfg.lmax)
	var tab *scf.CoeffTable
	if cfg.particleFile != "" {
		pos, masses := readParticles(cfg.particleFile)
		OutputLogger.Println("Discrete mode:", len(pos), "particles")
		opts := &scf.Options{SkipM: cfg.skipM, SOnly: cfg.sOnly, ErrEst: true}
		tab, err = scf.ComputeCoeffsDiscrete(pos, masses, cfg.nmax, cfg.lmax, cfg.mass, cfg.rscale, opts)
		if err != nil {
			ErrorLogger.Fatal("Coefficient estimation failed: ", err)
		}
		OutputLogger.Println("Coefficient estimation done.")
	} else {
		done := 0
		opts := &scf.Options{
			SkipM: cfg.skipM,
			SOnly: cfg.sOnly,
			Progress: func(n, l, m int) {
				done++
				fmt.Printf("\rcoefficient (%d,%d,%d) done [%d]", n, l, m, done)
			},
		}
		var warns []scf.ConvergenceWarning
		tab, warns, err = scf.ComputeCoeffs(cfg.model, cfg.nmax, cfg.lmax, cfg.mass, cfg.rscale, opts)
		if err != nil {
			ErrorLogger.Fatal("Coefficient estimation failed: ", err)
		}
		fmt.Println()
		for _, w := range warns {
			WarningLogger.Println(w.String())
		}
		OutputLogger.Println("Coefficient estimation done. Convergence warnings:", len(warns))
	}
	printOutputDelimiter()
	for n := 0; n <= cfg.nmax; n++ {
		OutputLogger.Printf("S[%d][0][0] = %14.8f +- %.2e", n, tab.S[n][0][0], tab.SErr[n][0][0])
	}
	printOutputDelimiter()

	if err := tab.Save(cfg.outTable); err != nil {
		ErrorLogger.Fatal("Cannot write coefficient table: ", err)
	}
	OutputLogger.Println("Coefficient table written to", cfg.outTable)

	// quick sanity check: reconstructed density at the scale radius
	ev, err := scf.NewEvaluator(tab)
	if err != nil {
		ErrorLogger.Fatal("Evaluator construction failed: ", err)
	}
	pt := [][3]float64{{cfg.rscale, 0, 0}}
	got := ev.Density(pt)[0]
	if cfg.model != nil {
		want := cfg.model(cfg.rscale, 0, 0)
		OutputLogger.Printf("rho(r_s): model %14.8g  reconstructed %14.8g", want, got)
		fmt.Printf("rho(r_s): model %g, reconstructed %g\n", want, got)
	} else {
		OutputLogger.Printf("rho(r_s): reconstructed %14.8g", got)
		fmt.Printf("rho(r_s): reconstructed %g\n", got)
	}

	InfoLogger.Println("Exiting goSCF...")
	fmt.Println("goSCF done.")
}
