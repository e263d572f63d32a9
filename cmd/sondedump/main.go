// Command sondedump extracts the 3-09-052 radiosonde sounding from a BUFR
// file and prints the station metadata and the ascent profile.
//
// Usage:
//
//	sondedump <file>
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/geal-ai/bufr"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: sondedump <file>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: exactly one input file is required")
		os.Exit(2)
	}

	snd, err := bufr.LoadSounding(flag.Arg(0), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sondedump: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("---------- Sounding ----------")
	if snd.StationBlock >= 0 && snd.StationNumber >= 0 {
		fmt.Printf("    Station:  %02d%03d\n", snd.StationBlock, snd.StationNumber)
	}
	if snd.StationID != "" {
		fmt.Printf(" Station ID:  %s\n", snd.StationID)
	}
	fmt.Printf("Launch Time:  %s\n", snd.LaunchTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("   Location:  %.5f, %.5f (elev %.1f m)\n", snd.LatitudeDeg, snd.LongitudeDeg, snd.StationHeightM)
	if !math.IsNaN(snd.SeaTemperatureK) {
		fmt.Printf("    Sea Tmp:  %.2f K\n", snd.SeaTemperatureK)
	}
	fmt.Println()

	fmt.Printf("%10s %10s %8s %8s %7s %7s\n", "P (hPa)", "Hgt (gpm)", "T (K)", "Td (K)", "Dir", "Spd")
	for _, lvl := range snd.TopDown() {
		fmt.Printf("%10s %10s %8s %8s %7s %7s\n",
			fmtVal(lvl.PressurePa/100, 1),
			fmtVal(lvl.HeightGpm, 0),
			fmtVal(lvl.TemperatureK, 2),
			fmtVal(lvl.DewPointK, 2),
			fmtVal(lvl.WindDirDeg, 0),
			fmtVal(lvl.WindSpeedMPS, 1))
	}
	fmt.Println("------------------------------")

	if len(snd.Shear) > 0 {
		fmt.Println()
		fmt.Printf("%12s %10s %10s\n", "t+ (s)", "Shr below", "Shr above")
		for _, sh := range snd.Shear {
			fmt.Printf("%12s %10s %10s\n",
				fmtVal(sh.TimeOffsetSec, 0),
				fmtVal(sh.ShearBelowMPS, 1),
				fmtVal(sh.ShearAboveMPS, 1))
		}
	}
}

// fmtVal renders a possibly-missing value.
func fmtVal(v float64, prec int) string {
	if math.IsNaN(v) {
		return "---"
	}
	return fmt.Sprintf("%.*f", prec, v)
}
