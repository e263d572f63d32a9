// Command gentables converts the WMO BUFR table publications from their XML
// form into the CSV catalogue files this library loads.
//
// The inputs are the files published by WMO (BUFRCREX_TableB_en.xml and
// BUFR_TableD_en.xml). The outputs are table_b.csv and table_d.csv in the
// layout parsed by bufr.LoadTables and embedded as the builtin catalogue.
//
// Usage:
//
//	gentables -b BUFRCREX_TableB_en.xml -d BUFR_TableD_en.xml -o tables/
package main

import (
	"encoding/csv"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func main() {
	bIn := flag.String("b", "", "WMO Table B XML (BUFRCREX_TableB_en.xml)")
	dIn := flag.String("d", "", "WMO Table D XML (BUFR_TableD_en.xml)")
	outDir := flag.String("o", ".", "Output directory for table_b.csv and table_d.csv")
	flag.Parse()

	if *bIn == "" || *dIn == "" {
		fmt.Fprintln(os.Stderr, "error: both -b and -d are required")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := convertTableB(*bIn, filepath.Join(*outDir, "table_b.csv")); err != nil {
		fatalf("table B: %v", err)
	}
	if err := convertTableD(*dIn, filepath.Join(*outDir, "table_d.csv")); err != nil {
		fatalf("table D: %v", err)
	}
}

// tableBRecord mirrors one <BUFRCREX_TableB_en> entry in the WMO file.
type tableBRecord struct {
	FXY       string `xml:"FXY"`
	Name      string `xml:"ElementName_en"`
	Units     string `xml:"BUFR_Unit"`
	Scale     string `xml:"BUFR_Scale"`
	Reference string `xml:"BUFR_ReferenceValue"`
	Width     string `xml:"BUFR_DataWidth_Bits"`
}

func convertTableB(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := make(map[string][]string)
	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "BUFRCREX_TableB_en" {
			continue
		}
		var rec tableBRecord
		if err := dec.DecodeElement(&rec, &start); err != nil {
			return err
		}
		if rec.FXY == "" || rec.Width == "" {
			continue // deprecated entries carry no BUFR columns
		}
		scale := rec.Scale
		if scale == "" {
			scale = "0"
		}
		ref := rec.Reference
		if ref == "" {
			ref = "0"
		}
		rows[rec.FXY] = []string{rec.FXY, rec.Width, scale, ref, rec.Units, rec.Name}
	}

	return writeCSV(out, []string{"fxy", "width_bits", "scale", "reference", "units", "name"}, rows)
}

// tableDRecord mirrors one <BUFR_TableD_en> entry: a single (FXY1, FXY2)
// pair; consecutive pairs with the same FXY1 form the sequence.
type tableDRecord struct {
	FXY1  string `xml:"FXY1"`
	FXY2  string `xml:"FXY2"`
	Title string `xml:"Title_en"`
}

func convertTableD(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	titles := make(map[string]string)
	elements := make(map[string][]string)
	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "BUFR_TableD_en" {
			continue
		}
		var rec tableDRecord
		if err := dec.DecodeElement(&rec, &start); err != nil {
			return err
		}
		if rec.FXY1 == "" || rec.FXY2 == "" {
			continue
		}
		if _, seen := titles[rec.FXY1]; !seen {
			titles[rec.FXY1] = rec.Title
		}
		elements[rec.FXY1] = append(elements[rec.FXY1], rec.FXY2)
	}

	rows := make(map[string][]string, len(elements))
	for fxy, elems := range elements {
		rows[fxy] = []string{fxy, titles[fxy], strings.Join(elems, " ")}
	}

	return writeCSV(out, []string{"fxy", "name", "elements"}, rows)
}

// writeCSV emits the header and the rows sorted by descriptor so the output
// is reproducible.
func writeCSV(path string, header []string, rows map[string][]string) error {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, k := range keys {
		if err := w.Write(rows[k]); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "gentables: "+format+"\n", args...)
	os.Exit(1)
}
