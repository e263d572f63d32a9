// Command bufrdump prints a structured summary of every BUFR message in a
// file: the section 0-3 metadata followed by the decoded data tree.
//
// Usage:
//
//	bufrdump [flags] <file>
//
// Examples:
//
//	bufrdump sounding.bufr
//	bufrdump -tables-b table_b.csv.zst -tables-d table_d.csv.zst feed.bin
//	bufrdump -local local_tables.yaml feed.bin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/geal-ai/bufr"
)

func main() {
	tablesB := flag.String("tables-b", "", "External Table B CSV (.csv, .csv.gz or .csv.zst); default: builtin")
	tablesD := flag.String("tables-d", "", "External Table D CSV (.csv, .csv.gz or .csv.zst); default: builtin")
	local := flag.String("local", "", "YAML local-table overlay merged over the catalogue")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: exactly one input file is required")
		usage()
		os.Exit(2)
	}

	tables, err := loadTables(*tablesB, *tablesD, *local)
	if err != nil {
		fatalf("loading tables: %v", err)
	}

	msgs, err := bufr.ReadFile(flag.Arg(0), tables)
	if err != nil {
		fatalf("%v", err)
	}

	for i, msg := range msgs {
		fmt.Printf("=============== Message %d (fingerprint %016x) ===============\n", i, msg.Fingerprint())
		fmt.Println(msg)
	}
}

func loadTables(bPath, dPath, localPath string) (*bufr.Tables, error) {
	var tables *bufr.Tables
	var err error

	switch {
	case bPath == "" && dPath == "":
		tables = bufr.Builtin()
	case bPath != "" && dPath != "":
		if tables, err = bufr.LoadTables(bPath, dPath); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("-tables-b and -tables-d must be given together")
	}

	if localPath != "" {
		if tables, err = bufr.LoadLocalTables(localPath, tables); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bufrdump [flags] <file>")
	flag.PrintDefaults()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "bufrdump: "+format+"\n", args...)
	os.Exit(1)
}
