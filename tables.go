package bufr

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// TableBEntry defines one element descriptor: how wide its Section 4 field
// is and how the raw unsigned value maps to a physical one,
// physical = (raw + Reference) / 10^Scale.
type TableBEntry struct {
	FXY       string
	Name      string
	Units     string
	Scale     int
	Reference int64
	WidthBits int
}

// TableDEntry defines one sequence descriptor as an ordered list of child
// descriptors in canonical string form.
type TableDEntry struct {
	FXY      string
	Name     string
	Elements []string
}

// Tables is an immutable Table B + Table D catalogue. A single Tables value
// may be shared by any number of concurrent decodes.
type Tables struct {
	b map[string]TableBEntry
	d map[string]TableDEntry
}

// ElementEntry looks up an element definition by canonical descriptor string.
func (t *Tables) ElementEntry(fxy string) (TableBEntry, bool) {
	e, ok := t.b[fxy]
	return e, ok
}

// SequenceEntry looks up a sequence definition by canonical descriptor string.
func (t *Tables) SequenceEntry(fxy string) (TableDEntry, bool) {
	e, ok := t.d[fxy]
	return e, ok
}

// NumElements returns the number of Table B entries in the catalogue.
func (t *Tables) NumElements() int { return len(t.b) }

// NumSequences returns the number of Table D entries in the catalogue.
func (t *Tables) NumSequences() int { return len(t.d) }

//go:embed tables/table_b.csv tables/table_d.csv
var tableData embed.FS

var builtinTables = sync.OnceValue(func() *Tables {
	bf, err := tableData.Open("tables/table_b.csv")
	if err != nil {
		panic(fmt.Sprintf("embedded table B: %v", err))
	}
	defer bf.Close()
	df, err := tableData.Open("tables/table_d.csv")
	if err != nil {
		panic(fmt.Sprintf("embedded table D: %v", err))
	}
	defer df.Close()

	t, err := parseTables(bf, df)
	if err != nil {
		panic(fmt.Sprintf("embedded tables: %v", err))
	}
	return t
})

// Builtin returns the catalogue embedded in the library: the Table B classes
// and Table D sequences exercised by radiosonde (TEMP) messages. The value
// is parsed once and shared; it must not be mutated.
func Builtin() *Tables { return builtinTables() }

// LoadTables reads external Table B and Table D catalogues in the CSV layout
// produced by cmd/gentables. Files ending in .gz or .zst are decompressed
// transparently.
func LoadTables(bPath, dPath string) (*Tables, error) {
	br, closeB, err := openTableFile(bPath)
	if err != nil {
		return nil, err
	}
	defer closeB()
	dr, closeD, err := openTableFile(dPath)
	if err != nil {
		return nil, err
	}
	defer closeD()

	return parseTables(br, dr)
}

func openTableFile(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	switch filepath.Ext(path) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return zr, func() error { zr.Close(); return f.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return zr, func() error { zr.Close(); return f.Close() }, nil
	default:
		return f, f.Close, nil
	}
}

func parseTables(b, d io.Reader) (*Tables, error) {
	tb, err := parseTableB(b)
	if err != nil {
		return nil, fmt.Errorf("table B: %w", err)
	}
	td, err := parseTableD(d)
	if err != nil {
		return nil, fmt.Errorf("table D: %w", err)
	}
	return &Tables{b: tb, d: td}, nil
}

// parseTableB reads the CSV columns fxy,width_bits,scale,reference,units,name.
func parseTableB(r io.Reader) (map[string]TableBEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	table := make(map[string]TableBEntry, len(records))
	for i, rec := range records {
		if i == 0 && rec[0] == "fxy" {
			continue // header
		}
		width, err := strconv.Atoi(rec[1])
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("entry %s: bad width %q", rec[0], rec[1])
		}
		scale, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("entry %s: bad scale %q", rec[0], rec[2])
		}
		ref, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %s: bad reference %q", rec[0], rec[3])
		}
		table[rec[0]] = TableBEntry{
			FXY:       rec[0],
			WidthBits: width,
			Scale:     scale,
			Reference: ref,
			Units:     rec[4],
			Name:      rec[5],
		}
	}
	return table, nil
}

// parseTableD reads the CSV columns fxy,name,elements with the child
// descriptors space-separated in the last column.
func parseTableD(r io.Reader) (map[string]TableDEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	table := make(map[string]TableDEntry, len(records))
	for i, rec := range records {
		if i == 0 && rec[0] == "fxy" {
			continue // header
		}
		elements := strings.Fields(rec[2])
		if len(elements) == 0 {
			return nil, fmt.Errorf("entry %s: empty sequence", rec[0])
		}
		table[rec[0]] = TableDEntry{FXY: rec[0], Name: rec[1], Elements: elements}
	}
	return table, nil
}

// localTableFile is the YAML layout for originator-defined local tables.
type localTableFile struct {
	TableB []struct {
		FXY       string `yaml:"fxy"`
		Name      string `yaml:"name"`
		Units     string `yaml:"units"`
		Scale     int    `yaml:"scale"`
		Reference int64  `yaml:"reference"`
		WidthBits int    `yaml:"width_bits"`
	} `yaml:"table_b"`
	TableD []struct {
		FXY      string   `yaml:"fxy"`
		Name     string   `yaml:"name"`
		Elements []string `yaml:"elements"`
	} `yaml:"table_d"`
}

// LoadLocalTables reads a YAML file of locally-defined descriptors and
// returns a new catalogue with the entries merged over base. Local entries
// shadow base entries with the same descriptor. The base catalogue is left
// untouched.
func LoadLocalTables(path string, base *Tables) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var local localTableFile
	if err := yaml.Unmarshal(raw, &local); err != nil {
		return nil, fmt.Errorf("local tables %s: %w", path, err)
	}

	merged := &Tables{
		b: make(map[string]TableBEntry, len(base.b)+len(local.TableB)),
		d: make(map[string]TableDEntry, len(base.d)+len(local.TableD)),
	}
	for k, v := range base.b {
		merged.b[k] = v
	}
	for k, v := range base.d {
		merged.d[k] = v
	}

	for _, e := range local.TableB {
		if e.WidthBits <= 0 {
			return nil, fmt.Errorf("local tables %s: entry %s: bad width %d", path, e.FXY, e.WidthBits)
		}
		merged.b[e.FXY] = TableBEntry{
			FXY:       e.FXY,
			Name:      e.Name,
			Units:     e.Units,
			Scale:     e.Scale,
			Reference: e.Reference,
			WidthBits: e.WidthBits,
		}
	}
	for _, e := range local.TableD {
		if len(e.Elements) == 0 {
			return nil, fmt.Errorf("local tables %s: entry %s: empty sequence", path, e.FXY)
		}
		merged.d[e.FXY] = TableDEntry{FXY: e.FXY, Name: e.Name, Elements: e.Elements}
	}

	return merged, nil
}
