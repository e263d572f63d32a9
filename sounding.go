package bufr

import (
	"fmt"
	"math"
	"time"
)

// soundingSequence is the Table D template for TEMP, TEMP SHIP and TEMP
// MOBIL observations.
const soundingSequence = "309052"

// SoundingLevel is one significant or standard level of the profile, the
// flattened form of a 3-03-054 group. Float fields are NaN when the encoded
// value was missing.
type SoundingLevel struct {
	TimeOffsetSec float64 // displacement from launch
	Significance  uint64  // extended vertical sounding significance flags
	PressurePa    float64
	HeightGpm     float64
	LatDispDeg    float64 // displacement from the launch point
	LonDispDeg    float64
	TemperatureK  float64
	DewPointK     float64
	WindDirDeg    float64
	WindSpeedMPS  float64
}

// ShearLevel is one wind-shear level, the flattened form of a 3-03-051
// group.
type ShearLevel struct {
	TimeOffsetSec float64
	Significance  uint64
	LatDispDeg    float64
	LonDispDeg    float64
	ShearBelowMPS float64
	ShearAboveMPS float64
}

// Sounding is a decoded radiosonde ascent: station identity, launch time
// and place, and the level-by-level profile.
type Sounding struct {
	StationBlock   int64 // WMO block number, -1 when missing
	StationNumber  int64 // WMO station number, -1 when missing
	StationID      string
	RadiosondeType uint64

	LaunchTime time.Time

	LatitudeDeg      float64
	LongitudeDeg     float64
	StationHeightM   float64
	BarometerHeightM float64

	SeaTemperatureK float64

	Levels []SoundingLevel // in recording order, surface upward
	Shear  []ShearLevel
}

// TopDown returns the profile levels from the top of the ascent to the
// surface.
func (s *Sounding) TopDown() []SoundingLevel {
	out := make([]SoundingLevel, len(s.Levels))
	for i, lvl := range s.Levels {
		out[len(s.Levels)-1-i] = lvl
	}
	return out
}

// ExtractSounding locates the top-level 3-09-052 group of msg and flattens
// it. Fails when the message does not carry the sounding template.
func ExtractSounding(msg *Message) (*Sounding, error) {
	var root *Group
	for _, s := range msg.Structures() {
		if g, ok := s.(*Group); ok && g.Code() == soundingSequence {
			root = g
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("no %s sounding sequence in message", soundingSequence)
	}

	snd := &Sounding{
		StationBlock:     firstSigned(root, "001001", -1),
		StationNumber:    firstSigned(root, "001002", -1),
		StationID:        firstText(root, "001011"),
		RadiosondeType:   firstCode(root, "002011"),
		LatitudeDeg:      firstFloat(root, "005001"),
		LongitudeDeg:     firstFloat(root, "006001"),
		StationHeightM:   firstFloat(root, "007030"),
		BarometerHeightM: firstFloat(root, "007031"),
		SeaTemperatureK:  firstFloat(root, "022043"),
	}

	year := firstSigned(root, "004001", 0)
	month := firstSigned(root, "004002", 0)
	day := firstSigned(root, "004003", 0)
	hour := firstSigned(root, "004004", 0)
	minute := firstSigned(root, "004005", 0)
	second := firstSigned(root, "004006", 0)
	if year > 0 {
		snd.LaunchTime = time.Date(int(year), time.Month(month), int(day),
			int(hour), int(minute), int(second), 0, time.UTC)
	}

	// The template carries two replications: profile levels (3-03-054),
	// then wind shear levels (3-03-051).
	var reps []*Replication
	for _, item := range root.Items() {
		if r, ok := item.(*Replication); ok {
			reps = append(reps, r)
		}
	}
	if len(reps) > 0 {
		for _, item := range reps[0].Items() {
			g, ok := item.(*Group)
			if !ok {
				continue
			}
			snd.Levels = append(snd.Levels, SoundingLevel{
				TimeOffsetSec: firstSignedAsFloat(g, "004086"),
				Significance:  firstCode(g, "008042"),
				PressurePa:    firstFloat(g, "007004"),
				HeightGpm:     firstFloat(g, "010009"),
				LatDispDeg:    firstFloat(g, "005015"),
				LonDispDeg:    firstFloat(g, "006015"),
				TemperatureK:  firstFloat(g, "012101"),
				DewPointK:     firstFloat(g, "012103"),
				WindDirDeg:    firstFloat(g, "011001"),
				WindSpeedMPS:  firstFloat(g, "011002"),
			})
		}
	}
	if len(reps) > 1 {
		for _, item := range reps[1].Items() {
			g, ok := item.(*Group)
			if !ok {
				continue
			}
			snd.Shear = append(snd.Shear, ShearLevel{
				TimeOffsetSec: firstSignedAsFloat(g, "004086"),
				Significance:  firstCode(g, "008042"),
				LatDispDeg:    firstFloat(g, "005015"),
				LonDispDeg:    firstFloat(g, "006015"),
				ShearBelowMPS: firstFloat(g, "011061"),
				ShearAboveMPS: firstFloat(g, "011062"),
			})
		}
	}

	return snd, nil
}

// LoadSounding scans the named file and extracts the first message carrying
// the 3-09-052 template. tables may be nil for the builtin catalogue.
func LoadSounding(path string, tables *Tables) (*Sounding, error) {
	msgs, err := ReadFile(path, tables)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		snd, err := ExtractSounding(msg)
		if err == nil {
			return snd, nil
		}
	}
	return nil, fmt.Errorf("%s: no %s sounding sequence in any message", path, soundingSequence)
}

// findElement returns the first element with the given code in a depth-first
// walk of the subtree.
func findElement(s Structure, code string) *Element {
	switch n := s.(type) {
	case *Element:
		if n.Code() == code {
			return n
		}
	case *Group:
		for _, item := range n.Items() {
			if e := findElement(item, code); e != nil {
				return e
			}
		}
	case *Replication:
		for _, item := range n.Items() {
			if e := findElement(item, code); e != nil {
				return e
			}
		}
	}
	return nil
}

func firstFloat(s Structure, code string) float64 {
	if e := findElement(s, code); e != nil {
		if v, ok := e.AsFloat(); ok {
			return v
		}
	}
	return math.NaN()
}

func firstSigned(s Structure, code string, missing int64) int64 {
	if e := findElement(s, code); e != nil {
		if v, ok := e.AsSigned(); ok {
			return v
		}
	}
	return missing
}

func firstSignedAsFloat(s Structure, code string) float64 {
	if e := findElement(s, code); e != nil {
		if v, ok := e.AsSigned(); ok {
			return float64(v)
		}
	}
	return math.NaN()
}

func firstCode(s Structure, code string) uint64 {
	if e := findElement(s, code); e != nil {
		if v, ok := e.AsUnsigned(); ok {
			return v
		}
	}
	return 0
}

func firstText(s Structure, code string) string {
	if e := findElement(s, code); e != nil {
		if v, ok := e.AsText(); ok {
			return v
		}
	}
	return ""
}
