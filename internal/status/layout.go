// Package status composes the 16x8 character panel shown next to the
// histogram and draws it, rotated, onto the LCD.
package status

import (
	"fmt"
	"strings"

	"github.com/smazurov/histonode/internal/exposure"
)

// Grid size in characters.
const (
	Cols = 16
	Rows = 8
)

// Grid is the character panel.
type Grid [Rows][Cols]byte

// NewGrid returns a grid of spaces.
func NewGrid() Grid {
	var g Grid
	for r := range g {
		for c := range g[r] {
			g[r][c] = ' '
		}
	}
	return g
}

// Put writes s at (row, col), clipping at the grid edge.
func (g *Grid) Put(row, col int, s string) {
	if row < 0 || row >= Rows {
		return
	}
	for i := 0; i < len(s); i++ {
		c := col + i
		if c < 0 || c >= Cols {
			continue
		}
		g[row][c] = s[i]
	}
}

// Line returns row r without trailing blanks.
func (g *Grid) Line(r int) string {
	return strings.TrimRight(string(g[r][:]), " ")
}

func (g *Grid) String() string {
	lines := make([]string, Rows)
	for r := range lines {
		lines[r] = g.Line(r)
	}
	return strings.Join(lines, "\n")
}

// Values are the readings shown on the panel.
type Values struct {
	Phase         exposure.Phase
	EncodedFrames uint32
	WhiteBalance  [3]uint32
	EVBias        int32
	FPSMode       int32
	QP            uint32
	QPMin         int32
	Exposure      exposure.Pair
	Power         int32
	Locked        bool
	Window        [4]uint32
	Nav           int32
}

// FieldID names a panel field.
type FieldID int

// Panel fields.
const (
	FieldLabel FieldID = iota
	FieldFrame
	FieldWhiteBalance
	FieldEVBias
	FieldFPS
	FieldQP
	FieldISO
	FieldPower
	FieldExposure
	FieldLock
	FieldResolution
	FieldOffset
)

// Field places one formatted value on the grid. Values longer than Width are
// truncated; shorter ones are left as formatted.
type Field struct {
	ID     FieldID
	Row    int
	Col    int
	Width  int
	Format func(v Values) string
}

func label(row, col int, text string) Field {
	return Field{ID: FieldLabel, Row: row, Col: col, Width: len(text), Format: func(Values) string { return text }}
}

// EncodeLayout is the panel while recording.
var EncodeLayout = []Field{
	label(0, 0, "Frm:"),
	{ID: FieldFrame, Row: 0, Col: 4, Width: 5, Format: func(v Values) string {
		return fmt.Sprintf("%5d", v.EncodedFrames%100000)
	}},
	label(1, 0, "WB gains:"),
	{ID: FieldWhiteBalance, Row: 2, Col: 0, Width: 13, Format: formatWhiteBalance},
	label(3, 0, "ev :"),
	{ID: FieldEVBias, Row: 3, Col: 4, Width: 4, Format: formatEVBias},
	label(4, 0, "FPS:"),
	{ID: FieldFPS, Row: 4, Col: 4, Width: 4, Format: formatFPS},
	label(5, 0, "Qp :"),
	{ID: FieldQP, Row: 5, Col: 5, Width: 6, Format: formatQP},
	label(6, 0, "ISO:"),
	{ID: FieldISO, Row: 6, Col: 5, Width: 3, Format: formatISO},
	{ID: FieldPower, Row: 6, Col: 8, Width: 5, Format: func(v Values) string {
		return fmt.Sprintf("/%d   ", v.Power%10)
	}},
	label(7, 0, "Exp:"),
	{ID: FieldExposure, Row: 7, Col: 4, Width: 6, Format: formatExposure},
	{ID: FieldLock, Row: 7, Col: 10, Width: 3, Format: func(v Values) string {
		if v.Locked {
			return " L "
		}
		return " A "
	}},
}

// PreviewLayout is the panel while previewing.
var PreviewLayout = []Field{
	label(1, 0, "WB gains:"),
	{ID: FieldWhiteBalance, Row: 2, Col: 0, Width: 13, Format: formatWhiteBalance},
	label(3, 0, "Res:"),
	{ID: FieldResolution, Row: 3, Col: 4, Width: 10, Format: func(v Values) string {
		return formatPairSep(v.Window[0], v.Window[1], 'x')
	}},
	label(4, 0, "off:"),
	{ID: FieldOffset, Row: 4, Col: 4, Width: 10, Format: func(v Values) string {
		return formatPairSep(v.Window[2], v.Window[3], ',')
	}},
	label(6, 0, "ISO:"),
	{ID: FieldISO, Row: 6, Col: 5, Width: 3, Format: formatISO},
	label(7, 0, "Exp:"),
	{ID: FieldExposure, Row: 7, Col: 4, Width: 6, Format: formatExposure},
}

// bracket is the pair of columns framing a navigable field.
type bracket struct {
	row, open, close int
}

// navBrackets is indexed by the Nav setting: WB R, WB G, WB B, EV bias, FPS,
// QP floor, ISO ceiling, lock.
var navBrackets = [...]bracket{
	{2, 0, 4},
	{2, 4, 8},
	{2, 8, 12},
	{3, 4, 7},
	{4, 4, 7},
	{5, 7, 10},
	{6, 8, 12},
	{7, 10, 12},
}

// Compose fills a grid for the capture phase in v. The navigation brackets
// are only drawn while encoding.
func Compose(v Values) Grid {
	g := NewGrid()
	layout := PreviewLayout
	if v.Phase == exposure.PhaseEncode {
		layout = EncodeLayout
	}

	for _, f := range layout {
		s := f.Format(v)
		if len(s) > f.Width {
			s = s[:f.Width]
		}
		g.Put(f.Row, f.Col, s)
	}

	if v.Phase == exposure.PhaseEncode && v.Nav >= 0 && int(v.Nav) < len(navBrackets) {
		b := navBrackets[v.Nav]
		g[b.row][b.open] = '['
		g[b.row][b.close] = ']'
	}
	return g
}

// DisplayQP clamps the encoder's quantiser to the displayable range.
func DisplayQP(qp uint32) uint32 {
	return min(max(qp, 16), 30)
}

// EffectiveQP is the quantiser floor in force: the larger of the displayed
// quantiser and QPMin-1.
func EffectiveQP(qp uint32, qpMin int32) uint32 {
	shown := DisplayQP(qp)
	if floor := qpMin - 1; floor > 0 && uint32(floor) > shown {
		return uint32(floor)
	}
	return shown
}

func formatWhiteBalance(v Values) string {
	wb := v.WhiteBalance
	return fmt.Sprintf(" %03d,%03d,%03d ", wb[0]%1000, wb[1]%1000, wb[2]%1000)
}

func formatEVBias(v Values) string {
	sign, n := '+', v.EVBias
	if n < 0 {
		sign, n = '-', -n
	}
	return fmt.Sprintf(" %c%d ", sign, n%10)
}

func formatFPS(v Values) string {
	switch v.FPSMode {
	case 0:
		return " 16 "
	case 1:
		return " 18 "
	case 2:
		return " 24 "
	default:
		return " -- "
	}
}

func formatQP(v Values) string {
	floor := v.QPMin - 1
	if floor < 0 {
		floor = 0
	}
	return fmt.Sprintf("%02d/%02d ", DisplayQP(v.QP)%100, floor%100)
}

func formatISO(v Values) string {
	return fmt.Sprintf("%3d", min(max(v.Exposure.ISO, 0), 999))
}

func formatExposure(v Values) string {
	return fmt.Sprintf("%04dus", min(max(v.Exposure.Shutter, 0), 9999))
}

// formatPairSep renders "a<sep>b " with each number up to four digits, the
// thousands digit dropped when it is zero.
func formatPairSep(a, b uint32, sep byte) string {
	return fmt.Sprintf("%s%c%s ", trimThousands(a), sep, trimThousands(b))
}

func trimThousands(n uint32) string {
	n %= 10000
	if n < 1000 {
		return fmt.Sprintf("%03d", n)
	}
	return fmt.Sprintf("%d", n)
}
