package surface

import (
	"strings"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
)

// DigitField is a row of single-digit inputs with one focused cell.
type DigitField struct {
	cells []rune
	focus int
}

func NewDigitField(length int) *DigitField {
	d := &DigitField{}
	d.Reset(length)
	return d
}

// Reset empties every cell, resizes the row to length and focuses cell 0.
func (d *DigitField) Reset(length int) {
	d.cells = make([]rune, max(length, 0))
	d.focus = 0
}

func (d *DigitField) Len() int { return len(d.cells) }

func (d *DigitField) Focus() int { return d.focus }

// Type writes r into the focused cell and advances. Non-digits are ignored.
// It reports whether every cell is now filled.
func (d *DigitField) Type(r rune) bool {
	if len(d.cells) == 0 || !entity.IsDigit(r) {
		return d.Complete()
	}

	d.cells[d.focus] = r
	if d.focus < len(d.cells)-1 {
		d.focus++
	}
	return d.Complete()
}

// Backspace clears the focused cell, or when it is already empty moves back
// and clears the previous one.
func (d *DigitField) Backspace() {
	if len(d.cells) == 0 {
		return
	}

	if d.cells[d.focus] != 0 {
		d.cells[d.focus] = 0
		return
	}
	if d.focus > 0 {
		d.focus--
		d.cells[d.focus] = 0
	}
}

func (d *DigitField) Left() {
	if d.focus > 0 {
		d.focus--
	}
}

func (d *DigitField) Right() {
	if d.focus < len(d.cells)-1 {
		d.focus++
	}
}

// Paste spreads the digits of s over the cells from the focused one on.
func (d *DigitField) Paste(s string) bool {
	i := d.focus
	for _, r := range s {
		if i >= len(d.cells) {
			break
		}
		if !entity.IsDigit(r) {
			continue
		}
		d.cells[i] = r
		i++
	}

	d.focus = min(i, len(d.cells)-1)
	d.focus = max(d.focus, 0)
	return d.Complete()
}

func (d *DigitField) Complete() bool {
	if len(d.cells) == 0 {
		return false
	}
	for _, r := range d.cells {
		if r == 0 {
			return false
		}
	}
	return true
}

// Value joins the filled cells.
func (d *DigitField) Value() string {
	var b strings.Builder
	for _, r := range d.cells {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Cells returns each cell as a string, "" for empty ones.
func (d *DigitField) Cells() []string {
	out := make([]string, len(d.cells))
	for i, r := range d.cells {
		if r != 0 {
			out[i] = string(r)
		}
	}
	return out
}
