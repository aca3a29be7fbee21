// Package render prints boards, records and views to a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spigell/cv-ranker/internal/classify"
)

const (
	notAvailable = "N/A"
	barWidth     = 20
	listLimit    = 3
	cellWidth    = 60
)

var bandColors = map[classify.Band][]color.Attribute{
	classify.BandLightest: {color.FgHiGreen, color.Bold},
	classify.BandStrong:   {color.FgGreen},
	classify.BandMid:      {color.FgYellow},
	classify.BandCaution:  {color.FgHiYellow},
	classify.BandWarning:  {color.FgHiRed},
	classify.BandCritical: {color.FgRed, color.Bold},

	classify.BandPositive: {color.FgGreen},
	classify.BandNeutral:  {color.FgYellow},
	classify.BandNegative: {color.FgRed},

	classify.BandStrongMatch:   {color.FgGreen, color.Bold},
	classify.BandGoodMatch:     {color.FgBlue},
	classify.BandModerateMatch: {color.FgYellow},
	classify.BandWeakMatch:     {color.FgRed},
}

// Renderer writes human readable output.
type Renderer struct {
	w     io.Writer
	color bool
}

func New(w io.Writer, colored bool) *Renderer {
	return &Renderer{w: w, color: colored}
}

// paint colors s for the band. The default band is never colored.
func (r *Renderer) paint(band classify.Band, s string) string {
	attrs, ok := bandColors[band]
	if !r.color || !ok {
		return s
	}

	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func (r *Renderer) dim(s string) string {
	if !r.color {
		return s
	}
	c := color.New(color.Faint)
	c.EnableColor()
	return c.Sprint(s)
}

func (r *Renderer) heading(s string) {
	if r.color {
		c := color.New(color.FgCyan, color.Bold)
		c.EnableColor()
		s = c.Sprint(s)
	}
	fmt.Fprintln(r.w, s)
}

func (r *Renderer) table(header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(r.w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// Score prints the score colored by the color scale.
func (r *Renderer) Score(score int) string {
	return r.paint(classify.ColorBand(score), strconv.Itoa(score))
}

// Verdict prints the label colored by its verdict band.
func (r *Renderer) Verdict(label string) string {
	if label == "" {
		return notAvailable
	}
	return r.paint(classify.VerdictBand(label), label)
}

// Percent prints a defined percentage or N/A.
func (r *Renderer) Percent(v int, ok bool) string {
	if !ok {
		return notAvailable
	}
	return r.paint(classify.TextBand(v), strconv.Itoa(v)+"%")
}

// Bar draws a fixed width gauge for a 0..100 value.
func (r *Renderer) Bar(v int) string {
	clamped := min(max(v, 0), 100)
	filled := (clamped*barWidth + 50) / 100

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return r.paint(classify.ColorBand(v), bar) + " " + strconv.Itoa(v)
}
