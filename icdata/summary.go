package icdata

import (
	"bytes"
	"fmt"
	"strings"
)

// Fmter formats a column of values for display in a summary table.
type Fmter func(interface{}, string) []string

// SummaryTable formats fitted results as a fixed-width text table with a
// block of key/value pairs above the columns.
type SummaryTable struct {

	// Title
	Title string

	// Column names
	ColNames []string

	// Formatters for the column values
	ColFmt []Fmter

	// Cols[j] is the j^th column.  Its concrete type should be an
	// array, e.g. of numbers or strings.
	Cols []interface{}

	// Key/value pairs shown above the table, alternating key, value.
	Top []string

	// Messages displayed below the table
	Msg []string
}

// FloatFmt returns a Fmter that formats float64 columns with the given verb.
func FloatFmt(verb string) Fmter {
	return func(c interface{}, name string) []string {
		x := c.([]float64)
		u := make([]string, len(x))
		for i, v := range x {
			u[i] = fmt.Sprintf(verb, v)
		}
		return u
	}
}

// String returns the table as a string.
func (s *SummaryTable) String() string {

	var tab [][]string
	var wx []int
	for j, c := range s.Cols {
		u := s.ColFmt[j](c, s.ColNames[j])
		tab = append(tab, u)
		w := len(s.ColNames[j])
		if len(u) > 0 && len(u[0]) > w {
			w = len(u[0])
		}
		wx = append(wx, w+2)
	}

	// Total width of the table
	tw := 0
	for _, w := range wx {
		tw += w
	}
	if tw < len(s.Title) {
		tw = len(s.Title)
	}

	// Key column width in the top block
	kw := 0
	for j := 0; j < len(s.Top); j += 2 {
		if len(s.Top[j]) > kw {
			kw = len(s.Top[j])
		}
	}

	line := strings.Repeat("-", tw) + "\n"

	var buf bytes.Buffer

	// Center the title
	k := (tw - len(s.Title)) / 2
	if k < 0 {
		k = 0
	}
	buf.WriteString(strings.Repeat(" ", k))
	buf.WriteString(s.Title)
	buf.WriteString("\n")
	buf.WriteString(strings.Repeat("=", tw) + "\n")

	for j := 0; j+1 < len(s.Top); j += 2 {
		buf.WriteString(fmt.Sprintf("%-*s %s\n", kw, s.Top[j], s.Top[j+1]))
	}
	buf.WriteString(line)

	for j, c := range s.ColNames {
		buf.WriteString(fmt.Sprintf("%*s", wx[j], c))
	}
	buf.WriteString("\n")
	buf.WriteString(line)

	if len(tab) > 0 {
		for i := 0; i < len(tab[0]); i++ {
			for j := 0; j < len(tab); j++ {
				buf.WriteString(fmt.Sprintf("%*s", wx[j], tab[j][i]))
			}
			buf.WriteString("\n")
		}
	}
	buf.WriteString(line)

	for _, msg := range s.Msg {
		buf.WriteString(msg + "\n")
	}

	return buf.String()
}
