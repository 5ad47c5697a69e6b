package matrix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Print writes N on the first line, then every row of the square form.
// Cells below the diagonal are rendered as -1.00. Values use two decimals
// and a common width derived from the largest value.
func (m *Matrix) Print(w io.Writer) error {
	if m.closed.Load() {
		return ErrClosed
	}

	var maxVal float64
	for _, v := range m.data {
		maxVal = max(maxVal, v)
	}
	width := PrintWidth(maxVal)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < i; j++ {
			fmt.Fprintf(bw, "%*.2f, ", width, -1.0)
		}
		for j := i; j < m.n; j++ {
			fmt.Fprintf(bw, "%*.2f", width, m.data[Index(m.n, i, j)])
			if j < m.n-1 {
				bw.WriteString(", ")
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// PrintWidth is the column width for values up to maxVal printed with two
// decimals: floor(log10(max))+4, and at least 4.
func PrintWidth(maxVal float64) int {
	if maxVal < 10 {
		return 4
	}
	return len(strconv.Itoa(int(maxVal))) + 3
}
