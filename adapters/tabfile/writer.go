package tabfile

import (
	"encoding/csv"
	"io"
	"strconv"

	"gotreat/domain/frame"
)

// WriteCSV serializes a frame as CSV. Numeric cells use the shortest
// round-trip float formatting; missing numeric cells are written empty.
func WriteCSV(w io.Writer, f *frame.Frame) error {
	cw := csv.NewWriter(w)
	names := f.Names()
	if err := cw.Write(names); err != nil {
		return err
	}
	record := make([]string, len(names))
	for i := 0; i < f.NumRows(); i++ {
		for j, name := range names {
			col, _ := f.Column(name)
			if col.Kind == frame.KindNumeric {
				if col.IsMissing(i) {
					record[j] = ""
				} else {
					record[j] = strconv.FormatFloat(col.Nums[i], 'g', -1, 64)
				}
			} else {
				record[j] = col.Cats[i]
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
