package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/okian/rake/internal/domain/table"
)

const parquetBatchSize = 64 * 1024

// readParquet materializes a parquet file through the arrow reader and
// funnels every cell through the same builder coercion as CSV, so both
// formats end up with identical typing semantics.
func readParquet(ctx context.Context, path, name string) (*table.Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}
	defer rdr.Close()

	arrowRdr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: parquetBatchSize}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	tbl, err := arrowRdr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	defer tbl.Release()

	numCols := int(tbl.NumCols())
	columns := make([]string, numCols)
	for i := range columns {
		columns[i] = tbl.Schema().Field(i).Name
	}

	// Column-major render, then row-major append into the builder.
	cells := make([][]string, numCols)
	for ci := 0; ci < numCols; ci++ {
		col := tbl.Column(ci)
		cells[ci] = make([]string, 0, tbl.NumRows())
		for _, chunk := range col.Data().Chunks() {
			for ri := 0; ri < chunk.Len(); ri++ {
				cells[ci] = append(cells[ci], cellString(chunk, ri))
			}
		}
	}

	b := table.NewBuilder(name, columns)
	row := make([]string, numCols)
	for ri := 0; ri < int(tbl.NumRows()); ri++ {
		for ci := 0; ci < numCols; ci++ {
			row[ci] = cells[ci][ri]
		}
		b.AppendRow(row)
	}
	return b.Build()
}

// cellString renders one arrow cell as the canonical text fed to coercion.
// Temporal types are rendered in layouts the builder parses back; everything
// else uses arrow's own string rendering.
func cellString(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return ""
	}
	switch a := arr.(type) {
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format(time.RFC3339)
	case *array.Date32:
		return a.Value(i).ToTime().UTC().Format("2006-01-02")
	case *array.Date64:
		return a.Value(i).ToTime().UTC().Format("2006-01-02")
	default:
		return arr.ValueStr(i)
	}
}
