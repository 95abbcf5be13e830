package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/okian/rake/internal/adapters/dataset"
	"github.com/okian/rake/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFSStore_Load(t *testing.T) {
	Convey("Given a dataset directory with CSV files", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		writeFile(t, dir, "bets.csv", "player_id,stake_amount\nA,100\nB,200\n")
		writeFile(t, dir, "nested/sessions.csv", "session_id,player_id\ns1,A\n")
		store := dataset.NewFSStore(dir)

		Convey("When loading by exact relative path", func() {
			tbl, err := store.Load(ctx, "bets.csv")

			Convey("Then the file parses with coerced column kinds", func() {
				So(err, ShouldBeNil)
				So(tbl.Name(), ShouldEqual, "bets.csv")
				So(tbl.NumRows(), ShouldEqual, 2)
				col, ok := tbl.Column("stake_amount")
				So(ok, ShouldBeTrue)
				So(col.Kind(), ShouldEqual, table.KindInt)
			})
		})

		Convey("When loading a nested file by exact basename", func() {
			tbl, err := store.Load(ctx, "sessions.csv")

			So(err, ShouldBeNil)
			So(tbl.NumRows(), ShouldEqual, 1)
		})

		Convey("When loading by case-insensitive substring", func() {
			tbl, err := store.Load(ctx, "BETS")

			So(err, ShouldBeNil)
			So(tbl.NumRows(), ShouldEqual, 2)
		})

		Convey("When an exact path exists alongside a substring match", func() {
			writeFile(t, dir, "bets_old.csv", "player_id,stake_amount\nX,1\n")

			tbl, err := store.Load(ctx, "bets.csv")

			Convey("Then the exact path wins", func() {
				So(err, ShouldBeNil)
				So(tbl.NumRows(), ShouldEqual, 2)
			})
		})

		Convey("When the name matches nothing", func() {
			_, err := store.Load(ctx, "nope")

			Convey("Then the error wraps the sentinel and lists available files", func() {
				So(errors.Is(err, dataset.ErrFileNotFound), ShouldBeTrue)
				var nf *dataset.NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.Available, ShouldContain, "bets.csv")
				So(err.Error(), ShouldContainSubstring, "bets.csv")
			})
		})

		Convey("When the dataset directory is empty", func() {
			_, err := dataset.NewFSStore(t.TempDir()).Load(ctx, "players.csv")

			Convey("Then the not-found error lists zero available files", func() {
				So(errors.Is(err, dataset.ErrFileNotFound), ShouldBeTrue)
				var nf *dataset.NotFoundError
				So(errors.As(err, &nf), ShouldBeTrue)
				So(nf.Available, ShouldBeEmpty)
			})
		})

		Convey("When the file is empty", func() {
			writeFile(t, dir, "empty.csv", "")

			_, err := store.Load(ctx, "empty.csv")

			So(errors.Is(err, dataset.ErrEmptyFile), ShouldBeTrue)
		})

		Convey("When the extension is unsupported", func() {
			writeFile(t, dir, "blob.bin", "junk")

			_, err := store.Load(ctx, "blob.bin")

			So(errors.Is(err, dataset.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestFSStore_Delimiters(t *testing.T) {
	Convey("Given CSV files with different delimiters", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("When the file is semicolon-separated", func() {
			writeFile(t, dir, "semi.csv", "player_id;stake_amount\nA;100\n")
			store := dataset.NewFSStore(dir)

			tbl, err := store.Load(ctx, "semi.csv")

			Convey("Then the delimiter is detected from the header", func() {
				So(err, ShouldBeNil)
				So(len(tbl.Columns()), ShouldEqual, 2)
				_, ok := tbl.Column("stake_amount")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the file is tab-separated", func() {
			writeFile(t, dir, "tabs.txt", "player_id\tstake_amount\nA\t100\n")
			store := dataset.NewFSStore(dir)

			tbl, err := store.Load(ctx, "tabs.txt")

			So(err, ShouldBeNil)
			So(len(tbl.Columns()), ShouldEqual, 2)
		})

		Convey("When a delimiter is forced", func() {
			writeFile(t, dir, "forced.csv", "a;b\n1;2\n")
			store := dataset.NewFSStore(dir, dataset.WithDelimiter(';'))

			tbl, err := store.Load(ctx, "forced.csv")

			So(err, ShouldBeNil)
			So(len(tbl.Columns()), ShouldEqual, 2)
		})
	})
}

func TestFSStore_Files(t *testing.T) {
	Convey("Given a dataset directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		writeFile(t, dir, "b.csv", "x\n1\n")
		writeFile(t, dir, "a.csv", "x\n1\n")
		writeFile(t, dir, "sub/c.csv", "x\n1\n")

		Convey("When listing files", func() {
			files, err := dataset.NewFSStore(dir).Files(ctx)

			Convey("Then paths are relative and sorted", func() {
				So(err, ShouldBeNil)
				So(files, ShouldResemble, []string{"a.csv", "b.csv", filepath.Join("sub", "c.csv")})
			})
		})

		Convey("When the directory does not exist", func() {
			files, err := dataset.NewFSStore(filepath.Join(dir, "missing")).Files(ctx)

			Convey("Then the listing is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(files, ShouldBeEmpty)
			})
		})
	})
}

func TestFSStore_Parquet(t *testing.T) {
	Convey("Given a parquet dataset file", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		schema := arrow.NewSchema([]arrow.Field{
			{Name: "player_id", Type: arrow.BinaryTypes.String},
			{Name: "stake_amount", Type: arrow.PrimitiveTypes.Float64},
		}, nil)
		rb := array.NewRecordBuilder(memory.DefaultAllocator, schema)
		defer rb.Release()
		rb.Field(0).(*array.StringBuilder).AppendValues([]string{"A", "B", "A"}, nil)
		rb.Field(1).(*array.Float64Builder).AppendValues([]float64{10.5, 20, 30}, nil)
		rec := rb.NewRecord()
		defer rec.Release()
		arrowTbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
		defer arrowTbl.Release()

		f, err := os.Create(filepath.Join(dir, "bets.parquet"))
		So(err, ShouldBeNil)
		// pqarrow.WriteTable closes f itself; closing again would fail.
		So(pqarrow.WriteTable(arrowTbl, f, 1024, nil, pqarrow.DefaultWriterProps()), ShouldBeNil)

		Convey("When loading it through the store", func() {
			tbl, err := dataset.NewFSStore(dir).Load(ctx, "bets.parquet")

			Convey("Then values coerce exactly like CSV input", func() {
				So(err, ShouldBeNil)
				So(tbl.NumRows(), ShouldEqual, 3)
				col, ok := tbl.Column("stake_amount")
				So(ok, ShouldBeTrue)
				So(col.Kind(), ShouldEqual, table.KindFloat)
				v, ok := col.Float(0)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 10.5)
			})
		})
	})
}
