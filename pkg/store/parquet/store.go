// Package parquet persists the accumulated attendance table as a parquet file,
// one file per calendar year.
package parquet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"statustracker/pkg/attendance"
	"statustracker/pkg/logger"
)

// NameColumn is the row-label column holding the person key.
const NameColumn = "Name"

const fileSuffix = "-status"

// Store reads and writes table files below a data directory.
type Store struct {
	dir string
	mem memory.Allocator
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{
		dir: dir,
		mem: memory.NewGoAllocator(),
	}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// PathForYear returns the file holding the table of year.
func PathForYear(dir string, year int) string {
	return filepath.Join(dir, strconv.Itoa(year)+fileSuffix)
}

// PathForYear returns the file holding the table of year in the store directory.
func (s *Store) PathForYear(year int) string {
	return PathForYear(s.dir, year)
}

// LoadYear loads the table recorded for year.
func (s *Store) LoadYear(ctx context.Context, year int) (*attendance.Table, error) {
	return s.Load(ctx, s.PathForYear(year))
}

// SaveYear persists the table of year.
func (s *Store) SaveYear(ctx context.Context, year int, table *attendance.Table) error {
	return s.Save(ctx, table, s.PathForYear(year))
}

// Load reads a table file. A missing file yields an error wrapping ErrNotFound.
func (s *Store) Load(ctx context.Context, path string) (*attendance.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StorageError{Op: "read", Path: path, Err: ErrNotFound}
		}
		return nil, readError(path, err)
	}

	tbl, err := pqarrow.ReadTable(ctx, bytes.NewReader(data), parquet.NewReaderProperties(s.mem), pqarrow.ArrowReadProperties{}, s.mem)
	if err != nil {
		return nil, readError(path, err)
	}
	defer tbl.Release()

	table, err := decodeTable(tbl)
	if err != nil {
		return nil, readError(path, err)
	}

	logger.DebugCtx(ctx, "loaded %d rows and %d columns from %s", table.NumRows(), table.NumColumns(), path)
	return table, nil
}

// Save writes table to path. The file is replaced only once the new content
// was written completely.
func (s *Store) Save(ctx context.Context, table *attendance.Table, path string) error {
	var buf bytes.Buffer
	if err := s.encode(table, &buf); err != nil {
		return writeError(path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return writeError(path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeError(path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return writeError(path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return writeError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return writeError(path, err)
	}

	logger.DebugCtx(ctx, "saved %d rows and %d columns to %s", table.NumRows(), table.NumColumns(), path)
	return nil
}

func (s *Store) encode(table *attendance.Table, buf *bytes.Buffer) error {
	people := table.People()
	columns := table.Columns()

	fields := make([]arrow.Field, 0, len(columns)+1)
	fields = append(fields, arrow.Field{Name: NameColumn, Type: arrow.BinaryTypes.String})
	for _, ts := range columns {
		fields = append(fields, arrow.Field{Name: attendance.FormatTimestamp(ts), Type: arrow.BinaryTypes.String, Nullable: true})
	}
	schema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, 0, len(fields))
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	nameBuilder := array.NewStringBuilder(s.mem)
	defer nameBuilder.Release()
	nameBuilder.AppendValues(people, nil)
	arrays = append(arrays, nameBuilder.NewArray())

	// Fill column by column over the transposed view
	for _, column := range table.Transpose() {
		b := array.NewStringBuilder(s.mem)
		for _, state := range column {
			if state.Present() {
				b.Append(state.String())
			} else {
				b.AppendNull()
			}
		}
		arrays = append(arrays, b.NewArray())
		b.Release()
	}

	writer, err := pqarrow.NewFileWriter(
		schema,
		buf,
		parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy)),
		pqarrow.DefaultWriterProps(),
	)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if len(people) > 0 {
		record := array.NewRecord(schema, arrays, int64(len(people)))
		defer record.Release()

		if err := writer.Write(record); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// stringValues covers the string array flavours a parquet reader may return.
type stringValues interface {
	Len() int
	IsNull(i int) bool
	Value(i int) string
}

func readStrings(col *arrow.Column) ([]string, []bool, error) {
	values := make([]string, 0, col.Len())
	valid := make([]bool, 0, col.Len())
	for _, chunk := range col.Data().Chunks() {
		strs, ok := chunk.(stringValues)
		if !ok {
			return nil, nil, fmt.Errorf("column %s has type %s, want string", col.Name(), chunk.DataType())
		}
		for i := 0; i < strs.Len(); i++ {
			if strs.IsNull(i) {
				values = append(values, "")
				valid = append(valid, false)
				continue
			}
			values = append(values, strs.Value(i))
			valid = append(valid, true)
		}
	}
	return values, valid, nil
}

func decodeTable(tbl arrow.Table) (*attendance.Table, error) {
	nameIdx := -1
	for i := 0; i < int(tbl.NumCols()); i++ {
		if tbl.Column(i).Name() == NameColumn {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("missing %s column", NameColumn)
	}

	people, valid, err := readStrings(tbl.Column(nameIdx))
	if err != nil {
		return nil, err
	}
	for i, ok := range valid {
		if !ok {
			return nil, fmt.Errorf("row %d has no %s", i, NameColumn)
		}
	}

	var columns []time.Time
	cells := make([][]attendance.State, len(people))
	for i := range cells {
		cells[i] = make([]attendance.State, 0, int(tbl.NumCols())-1)
	}

	for i := 0; i < int(tbl.NumCols()); i++ {
		if i == nameIdx {
			continue
		}
		col := tbl.Column(i)
		ts, err := attendance.ParseTimestamp(col.Name())
		if err != nil {
			return nil, fmt.Errorf("column %q is not a timestamp: %w", col.Name(), err)
		}

		labels, present, err := readStrings(col)
		if err != nil {
			return nil, err
		}
		if len(labels) != len(people) {
			return nil, fmt.Errorf("column %s has %d values for %d rows", col.Name(), len(labels), len(people))
		}

		for r := range labels {
			state := attendance.StateAbsent
			if present[r] {
				state, err = attendance.ParseState(labels[r])
				if err != nil {
					return nil, fmt.Errorf("column %s row %d: %w", col.Name(), r, err)
				}
			}
			cells[r] = append(cells[r], state)
		}
		columns = append(columns, ts)
	}

	return attendance.BuildTable(people, columns, cells)
}
