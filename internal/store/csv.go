package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/assets"
	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/tile"
)

const csvFields = 2 + tile.Sides

// ReadRecords parses semicolon separated x;y;e0;e1;e2;e3;e4;e5 lines.
func ReadRecords(r io.Reader) ([]game.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = csvFields
	cr.TrimLeadingSpace = true

	var out []game.Record
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading tiles")
		}
		line, _ := cr.FieldPos(0)
		var ints [csvFields]int
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d field %d", line, i+1)
			}
			ints[i] = n
		}
		rec := game.Record{X: ints[0], Y: ints[1]}
		copy(rec.Edges[:], ints[2:])
		out = append(out, rec)
	}
}

// WriteRecords writes one x;y;e0..e5 line per record.
func WriteRecords(w io.Writer, records []game.Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	fields := make([]string, csvFields)
	for _, r := range records {
		fields[0] = strconv.Itoa(r.X)
		fields[1] = strconv.Itoa(r.Y)
		for i, rank := range r.Edges {
			fields[2+i] = strconv.Itoa(rank)
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvFile stores a single board in a text file.
type csvFile struct {
	path string
}

// NewCSVStore stores the board in the file at path.
func NewCSVStore(path string) Store {
	return &csvFile{path: path}
}

func (c *csvFile) Load(ctx context.Context, board string) ([]game.Record, error) {
	f, err := os.Open(c.path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "no file %s", c.path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ReadRecords(f)
	if err != nil {
		return nil, errors.Wrap(err, c.path)
	}
	return records, nil
}

// Save writes to a temporary file next to path and renames it over path.
func (c *csvFile) Save(ctx context.Context, board string, records []game.Record) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := WriteRecords(tmp, records); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}

func (c *csvFile) Close() error { return nil }

// sample serves the embedded demo board.
type sample struct{}

// NewSampleStore returns a read-only Store holding the embedded demo board.
func NewSampleStore() Store {
	return sample{}
}

func (sample) Load(ctx context.Context, board string) ([]game.Record, error) {
	b, err := assets.SampleBoard()
	if err != nil {
		return nil, err
	}
	return ReadRecords(bytes.NewReader(b))
}

func (sample) Save(ctx context.Context, board string, records []game.Record) error {
	return errors.Wrap(ErrReadOnly, "sample board")
}

func (sample) Close() error { return nil }
