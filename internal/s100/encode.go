package s100

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
)

// Binary layout: a fixed magic and version followed by a depth-first walk
// of the group tree. Every record is length-delimited, all integers are
// big-endian, and creation order is preserved, so identical trees encode
// to identical bytes.
var fileMagic = [4]byte{'S', '1', '0', '0'}

const fileVersion uint16 = 1

type encoder struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	n, err := e.w.Write(p)
	e.n += int64(n)
	e.err = err
}

func (e *encoder) byte(b byte)      { e.write([]byte{b}) }
func (e *encoder) uint16(v uint16)  { e.write(binary.BigEndian.AppendUint16(nil, v)) }
func (e *encoder) uint32(v uint32)  { e.write(binary.BigEndian.AppendUint32(nil, v)) }
func (e *encoder) uint64(v uint64)  { e.write(binary.BigEndian.AppendUint64(nil, v)) }
func (e *encoder) int64(v int64)    { e.uint64(uint64(v)) }
func (e *encoder) float64(v float64) { e.uint64(math.Float64bits(v)) }

func (e *encoder) string(s string) {
	e.uint32(uint32(len(s)))
	e.write([]byte(s))
}

func (e *encoder) attribute(a Attribute) {
	e.string(a.Name)
	e.byte(byte(a.Kind))
	switch a.Kind {
	case AttrFloat64:
		e.float64(a.Float)
	case AttrInt64:
		e.int64(a.Int)
	case AttrUint64:
		e.uint64(a.Uint)
	case AttrString:
		e.string(a.Str)
	case AttrEnum:
		e.string(a.Enum.Name)
		e.uint32(uint32(len(a.Enum.Members)))
		for _, m := range a.Enum.Members {
			e.string(m.Label)
			e.int64(m.Code)
		}
		e.int64(a.Int)
	}
}

func (e *encoder) dataset(ds *Dataset) {
	e.string(ds.Name)
	e.byte(byte(ds.Kind))
	e.uint32(uint32(ds.Rows))
	e.uint32(uint32(ds.Cols))
	switch ds.Kind {
	case DatasetFloat64:
		for _, row := range ds.Floats {
			for _, v := range row {
				e.float64(v)
			}
		}
	case DatasetUint8:
		for _, row := range ds.Bytes {
			e.write(row)
		}
	case DatasetString:
		for _, s := range ds.Strings {
			e.string(s)
		}
	}
}

func (e *encoder) group(g *Group) {
	e.string(g.name)
	e.uint32(uint32(len(g.attrs)))
	for _, a := range g.attrs {
		e.attribute(a)
	}
	e.uint32(uint32(len(g.datasets)))
	for _, ds := range g.datasets {
		e.dataset(ds)
	}
	e.uint32(uint32(len(g.children)))
	for _, child := range g.children {
		e.group(child)
	}
}

// WriteTo encodes the container to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	e := &encoder{w: bufio.NewWriter(w)}
	e.write(fileMagic[:])
	e.uint16(fileVersion)
	e.group(f.root)
	if e.err == nil {
		e.err = e.w.Flush()
	}
	return e.n, e.err
}

// Save encodes the container to a file at path.
func (f *File) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return &WriteError{Op: "create output file " + path, Err: err}
	}
	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		return &WriteError{Op: "encode container to " + path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &WriteError{Op: "close output file " + path, Err: err}
	}
	return nil
}
