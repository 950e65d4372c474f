// Package npz reads and writes NumPy .npz archives of float64 arrays.
//
// Each array is stored uncompressed as a .npy member in little-endian C
// order, which is what numpy.savez produces and numpy.load reads back.
// Members are encoded and decoded with github.com/sbinet/npyio.
package npz

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sbinet/npyio/npy"
	npyz "github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrDType = errors.New("npz: only little-endian float64 arrays are supported")
	ErrShape = errors.New("npz: data length does not match shape")
)

// Array is a dense float64 array in row-major order.
type Array struct {
	Name  string
	Shape []int
	Data  []float64
}

func (a Array) size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Write stores arrays in a new archive at w, one member per array.
func Write(w io.Writer, arrays ...Array) error {
	zw := zip.NewWriter(w)
	for _, a := range arrays {
		if a.size() != len(a.Data) {
			return fmt.Errorf("%w: %s has %d values for shape %v", ErrShape, a.Name, len(a.Data), a.Shape)
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: a.Name + ".npy", Method: zip.Store})
		if err != nil {
			return err
		}
		if err := encode(f, a); err != nil {
			return fmt.Errorf("npz: %s: %w", a.Name, err)
		}
	}
	return zw.Close()
}

// encode hands non-empty vectors and matrices to npy.Write, which derives
// the shape from the value. npy has no n-d value type, so higher ranks and
// empty arrays get their header here.
func encode(w io.Writer, a Array) error {
	switch {
	case len(a.Data) == 0:
		return writeNPY(w, a)
	case len(a.Shape) == 1:
		return npy.Write(w, a.Data)
	case len(a.Shape) == 2:
		return npy.Write(w, mat.NewDense(a.Shape[0], a.Shape[1], a.Data))
	}
	return writeNPY(w, a)
}

var magic = []byte("\x93NUMPY")

func header(shape []int) string {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	tuple := strings.Join(dims, ", ")
	if len(shape) == 1 {
		tuple += ","
	}
	h := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", tuple)

	// magic(6) + version(2) + length(2) + header, padded to 64 bytes
	total := 10 + len(h) + 1
	if pad := total % 64; pad != 0 {
		h += strings.Repeat(" ", 64-pad)
	}
	return h + "\n"
}

func writeNPY(w io.Writer, a Array) error {
	h := header(a.Shape)
	buf := make([]byte, 0, 10+len(h)+8*len(a.Data))
	buf = append(buf, magic...)
	buf = append(buf, 1, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(h)))
	buf = append(buf, h...)
	for _, v := range a.Data {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// Read loads every member of an archive held in r. Names are returned
// without the .npy suffix.
func Read(r io.ReaderAt, size int64) (map[string]Array, error) {
	zr, err := npyz.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Array)
	for _, key := range zr.Keys() {
		name := strings.TrimSuffix(key, ".npy")
		hdr := zr.Header(key)
		if hdr == nil {
			return nil, fmt.Errorf("npz: %s: missing header", key)
		}
		if hdr.Descr.Type != "<f8" {
			return nil, fmt.Errorf("%s: %w: got %s", key, ErrDType, hdr.Descr.Type)
		}

		a := Array{Name: name, Shape: append([]int(nil), hdr.Descr.Shape...)}
		if err := zr.Read(key, &a.Data); err != nil {
			return nil, fmt.Errorf("npz: %s: %w", key, err)
		}
		if len(a.Data) != a.size() {
			return nil, fmt.Errorf("%s: %w: %d values for shape %v", key, ErrShape, len(a.Data), a.Shape)
		}
		out[name] = a
	}
	return out, nil
}
