package ncwriter

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// Type is a classic-model netCDF external data type.
type Type uint32

const (
	Byte   Type = 1
	Char   Type = 2
	Short  Type = 3
	Int    Type = 4
	Float  Type = 5
	Double Type = 6
)

func (t Type) size() int {
	switch t {
	case Byte, Char:
		return 1
	case Short:
		return 2
	case Int, Float:
		return 4
	case Double:
		return 8
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case Byte:
		return "byte"
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// Attr is a named attribute. Value must be a string, an int16/int32/float32/
// float64, or a slice of one of those numeric types.
type Attr struct {
	Name  string
	Value any
}

// Dim is a named dimension of fixed length.
type Dim struct {
	name   string
	length int
	id     int
}

// Name returns the dimension name.
func (d *Dim) Name() string { return d.name }

// Len returns the dimension length.
func (d *Dim) Len() int { return d.length }

// Var is a variable definition plus its data payload.
type Var struct {
	name  string
	typ   Type
	dims  []*Dim
	attrs []Attr
	data  any
	begin uint64
}

// AddAttr appends a dataset attribute.
func (v *Var) AddAttr(name string, value any) {
	v.attrs = append(v.attrs, Attr{Name: name, Value: value})
}

func (v *Var) nelems() int {
	n := 1
	for _, d := range v.dims {
		n *= d.length
	}
	return n
}

// SetShorts sets the payload of a Short variable.
func (v *Var) SetShorts(data []int16) { v.data = data }

// SetInts sets the payload of an Int variable.
func (v *Var) SetInts(data []int32) { v.data = data }

// SetFloats sets the payload of a Float variable.
func (v *Var) SetFloats(data []float32) { v.data = data }

// SetDoubles sets the payload of a Double variable.
func (v *Var) SetDoubles(data []float64) { v.data = data }

// SetBytes sets the payload of a Byte or Char variable.
func (v *Var) SetBytes(data []byte) { v.data = data }

// File is an in-memory netCDF file being assembled. All dimensions are
// fixed; the unlimited record dimension is not used.
type File struct {
	dims  []*Dim
	gatts []Attr
	vars  []*Var
}

// NewFile returns an empty file.
func NewFile() *File {
	return &File{}
}

// AddDim registers a dimension. Names must be unique.
func (f *File) AddDim(name string, length int) (*Dim, error) {
	if length <= 0 {
		return nil, fmt.Errorf("dimension %s: non-positive length %d", name, length)
	}
	for _, d := range f.dims {
		if d.name == name {
			return nil, fmt.Errorf("dimension %s already defined", name)
		}
	}
	d := &Dim{name: name, length: length, id: len(f.dims)}
	f.dims = append(f.dims, d)
	return d, nil
}

// AddGlobalAttr appends a global attribute.
func (f *File) AddGlobalAttr(name string, value any) {
	f.gatts = append(f.gatts, Attr{Name: name, Value: value})
}

// AddVar defines a variable over previously registered dimensions.
func (f *File) AddVar(name string, typ Type, dims ...*Dim) (*Var, error) {
	if typ.size() == 0 {
		return nil, fmt.Errorf("variable %s: unknown type %d", name, typ)
	}
	for _, v := range f.vars {
		if v.name == name {
			return nil, fmt.Errorf("variable %s already defined", name)
		}
	}
	for _, d := range dims {
		if d.id >= len(f.dims) || f.dims[d.id] != d {
			return nil, fmt.Errorf("variable %s: dimension %s not registered with this file", name, d.name)
		}
	}
	v := &Var{name: name, typ: typ, dims: dims}
	f.vars = append(f.vars, v)
	return v, nil
}

// WriteFile encodes the file and places it atomically at path.
func (f *File) WriteFile(path string) error {
	encoded, err := f.Encode()
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write netcdf: %w", err)
	}
	return nil
}
