package ncwriter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Classic format tag words.
const (
	tagDimension = 0x0A
	tagVariable  = 0x0B
	tagAttribute = 0x0C
)

// Encode serializes the file in the 64-bit offset classic format (CDF-2).
func (f *File) Encode() ([]byte, error) {
	for _, v := range f.vars {
		if err := f.checkPayload(v); err != nil {
			return nil, err
		}
	}

	// First pass with zero offsets fixes the header length, second pass
	// fills in the real data offsets. Variable begins are 8 bytes in
	// CDF-2 regardless of value, so the length does not change.
	header, err := f.encodeHeader()
	if err != nil {
		return nil, err
	}
	offset := uint64(pad4(len(header)))
	for _, v := range f.vars {
		v.begin = offset
		offset += uint64(v.vsize())
	}
	header, err = f.encodeHeader()
	if err != nil {
		return nil, err
	}

	out := bytes.NewBuffer(make([]byte, 0, int(offset)))
	out.Write(header)
	padTo(out, pad4(len(header)))
	for _, v := range f.vars {
		start := out.Len()
		writePayload(out, v)
		padTo(out, start+v.vsize())
	}
	return out.Bytes(), nil
}

func (f *File) encodeHeader() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("CDF")
	b.WriteByte(2) // 64-bit offset version

	writeUint32(&b, 0) // numrecs, no record dimension

	if len(f.dims) == 0 {
		writeUint32(&b, 0)
		writeUint32(&b, 0)
	} else {
		writeUint32(&b, tagDimension)
		writeUint32(&b, uint32(len(f.dims)))
		for _, d := range f.dims {
			writeName(&b, d.name)
			writeUint32(&b, uint32(d.length))
		}
	}

	if err := writeAttrList(&b, f.gatts); err != nil {
		return nil, err
	}

	if len(f.vars) == 0 {
		writeUint32(&b, 0)
		writeUint32(&b, 0)
	} else {
		writeUint32(&b, tagVariable)
		writeUint32(&b, uint32(len(f.vars)))
		for _, v := range f.vars {
			writeName(&b, v.name)
			writeUint32(&b, uint32(len(v.dims)))
			for _, d := range v.dims {
				writeUint32(&b, uint32(d.id))
			}
			if err := writeAttrList(&b, v.attrs); err != nil {
				return nil, fmt.Errorf("variable %s: %w", v.name, err)
			}
			writeUint32(&b, uint32(v.typ))
			writeUint32(&b, uint32(v.vsize()))
			writeUint64(&b, v.begin)
		}
	}
	return b.Bytes(), nil
}

// vsize is the padded byte size of the variable's data block.
func (v *Var) vsize() int {
	return pad4(v.nelems() * v.typ.size())
}

func (f *File) checkPayload(v *Var) error {
	want := v.nelems()
	var got int
	switch data := v.data.(type) {
	case []int16:
		if v.typ != Short {
			return fmt.Errorf("variable %s: int16 payload for %s variable", v.name, v.typ)
		}
		got = len(data)
	case []int32:
		if v.typ != Int {
			return fmt.Errorf("variable %s: int32 payload for %s variable", v.name, v.typ)
		}
		got = len(data)
	case []float32:
		if v.typ != Float {
			return fmt.Errorf("variable %s: float32 payload for %s variable", v.name, v.typ)
		}
		got = len(data)
	case []float64:
		if v.typ != Double {
			return fmt.Errorf("variable %s: float64 payload for %s variable", v.name, v.typ)
		}
		got = len(data)
	case []byte:
		if v.typ != Byte && v.typ != Char {
			return fmt.Errorf("variable %s: byte payload for %s variable", v.name, v.typ)
		}
		got = len(data)
	case nil:
		return fmt.Errorf("variable %s: no data set", v.name)
	default:
		return fmt.Errorf("variable %s: unsupported payload type %T", v.name, v.data)
	}
	if got != want {
		return fmt.Errorf("variable %s: %d values for %d cells", v.name, got, want)
	}
	return nil
}

func writePayload(b *bytes.Buffer, v *Var) {
	switch data := v.data.(type) {
	case []int16:
		for _, x := range data {
			writeUint16(b, uint16(x))
		}
	case []int32:
		for _, x := range data {
			writeUint32(b, uint32(x))
		}
	case []float32:
		for _, x := range data {
			writeUint32(b, math.Float32bits(x))
		}
	case []float64:
		for _, x := range data {
			writeUint64(b, math.Float64bits(x))
		}
	case []byte:
		b.Write(data)
	}
}

func writeAttrList(b *bytes.Buffer, attrs []Attr) error {
	if len(attrs) == 0 {
		writeUint32(b, 0)
		writeUint32(b, 0)
		return nil
	}
	writeUint32(b, tagAttribute)
	writeUint32(b, uint32(len(attrs)))
	for _, a := range attrs {
		if err := writeAttr(b, a); err != nil {
			return err
		}
	}
	return nil
}

func writeAttr(b *bytes.Buffer, a Attr) error {
	writeName(b, a.Name)
	switch value := a.Value.(type) {
	case string:
		writeUint32(b, uint32(Char))
		writeUint32(b, uint32(len(value)))
		start := b.Len()
		b.WriteString(value)
		padTo(b, start+pad4(len(value)))
	case int16:
		return writeAttrValues(b, Short, []int16{value})
	case []int16:
		return writeAttrValues(b, Short, value)
	case int32:
		return writeAttrValues(b, Int, []int32{value})
	case []int32:
		return writeAttrValues(b, Int, value)
	case float32:
		return writeAttrValues(b, Float, []float32{value})
	case []float32:
		return writeAttrValues(b, Float, value)
	case float64:
		return writeAttrValues(b, Double, []float64{value})
	case []float64:
		return writeAttrValues(b, Double, value)
	default:
		return fmt.Errorf("attribute %s: unsupported value type %T", a.Name, a.Value)
	}
	return nil
}

func writeAttrValues[T int16 | int32 | float32 | float64](b *bytes.Buffer, typ Type, values []T) error {
	writeUint32(b, uint32(typ))
	writeUint32(b, uint32(len(values)))
	start := b.Len()
	for _, v := range values {
		switch typ {
		case Short:
			writeUint16(b, uint16(v))
		case Int:
			writeUint32(b, uint32(v))
		case Float:
			writeUint32(b, math.Float32bits(float32(v)))
		case Double:
			writeUint64(b, math.Float64bits(float64(v)))
		}
	}
	padTo(b, start+pad4(b.Len()-start))
	return nil
}

func writeName(b *bytes.Buffer, name string) {
	writeUint32(b, uint32(len(name)))
	start := b.Len()
	b.WriteString(name)
	padTo(b, start+pad4(len(name)))
}

func writeUint16(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}

func writeUint32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func writeUint64(b *bytes.Buffer, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	b.Write(buf[:])
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func padTo(b *bytes.Buffer, target int) {
	for b.Len() < target {
		b.WriteByte(0)
	}
}
