package ncwriter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf"
)

func TestEncodeMagicAndPadding(t *testing.T) {
	f := NewFile()
	y, err := f.AddDim("y", 3)
	if err != nil {
		t.Fatalf("AddDim failed: %v", err)
	}
	v, err := f.AddVar("image1", Short, y)
	if err != nil {
		t.Fatalf("AddVar failed: %v", err)
	}
	v.SetShorts([]int16{1, -2, 3})

	encoded, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.HasPrefix(encoded, []byte{'C', 'D', 'F', 2}) {
		t.Fatalf("bad magic: % x", encoded[:4])
	}
	if len(encoded)%4 != 0 {
		t.Fatalf("encoded length %d not 4-byte aligned", len(encoded))
	}
}

func TestRoundTripThroughReader(t *testing.T) {
	f := NewFile()
	y, err := f.AddDim("y", 2)
	if err != nil {
		t.Fatalf("AddDim failed: %v", err)
	}
	x, err := f.AddDim("x", 3)
	if err != nil {
		t.Fatalf("AddDim failed: %v", err)
	}

	f.AddGlobalAttr("source", "pps1c")
	f.AddGlobalAttr("orbit_number", int32(99999))

	image, err := f.AddVar("image1", Short, y, x)
	if err != nil {
		t.Fatalf("AddVar failed: %v", err)
	}
	image.AddAttr("scale_factor", float32(0.01))
	image.AddAttr("add_offset", float64(273.15))
	image.AddAttr("_FillValue", int16(-32767))
	image.AddAttr("units", "K")
	image.SetShorts([]int16{100, 200, 300, -32767, 500, 600})

	lat, err := f.AddVar("lat", Float, y, x)
	if err != nil {
		t.Fatalf("AddVar failed: %v", err)
	}
	lat.SetFloats([]float32{50.0, 50.1, 50.2, 49.0, 49.1, 49.2})

	times, err := f.AddVar("scanline_timestamps", Double, y)
	if err != nil {
		t.Fatalf("AddVar failed: %v", err)
	}
	times.SetDoubles([]float64{0, 500})

	path := filepath.Join(t.TempDir(), "roundtrip.nc")
	if err := f.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	nc, err := netcdf.Open(path)
	if err != nil {
		t.Fatalf("reader rejected the file: %v", err)
	}
	defer nc.Close()

	source, has := nc.Attributes().Get("source")
	if !has || source != "pps1c" {
		t.Fatalf("global attr source = %v (present %v)", source, has)
	}

	vr, err := nc.GetVariable("image1")
	if err != nil {
		t.Fatalf("GetVariable(image1) failed: %v", err)
	}
	values, ok := vr.Values.([][]int16)
	if !ok {
		t.Fatalf("image1 values have type %T", vr.Values)
	}
	if len(values) != 2 || len(values[0]) != 3 {
		t.Fatalf("image1 has shape %dx%d", len(values), len(values[0]))
	}
	if values[1][0] != -32767 || values[1][2] != 600 {
		t.Fatalf("image1 row 1 = %v", values[1])
	}
	units, has := vr.Attributes.Get("units")
	if !has || units != "K" {
		t.Fatalf("image1 units = %v", units)
	}

	lv, err := nc.GetVariable("lat")
	if err != nil {
		t.Fatalf("GetVariable(lat) failed: %v", err)
	}
	latValues, ok := lv.Values.([][]float32)
	if !ok {
		t.Fatalf("lat values have type %T", lv.Values)
	}
	if latValues[0][1] != 50.1 {
		t.Fatalf("lat[0][1] = %g", latValues[0][1])
	}

	tv, err := nc.GetVariable("scanline_timestamps")
	if err != nil {
		t.Fatalf("GetVariable(scanline_timestamps) failed: %v", err)
	}
	timeValues, ok := tv.Values.([]float64)
	if !ok {
		t.Fatalf("scanline_timestamps values have type %T", tv.Values)
	}
	if timeValues[1] != 500 {
		t.Fatalf("scanline_timestamps[1] = %g", timeValues[1])
	}
}

func TestEncodeRejectsBadPayloads(t *testing.T) {
	f := NewFile()
	y, err := f.AddDim("y", 4)
	if err != nil {
		t.Fatalf("AddDim failed: %v", err)
	}

	v, err := f.AddVar("short_values", Short, y)
	if err != nil {
		t.Fatalf("AddVar failed: %v", err)
	}
	v.SetShorts([]int16{1, 2})
	if _, err := f.Encode(); err == nil {
		t.Fatal("expected error for wrong payload length")
	}

	v.SetShorts([]int16{1, 2, 3, 4})
	if _, err := f.Encode(); err != nil {
		t.Fatalf("Encode failed after fixing payload: %v", err)
	}

	w, err := f.AddVar("float_values", Float, y)
	if err != nil {
		t.Fatalf("AddVar failed: %v", err)
	}
	w.SetShorts([]int16{1, 2, 3, 4})
	if _, err := f.Encode(); err == nil {
		t.Fatal("expected error for mismatched payload type")
	}
}

func TestDuplicateNamesRejected(t *testing.T) {
	f := NewFile()
	if _, err := f.AddDim("y", 2); err != nil {
		t.Fatalf("AddDim failed: %v", err)
	}
	if _, err := f.AddDim("y", 3); err == nil {
		t.Fatal("expected error for duplicate dimension")
	}
	if _, err := f.AddDim("z", 0); err == nil {
		t.Fatal("expected error for zero-length dimension")
	}

	y, _ := f.AddDim("x", 2)
	if _, err := f.AddVar("v", Short, y); err != nil {
		t.Fatalf("AddVar failed: %v", err)
	}
	if _, err := f.AddVar("v", Short, y); err == nil {
		t.Fatal("expected error for duplicate variable")
	}

	other := NewFile()
	foreign, _ := other.AddDim("q", 2)
	if _, err := f.AddVar("w", Short, foreign); err == nil {
		t.Fatal("expected error for foreign dimension")
	}
}
