package avhrr

import (
	"fmt"
	"math"
	"strconv"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// grid is a 2-D dataset unpacked to physical float64 values with NaN fill.
type grid struct {
	rows, cols int
	values     []float64
}

// stringAttrs flattens an attribute map to strings; numeric attributes are
// formatted the way the CF writer would.
func stringAttrs(am api.AttributeMap) map[string]string {
	out := make(map[string]string)
	if am == nil {
		return out
	}
	for _, key := range am.Keys() {
		value, ok := am.Get(key)
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			out[key] = v
		case float32:
			out[key] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		case float64:
			out[key] = strconv.FormatFloat(v, 'g', -1, 64)
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

// attrFloat reads a numeric attribute, tolerating the scalar and
// single-element slice forms readers produce for classic files.
func attrFloat(am api.AttributeMap, name string, fallback float64) float64 {
	if am == nil {
		return fallback
	}
	value, ok := am.Get(name)
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case []int16:
		if len(v) == 1 {
			return float64(v[0])
		}
	case []float32:
		if len(v) == 1 {
			return float64(v[0])
		}
	case []float64:
		if len(v) == 1 {
			return v[0]
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// readGrid unpacks a 2-D variable, applying scale_factor, add_offset, and
// _FillValue when present.
func readGrid(v *api.Variable) (*grid, error) {
	scale := attrFloat(v.Attributes, "scale_factor", 1.0)
	offset := attrFloat(v.Attributes, "add_offset", 0.0)
	fill := attrFloat(v.Attributes, "_FillValue", math.NaN())

	var g *grid
	switch values := v.Values.(type) {
	case [][]int16:
		g = newGrid(len(values), rowLen(len(values), func(i int) int { return len(values[i]) }))
		for r, row := range values {
			for c, raw := range row {
				g.set(r, c, unpack(float64(raw), scale, offset, fill))
			}
		}
	case [][]int32:
		g = newGrid(len(values), rowLen(len(values), func(i int) int { return len(values[i]) }))
		for r, row := range values {
			for c, raw := range row {
				g.set(r, c, unpack(float64(raw), scale, offset, fill))
			}
		}
	case [][]float32:
		g = newGrid(len(values), rowLen(len(values), func(i int) int { return len(values[i]) }))
		for r, row := range values {
			for c, raw := range row {
				g.set(r, c, unpack(float64(raw), scale, offset, fill))
			}
		}
	case [][]float64:
		g = newGrid(len(values), rowLen(len(values), func(i int) int { return len(values[i]) }))
		for r, row := range values {
			for c, raw := range row {
				g.set(r, c, unpack(raw, scale, offset, fill))
			}
		}
	default:
		return nil, fmt.Errorf("unsupported 2-D payload type %T", v.Values)
	}
	if g.rows == 0 || g.cols == 0 {
		return nil, fmt.Errorf("empty 2-D dataset")
	}
	return g, nil
}

func rowLen(rows int, width func(int) int) int {
	if rows == 0 {
		return 0
	}
	return width(0)
}

func newGrid(rows, cols int) *grid {
	return &grid{rows: rows, cols: cols, values: make([]float64, rows*cols)}
}

func (g *grid) set(r, c int, value float64) {
	g.values[r*g.cols+c] = value
}

func unpack(raw, scale, offset, fill float64) float64 {
	if !math.IsNaN(fill) && raw == fill {
		return math.NaN()
	}
	return raw*scale + offset
}

// float32Grid converts to the scene payload type.
func (g *grid) float32Values() []float32 {
	out := make([]float32, len(g.values))
	for i, v := range g.values {
		out[i] = float32(v)
	}
	return out
}

// readVector reads a 1-D variable as int64 values, for timestamps and other
// per-scanline data.
func readVector(v *api.Variable) ([]int64, error) {
	switch values := v.Values.(type) {
	case []int16:
		out := make([]int64, len(values))
		for i, x := range values {
			out[i] = int64(x)
		}
		return out, nil
	case []int32:
		out := make([]int64, len(values))
		for i, x := range values {
			out[i] = int64(x)
		}
		return out, nil
	case []int64:
		return append([]int64(nil), values...), nil
	case []float32:
		out := make([]int64, len(values))
		for i, x := range values {
			out[i] = int64(math.Round(float64(x)))
		}
		return out, nil
	case []float64:
		out := make([]int64, len(values))
		for i, x := range values {
			out[i] = int64(math.Round(x))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported 1-D payload type %T", v.Values)
	}
}

// readScalarInt reads a scalar integer variable, tolerating the bare and
// single-element slice forms readers produce.
func readScalarInt(v *api.Variable) (int32, error) {
	switch value := v.Values.(type) {
	case int16:
		return int32(value), nil
	case int32:
		return value, nil
	case int64:
		return int32(value), nil
	case []int16:
		if len(value) == 1 {
			return int32(value[0]), nil
		}
	case []int32:
		if len(value) == 1 {
			return value[0], nil
		}
	case []int64:
		if len(value) == 1 {
			return int32(value[0]), nil
		}
	}
	return 0, fmt.Errorf("unsupported scalar payload type %T", v.Values)
}

// readIntGrid reads a 2-D integer variable without unpacking, for flag
// datasets.
func readIntGrid(v *api.Variable) (rows, cols int, values []int32, err error) {
	switch data := v.Values.(type) {
	case [][]int16:
		rows = len(data)
		cols = rowLen(rows, func(i int) int { return len(data[i]) })
		values = make([]int32, 0, rows*cols)
		for _, row := range data {
			for _, x := range row {
				values = append(values, int32(x))
			}
		}
	case [][]int32:
		rows = len(data)
		cols = rowLen(rows, func(i int) int { return len(data[i]) })
		values = make([]int32, 0, rows*cols)
		for _, row := range data {
			values = append(values, row...)
		}
	default:
		return 0, 0, nil, fmt.Errorf("unsupported flag payload type %T", v.Values)
	}
	return rows, cols, values, nil
}
