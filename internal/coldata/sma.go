package coldata

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/windrow/tsfile/internal/tsrow"
)

// Agg is a column's per-block summary (sum/min/max/count), written to the
// .sma file for any column with CFlagSmaOn set and at least one non-null
// value. Sum is only meaningful for numeric types; Min/Max compare with
// tsrow.CompareValue and so apply uniformly across types.
type Agg struct {
	Sum   float64
	Min   tsrow.Value
	Max   tsrow.Value
	Count int64
}

// ComputeAgg computes the SMA for one column's values. The caller is
// expected to have already checked ColData.HasSMA.
func ComputeAgg(col *tsrow.ColData) Agg {
	agg := Agg{Min: tsrow.NullValue(), Max: tsrow.NullValue()}
	first := true
	for _, v := range col.Values {
		if v.IsNull() {
			continue
		}
		agg.Count++
		switch v.Type {
		case tsrow.TypeInt64:
			agg.Sum += float64(v.I64)
		case tsrow.TypeDouble:
			agg.Sum += v.F64
		}
		if first || tsrow.CompareValue(v, agg.Min) < 0 {
			agg.Min = v
		}
		if first || tsrow.CompareValue(v, agg.Max) > 0 {
			agg.Max = v
		}
		first = false
	}
	return agg
}

// aggRecordSize is the fixed wire size of one column's encoded Agg: cid
// (4) + sum (8) + min (1 type + 8 payload) + max (1 type + 8 payload) +
// count (8). Min/Max of TypeBinary columns are not representable in this
// fixed-width record and are written as TypeNull — SMA on text/binary
// columns is a known limitation, not expected to be load-bearing since
// SMA exists to accelerate numeric aggregate pushdown.
const aggRecordSize = 4 + 8 + 9 + 9 + 8

func putFixedValue(dst []byte, v tsrow.Value) []byte {
	switch v.Type {
	case tsrow.TypeInt64:
		dst = append(dst, byte(tsrow.TypeInt64))
		return binary.LittleEndian.AppendUint64(dst, uint64(v.I64))
	case tsrow.TypeDouble:
		dst = append(dst, byte(tsrow.TypeDouble))
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v.F64))
	case tsrow.TypeBool:
		dst = append(dst, byte(tsrow.TypeBool))
		b := uint64(0)
		if v.Bool {
			b = 1
		}
		return binary.LittleEndian.AppendUint64(dst, b)
	default:
		dst = append(dst, byte(tsrow.TypeNull))
		return binary.LittleEndian.AppendUint64(dst, 0)
	}
}

func getFixedValue(src []byte) tsrow.Value {
	vtype := tsrow.ValueType(src[0])
	bits := binary.LittleEndian.Uint64(src[1:])
	switch vtype {
	case tsrow.TypeInt64:
		return tsrow.Int64Value(int64(bits))
	case tsrow.TypeDouble:
		return tsrow.DoubleValue(math.Float64frombits(bits))
	case tsrow.TypeBool:
		return tsrow.BoolValue(bits != 0)
	default:
		return tsrow.NullValue()
	}
}

// PutAggRecord appends cid's fixed-size encoded Agg to dst.
func PutAggRecord(dst []byte, cid int32, agg Agg) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(cid))
	dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(agg.Sum))
	dst = putFixedValue(dst, agg.Min)
	dst = putFixedValue(dst, agg.Max)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(agg.Count))
	return dst
}

// AggEntry pairs a decoded Agg with the column cid it summarizes.
type AggEntry struct {
	Cid int32
	Agg Agg
}

// DecodeAggSequence decodes a concatenated sequence of fixed-size Agg
// records until data is exactly exhausted; a residual partial record is
// a corruption error.
func DecodeAggSequence(data []byte) ([]AggEntry, error) {
	if len(data)%aggRecordSize != 0 {
		return nil, fmt.Errorf("coldata: sma sequence length %d is not a multiple of record size %d", len(data), aggRecordSize)
	}
	n := len(data) / aggRecordSize
	out := make([]AggEntry, n)
	for i := range n {
		rec := data[i*aggRecordSize:]
		cid := int32(binary.LittleEndian.Uint32(rec))
		sum := math.Float64frombits(binary.LittleEndian.Uint64(rec[4:]))
		min := getFixedValue(rec[12:])
		max := getFixedValue(rec[21:])
		count := int64(binary.LittleEndian.Uint64(rec[30:]))
		out[i] = AggEntry{Cid: cid, Agg: Agg{Sum: sum, Min: min, Max: max, Count: count}}
	}
	return out, nil
}
