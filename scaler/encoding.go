package scaler

import (
	"encoding/binary"
	"errors"
	"math"
)

// MarshalBinary stores: kind(uint32), dim(uint32), center(float64[dim]),
// spread(float64[dim]), ndeg(uint32), degenerate(uint32[ndeg]).
func (p *Params) MarshalBinary() ([]byte, error) {
	dim := len(p.Center)
	out := make([]byte, 0, 12+16*dim+4*len(p.Degenerate))
	putU32 := func(v uint32) { out = binary.LittleEndian.AppendUint32(out, v) }
	putF64 := func(v float64) { out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v)) }
	putU32(uint32(p.Kind))
	putU32(uint32(dim))
	for _, v := range p.Center {
		putF64(v)
	}
	for _, v := range p.Spread {
		putF64(v)
	}
	putU32(uint32(len(p.Degenerate)))
	for _, j := range p.Degenerate {
		putU32(uint32(j))
	}
	return out, nil
}

// UnmarshalBinary restores parameters written by MarshalBinary.
func (p *Params) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return errors.New("scaler: invalid data")
	}
	off := 0
	need := func(n int) bool { return off+n <= len(data) }
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(data[off:]); off += 4; return v }
	getF64 := func() float64 { v := math.Float64frombits(binary.LittleEndian.Uint64(data[off:])); off += 8; return v }

	kind := Kind(getU32())
	if kind != Standard && kind != MinMax {
		return errors.New("scaler: invalid kind")
	}
	dim := int(getU32())
	if !need(16*dim + 4) {
		return errors.New("scaler: truncated")
	}
	center := make([]float64, dim)
	spread := make([]float64, dim)
	for j := range center {
		center[j] = getF64()
	}
	for j := range spread {
		spread[j] = getF64()
		if spread[j] == 0 {
			return errors.New("scaler: zero spread")
		}
	}
	ndeg := int(getU32())
	if !need(4 * ndeg) {
		return errors.New("scaler: truncated degenerate list")
	}
	var degenerate []int
	for n := 0; n < ndeg; n++ {
		degenerate = append(degenerate, int(getU32()))
	}
	p.Kind, p.Center, p.Spread, p.Degenerate = kind, center, spread, degenerate
	return nil
}
