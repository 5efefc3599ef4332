// Package float16 converts between float32 and IEEE-754 binary16, the
// storage format RagFile uses for dense vectors by default (spec §4.1).
//
// Only the scalar reference path is implemented: the teacher's
// compress/zstd_cgo.go / zstd_pure.go split shows how this codebase gates an
// accelerated path behind a build tag versus a portable one, but shipping a
// real F16C/NEON path requires invoking an assembler this module is built
// without ever running. Detect still reports what hardware the
// process would dispatch to, so a future assembly implementation has a
// ready-made seam (mirrors the teacher's pattern of probing capability
// independently of which code path is compiled in).
package float16

import (
	"math"

	"golang.org/x/sys/cpu"
)

// Capability names a hardware-accelerated float16 conversion path.
type Capability uint8

const (
	CapScalar Capability = iota
	CapF16C
	CapNEON
)

func (c Capability) String() string {
	switch c {
	case CapF16C:
		return "F16C"
	case CapNEON:
		return "NEON"
	default:
		return "Scalar"
	}
}

// Detect reports the float16 conversion capability available on this
// process's CPU. The compute path is always scalar (see package doc); this
// exists so callers and tests can assert on what a hardware path would be.
func Detect() Capability {
	if cpu.X86.HasF16C {
		return CapF16C
	}
	if cpu.ARM64.HasFPHP {
		return CapNEON
	}
	return CapScalar
}

const (
	signMask = 0x8000
	expMask  = 0x7c00
	fracMask = 0x03ff
	expBias  = 15
	f32Bias  = 127
)

// ToF16 converts f to IEEE-754 binary16, round-to-nearest-even, with
// subnormal support, NaN-payload canonicalization, and saturation to ±Inf on
// overflow.
func ToF16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xff) - f32Bias + expBias
	frac := bits & 0x7fffff

	switch {
	case (bits&0x7fffffff) == 0:
		return sign
	case exp >= 0x1f:
		// Overflow or already-infinite/NaN in f32.
		if (bits&0x7f800000) == 0x7f800000 && frac != 0 {
			// Canonical quiet NaN, payload collapsed.
			return sign | expMask | 0x0200
		}
		return sign | expMask // ±Inf (saturates on overflow too)
	case exp <= 0:
		// Subnormal or underflow to zero.
		if exp < -10 {
			return sign
		}
		frac |= 0x800000 // implicit leading 1
		shift := uint32(14 - exp)
		half := frac & ((1 << shift) - 1)
		mant := frac >> shift
		// Round to nearest even.
		halfway := uint32(1) << (shift - 1)
		if half > halfway || (half == halfway && mant&1 == 1) {
			mant++
		}
		return sign | uint16(mant)
	default:
		mant := frac >> 13
		roundBits := frac & 0x1fff
		const halfway = 0x1000
		if roundBits > halfway || (roundBits == halfway && mant&1 == 1) {
			mant++
			if mant == 0x400 {
				mant = 0
				exp++
				if exp >= 0x1f {
					return sign | expMask
				}
			}
		}
		return sign | uint16(exp)<<10 | uint16(mant)
	}
}

// ToF32 converts u, an IEEE-754 binary16 bit pattern, to float32.
func ToF32(u uint16) float32 {
	sign := uint32(u&signMask) << 16
	exp := uint32(u&expMask) >> 10
	frac := uint32(u & fracMask)

	switch {
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// Subnormal binary16: normalize into a binary32 exponent.
		e := int32(0)
		m := frac
		for m&0x400 == 0 {
			m <<= 1
			e--
		}
		m &= 0x3ff
		exp32 := uint32(int32(f32Bias-expBias) + 1 + e)
		return math.Float32frombits(sign | (exp32 << 23) | (m << 13))
	case exp == 0x1f && frac == 0:
		return math.Float32frombits(sign | 0x7f800000)
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | 0x00400000) // canonical quiet NaN
	default:
		exp32 := exp - expBias + f32Bias
		return math.Float32frombits(sign | (exp32 << 23) | (frac << 13))
	}
}

// EncodeSlice converts a float32 slice to float16 bit patterns.
func EncodeSlice(v []float32) []uint16 {
	out := make([]uint16, len(v))
	for i, x := range v {
		out[i] = ToF16(x)
	}
	return out
}

// DecodeSlice converts float16 bit patterns to a float32 slice.
func DecodeSlice(v []uint16) []float32 {
	out := make([]float32, len(v))
	for i, u := range v {
		out[i] = ToF32(u)
	}
	return out
}
