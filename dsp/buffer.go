package dsp

import "math"

// A Buffer holds one block of one signal.
type Buffer []float64

func NewBuffer(p Params) Buffer { return make(Buffer, p.BlockSize) }

func (z Buffer) Zero() Buffer {
	for i := range z {
		z[i] = 0
	}
	return z
}

func (z Buffer) Fill(f float64) Buffer {
	for i := range z {
		z[i] = f
	}
	return z
}

func (z Buffer) Add(x Buffer, y Buffer) Buffer {
	for i := range z {
		z[i] = x[i] + y[i]
	}
	return z
}

func (z Buffer) Sub(x Buffer, y Buffer) Buffer {
	for i := range z {
		z[i] = x[i] - y[i]
	}
	return z
}

func (z Buffer) Mul(x Buffer, y Buffer) Buffer {
	for i := range z {
		z[i] = x[i] * y[i]
	}
	return z
}

func (z Buffer) AddX(x Buffer, f float64) Buffer {
	for i := range z {
		z[i] = x[i] + f
	}
	return z
}

func (z Buffer) MulX(x Buffer, f float64) Buffer {
	for i := range z {
		z[i] = x[i] * f
	}
	return z
}

func (z Buffer) Tanh(x Buffer) Buffer {
	for i := range z {
		z[i] = math.Tanh(x[i])
	}
	return z
}
