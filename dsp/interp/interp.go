package interp

// Linear2 interpolates linearly from x0 (frac = 0) to x1 (frac = 1).
func Linear2(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}

// Split returns the integer index and fractional part of pos for a table of
// n entries, clamping pos to [0, n-1]. The returned index is always a valid
// left neighbour: i+1 is in range unless n == 1.
func Split(pos float64, n int) (int, float64) {
	if n < 2 || pos <= 0 {
		return 0, 0
	}

	last := n - 1
	if pos >= float64(last) {
		return last - 1, 1
	}

	i := int(pos)

	return i, pos - float64(i)
}

// At reads x at fractional index pos, clamped to its ends. x must not be
// empty.
func At(x []float64, pos float64) float64 {
	if len(x) == 1 {
		return x[0]
	}

	i, frac := Split(pos, len(x))

	return Linear2(frac, x[i], x[i+1])
}
