package utils

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if p < 0 {
		p = -pp
		flipped = true
	}
	y = 1
	for i := 0; i < p; i++ {
		y *= x
	}
	if flipped {
		y = 1 / y
	}
	return
}

func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
