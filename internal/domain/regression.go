package domain

// LinearFit is an ordinary least squares line y = Slope*x + Intercept.
type LinearFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

func (f LinearFit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// FitLinear fits ys against xs. It reports false when the inputs differ in
// length or fewer than two distinct x values exist. Sums are centred on the
// means so large x values (unix seconds) keep their precision.
func FitLinear(xs, ys []float64) (LinearFit, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return LinearFit{}, false
	}
	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return LinearFit{}, false
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var ssr, sst float64
	for i := range xs {
		pred := slope*xs[i] + intercept
		ssr += (pred - meanY) * (pred - meanY)
		sst += (ys[i] - meanY) * (ys[i] - meanY)
	}
	// A constant series is reproduced exactly by the flat line.
	rSquared := 1.0
	if sst != 0 {
		rSquared = clamp(ssr/sst, 0, 1)
	}
	return LinearFit{Slope: slope, Intercept: intercept, RSquared: rSquared}, true
}
