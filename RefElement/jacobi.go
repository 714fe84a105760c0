package RefElement

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGL returns the N+1 Gauss-Lobatto points of the Jacobi polynomial
// P^(alpha,beta)_N on [-1,1], endpoints included.
func JacobiGL(alpha, beta float64, N int) (x []float64) {
	if N < 1 {
		panic("Gauss-Lobatto points need N >= 1")
	}
	x = make([]float64, N+1)
	x[0], x[N] = -1, 1
	if N == 1 {
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	copy(x[1:N], xint)
	return
}

// JacobiGQ returns the N+1 Gauss quadrature points and weights for the
// weight (1-x)^alpha (1+x)^beta, computed from the symmetric Jacobi matrix
// (Golub-Welsch).
func JacobiGQ(alpha, beta float64, N int) (x, w []float64) {
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{2.}
		return
	}
	var (
		h1 = make([]float64, N+1)
		JJ = mat.NewSymDense(N+1, nil)
	)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	// main diagonal: -1/2*(alpha^2-beta^2)/(h1+2)/h1
	fac := -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, fac/(h1[i]*(h1[i]+2.)))
	}
	if alpha+beta < 10*1.e-16 {
		JJ.SetSym(0, 0, 0)
	}
	// first off diagonal
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := h1[i]
		d1 := 2. / (val + 2.)
		d1 *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
		JJ.SetSym(i, i+1, d1)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	VV := mat.NewDense(N+1, N+1, nil)
	eig.VectorsTo(VV)
	w = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for i := range w {
		v := VV.At(0, i)
		w[i] = v * v * g0
	}
	return
}

// JacobiP evaluates the orthonormal Jacobi polynomial of order N at r.
func JacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	var (
		Nc = len(r)
		PL = make([][]float64, N+1)
		ab = alpha + beta
	)
	PL[0] = make([]float64, Nc)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	for i := range PL[0] {
		PL[0][i] = rg
	}
	if N == 0 {
		return PL[0]
	}
	PL[1] = make([]float64, Nc)
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	for i := range PL[1] {
		PL[1][i] = rg1 * ((ab+2.0)*r[i]/2.0 + (alpha-beta)/2.0)
	}
	aold := 2.0 * math.Sqrt((alpha+1.)*(beta+1.)/(ab+3.0)) / (ab + 2.0)
	// three term recurrence
	for i := 1; i < N; i++ {
		fi := float64(i)
		h1 := 2.0*fi + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt((fi+1)*(fi+1+ab)*(fi+1+alpha)*(fi+1+beta)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		PL[i+1] = make([]float64, Nc)
		for j := 0; j < Nc; j++ {
			PL[i+1][j] = (-aold*PL[i-1][j] + (r[j]-bnew)*PL[i][j]) / anew
		}
		aold = anew
	}
	return PL[N]
}

func GradJacobiP(r []float64, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		return make([]float64, len(r))
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i := range p {
		p[i] *= fac
	}
	return
}

// Vandermonde1D is V(i,j) = P_j(r_i) for the Legendre basis of order N.
func Vandermonde1D(N int, r []float64) (V *mat.Dense) {
	V = mat.NewDense(len(r), N+1, nil)
	for j := 0; j < N+1; j++ {
		V.SetCol(j, JacobiP(r, 0, 0, j))
	}
	return
}

func GradVandermonde1D(r []float64, N int) (Vr *mat.Dense) {
	Vr = mat.NewDense(len(r), N+1, nil)
	for j := 0; j < N+1; j++ {
		Vr.SetCol(j, GradJacobiP(r, 0, 0, j))
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Gamma(alpha+1.) * math.Gamma(beta+1.) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	return (alpha + 1.) * (beta + 1.) * gamma0(alpha, beta) / (alpha + beta + 3.0)
}
