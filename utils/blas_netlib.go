//go:build netlib
// +build netlib

package utils

// Build with -tags netlib and CGO_LDFLAGS="-lopenblas" to run the dense LU solver on OpenBLAS.

import (
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

func init() {
	blas64.Use(netblas.Implementation{})
}
