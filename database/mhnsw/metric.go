// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mhnsw

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Vector is an embedding indexed by the graph. Vectors are encoded through
// the IEEE-754 bit patterns of their components.
type Vector []float32

func (v Vector) EncodeRLP(w io.Writer) error {
	bits := make([]uint32, len(v))
	for i, f := range v {
		bits[i] = math.Float32bits(f)
	}
	return rlp.Encode(w, bits)
}

func (v *Vector) DecodeRLP(s *rlp.Stream) error {
	var bits []uint32
	if err := s.Decode(&bits); err != nil {
		return err
	}
	res := make(Vector, len(bits))
	for i, b := range bits {
		res[i] = math.Float32frombits(b)
	}
	*v = res
	return nil
}

// finite reports whether all components are proper numbers.
func (v Vector) finite() bool {
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}

// digest commits to the exact bit pattern of all components.
func (v Vector) digest() common.Hash {
	data := make([]byte, 0, 4*len(v))
	for _, f := range v {
		data = binary.BigEndian.AppendUint32(data, math.Float32bits(f))
	}
	return common.Sha256(data)
}

// MetricKind identifies a distance metric. It is part of the committed
// configuration of an index.
type MetricKind uint8

const (
	Euclidean MetricKind = iota + 1
	Cosine
)

func (k MetricKind) String() string {
	switch k {
	case Euclidean:
		return "euclidean"
	case Cosine:
		return "cosine"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// DistanceMetric is a deterministic distance between vectors. Smaller
// values mean more similar vectors. Vectors of different length are
// infinitely far apart.
type DistanceMetric interface {
	Kind() MetricKind
	Distance(a, b Vector) float64
}

// MetricByKind returns the metric implementation of the given kind.
func MetricByKind(kind MetricKind) (DistanceMetric, error) {
	switch kind {
	case Euclidean:
		return EuclideanDistance{}, nil
	case Cosine:
		return CosineSimilarity{}, nil
	}
	return nil, fmt.Errorf("unknown metric %v", kind)
}

// GetMetricByName resolves a metric from its name.
func GetMetricByName(name string) (DistanceMetric, error) {
	for _, kind := range []MetricKind{Euclidean, Cosine} {
		if kind.String() == name {
			return MetricByKind(kind)
		}
	}
	return nil, fmt.Errorf("unknown metric %q", name)
}

// EuclideanDistance is the L2 distance of two vectors.
type EuclideanDistance struct{}

func (EuclideanDistance) Kind() MetricKind {
	return Euclidean
}

func (EuclideanDistance) Distance(a, b Vector) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		// explicit conversions prevent fused multiply-add
		sum += float64(d * d)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity measures the angle between vectors as 1 - cos(a, b).
// If either vector has a norm of zero, the distance is exactly 1.
type CosineSimilarity struct{}

func (CosineSimilarity) Kind() MetricKind {
	return Cosine
}

func (CosineSimilarity) Distance(a, b Vector) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	dot, normA, normB := 0.0, 0.0, 0.0
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += float64(x * y)
		normA += float64(x * x)
		normB += float64(y * y)
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
