package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PointAndData is a tiny struct to facilitate returning nearest neighbors in a neat way.
type PointAndData struct {
	P r3.Vector
	D Data
}

// storage is the backing store of a basicPointCloud.
type storage interface {
	Size() int
	Set(p r3.Vector, d Data) error
	At(x, y, z float64) (Data, bool)
	Iterate(numBatches, myBatch int, fn func(p r3.Vector, d Data) bool)
}

// matrixStorage keeps points in insertion order with an index for position lookups.
type matrixStorage struct {
	points   []PointAndData
	indexMap map[r3.Vector]uint
}

func (ms *matrixStorage) Size() int {
	return len(ms.points)
}

func (ms *matrixStorage) Set(p r3.Vector, d Data) error {
	if val, found := ms.indexMap[p]; found {
		ms.points[val].D = d
	} else {
		ms.points = append(ms.points, PointAndData{p, d})
		ms.indexMap[p] = uint(len(ms.points) - 1)
	}
	return nil
}

func (ms *matrixStorage) At(x, y, z float64) (Data, bool) {
	pos := r3.Vector{X: x, Y: y, Z: z}
	if val, found := ms.indexMap[pos]; found {
		return ms.points[val].D, true
	}
	return nil, false
}

func (ms *matrixStorage) Iterate(numBatches, myBatch int, fn func(p r3.Vector, d Data) bool) {
	iterate(ms.points, numBatches, myBatch, fn)
}

// sequenceStorage appends every point, so coinciding points are all kept. Lookups by position
// see the most recent one.
type sequenceStorage struct {
	matrixStorage
}

func (ss *sequenceStorage) Set(p r3.Vector, d Data) error {
	ss.points = append(ss.points, PointAndData{p, d})
	ss.indexMap[p] = uint(len(ss.points) - 1)
	return nil
}

func iterate(points []PointAndData, numBatches, myBatch int, fn func(p r3.Vector, d Data) bool) {
	if numBatches > 0 {
		for i := myBatch; i < len(points); i += numBatches {
			if !fn(points[i].P, points[i].D) {
				return
			}
		}
		return
	}
	for _, pd := range points {
		if !fn(pd.P, pd.D) {
			return
		}
	}
}

// basicPointCloud is the basic implementation of the PointCloud interface backed by
// an ordered slice of points.
type basicPointCloud struct {
	points storage
	meta   MetaData
}

// New returns an empty PointCloud backed by a basicPointCloud.
func New() PointCloud {
	return NewWithPrealloc(0)
}

// NewWithPrealloc returns an empty, preallocated PointCloud backed by a basicPointCloud.
func NewWithPrealloc(size int) PointCloud {
	return &basicPointCloud{
		points: newMatrixStorage(size),
		meta:   NewMetaData(),
	}
}

// NewSequence returns an empty, preallocated PointCloud in which setting a point that is already
// present adds it again instead of replacing it. Size counts every point set.
func NewSequence(size int) PointCloud {
	return &basicPointCloud{
		points: &sequenceStorage{*newMatrixStorage(size)},
		meta:   NewMetaData(),
	}
}

func newMatrixStorage(size int) *matrixStorage {
	return &matrixStorage{points: make([]PointAndData, 0, size), indexMap: make(map[r3.Vector]uint, size)}
}

func (cloud *basicPointCloud) Size() int {
	return cloud.points.Size()
}

func (cloud *basicPointCloud) MetaData() MetaData {
	return cloud.meta
}

func (cloud *basicPointCloud) At(x, y, z float64) (Data, bool) {
	return cloud.points.At(x, y, z)
}

// Set validates that the point can be stored before setting it in the cloud.
func (cloud *basicPointCloud) Set(p r3.Vector, d Data) error {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) ||
		math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
		return errors.Errorf("cannot store non-finite point %v", p)
	}
	_, pointExists := cloud.At(p.X, p.Y, p.Z)
	if err := cloud.points.Set(p, d); err != nil {
		return err
	}
	if !pointExists {
		cloud.meta.Merge(p, d)
	}
	return nil
}

func (cloud *basicPointCloud) Iterate(numBatches, myBatch int, fn func(p r3.Vector, d Data) bool) {
	cloud.points.Iterate(numBatches, myBatch, fn)
}
