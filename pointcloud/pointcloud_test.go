package pointcloud

import (
	"bytes"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPointCloudBasic(t *testing.T) {
	pc := New()
	test.That(t, pc.Size(), test.ShouldEqual, 0)

	p0 := r3.Vector{X: 3, Y: -1}
	test.That(t, pc.Set(p0, NewValueData(1)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 1)

	d, ok := pc.At(3, -1, 0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 1)
	test.That(t, CloudContains(pc, 3, -1, 1), test.ShouldBeFalse)

	p1 := r3.Vector{X: -2, Y: 4}
	test.That(t, pc.Set(p1, NewColoredData(color.NRGBA{255, 0, 0, 255})), test.ShouldBeNil)
	test.That(t, pc.Set(p0, NewValueData(5)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)
	d, _ = pc.At(3, -1, 0)
	test.That(t, d.Value(), test.ShouldEqual, 5)

	meta := pc.MetaData()
	test.That(t, meta.HasColor, test.ShouldBeTrue)
	test.That(t, meta.HasValue, test.ShouldBeTrue)
	test.That(t, meta.MinX, test.ShouldEqual, -2.)
	test.That(t, meta.MaxX, test.ShouldEqual, 3.)
	test.That(t, meta.MaxY, test.ShouldEqual, 4.)

	test.That(t, Points(pc), test.ShouldResemble, []r3.Vector{p0, p1})

	test.That(t, pc.Set(r3.Vector{X: math.Inf(1)}, nil), test.ShouldNotBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)
}

func TestPointCloudSequence(t *testing.T) {
	pc := NewSequence(4)
	p0 := r3.Vector{X: 1, Y: 1}
	p1 := r3.Vector{X: 2, Y: -1}
	test.That(t, pc.Set(p0, NewValueData(0)), test.ShouldBeNil)
	test.That(t, pc.Set(p1, NewValueData(0)), test.ShouldBeNil)
	test.That(t, pc.Set(p0, NewValueData(1)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 3)
	test.That(t, Points(pc), test.ShouldResemble, []r3.Vector{p0, p1, p0})

	d, ok := pc.At(1, 1, 0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 1)

	var values []int
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		values = append(values, d.Value())
		return true
	})
	test.That(t, values, test.ShouldResemble, []int{0, 0, 1})
	test.That(t, pc.MetaData().MaxX, test.ShouldEqual, 2.)

	var buf bytes.Buffer
	test.That(t, ToPCD(pc, &buf, PCDAscii), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "POINTS 3\n")
}

func TestIterateBatches(t *testing.T) {
	pc := NewWithPrealloc(10)
	for i := 0; i < 10; i++ {
		test.That(t, pc.Set(r3.Vector{X: float64(i)}, NewValueData(i)), test.ShouldBeNil)
	}
	var seen []int
	pc.Iterate(3, 1, func(p r3.Vector, d Data) bool {
		seen = append(seen, d.Value())
		return true
	})
	test.That(t, seen, test.ShouldResemble, []int{1, 4, 7})

	count := 0
	pc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		count++
		return count < 4
	})
	test.That(t, count, test.ShouldEqual, 4)
}

func TestToPCD(t *testing.T) {
	pc := New()
	test.That(t, pc.Set(r3.Vector{X: 1, Y: 2}, NewColoredData(color.NRGBA{0, 255, 0, 255})), test.ShouldBeNil)
	test.That(t, pc.Set(r3.Vector{X: -1, Y: 0.5}, NewColoredData(color.NRGBA{0, 0, 255, 255})), test.ShouldBeNil)

	var buf bytes.Buffer
	test.That(t, ToPCD(pc, &buf, PCDAscii), test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	test.That(t, lines[1], test.ShouldEqual, "FIELDS x y z rgb")
	test.That(t, lines[9], test.ShouldEqual, "DATA ascii")
	test.That(t, lines[10], test.ShouldEqual, "1.000000 2.000000 0.000000 65280")
	test.That(t, len(lines), test.ShouldEqual, 12)

	buf.Reset()
	test.That(t, ToPCD(pc, &buf, PCDBinary), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "DATA binary\n")

	test.That(t, ToPCD(pc, &buf, PCDType(7)), test.ShouldNotBeNil)
}
