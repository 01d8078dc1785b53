package lidar

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/gapnav/utils"
)

// ErrNoScan is returned by a device that has nothing to report.
var ErrNoScan = errors.New("no scan available")

// Device is a source of planar scans.
type Device interface {
	Scan(ctx context.Context) (*Scan, error)
	Close(ctx context.Context) error
}

// RingScanConfig describes a synthetic scan of a circular wall with a no-return opening.
type RingScanConfig struct {
	Frame      string
	NumPoints  int
	Range      float64
	RangeMax   float64
	GapCenter  float64
	GapWidth   float64
	AngleStart float64
}

// NewRingScan returns a scan of NumPoints readings evenly spread over a full turn starting at
// AngleStart. Readings whose bearing lies within GapWidth/2 of GapCenter are set to RangeMax.
func NewRingScan(cfg RingScanConfig) *Scan {
	if cfg.NumPoints <= 0 {
		cfg.NumPoints = 360
	}
	if cfg.Frame == "" {
		cfg.Frame = "laser"
	}
	inc := 2 * math.Pi / float64(cfg.NumPoints)
	scan := &Scan{
		Frame:          cfg.Frame,
		Time:           time.Now(),
		AngleMin:       cfg.AngleStart,
		AngleIncrement: inc,
		RangeMax:       cfg.RangeMax,
		Ranges:         make([]float64, cfg.NumPoints),
	}
	half := cfg.GapWidth / 2
	for i := range scan.Ranges {
		delta := math.Abs(math.Remainder(scan.Angle(i)-cfg.GapCenter, 2*math.Pi))
		if cfg.GapWidth > 0 && delta <= half+utils.Epsilon {
			scan.Ranges[i] = cfg.RangeMax
		} else {
			scan.Ranges[i] = cfg.Range
		}
	}
	return scan
}

// FakeDevice replays a fixed list of scans, repeating the last one once exhausted.
type FakeDevice struct {
	mu    sync.Mutex
	scans []*Scan
	next  int
	// ScanFunc overrides the replay list when set.
	ScanFunc func(ctx context.Context) (*Scan, error)
}

// NewFakeDevice returns a device replaying scans in order.
func NewFakeDevice(scans ...*Scan) *FakeDevice {
	return &FakeDevice{scans: scans}
}

// Scan returns the next scan.
func (d *FakeDevice) Scan(ctx context.Context) (*Scan, error) {
	if d.ScanFunc != nil {
		return d.ScanFunc(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.scans) == 0 {
		return nil, ErrNoScan
	}
	scan := d.scans[d.next]
	if d.next < len(d.scans)-1 {
		d.next++
	}
	return scan, nil
}

// Close does nothing.
func (d *FakeDevice) Close(ctx context.Context) error {
	return nil
}
