package pointcloud

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PCDType is the format of a pcd file.
type PCDType int

const (
	// PCDAscii ascii format for pcd.
	PCDAscii PCDType = 0
	// PCDBinary binary format for pcd.
	PCDBinary PCDType = 1
)

func colorToPCDInt(pt Data) int {
	if pt == nil || !pt.HasColor() {
		return 255 << 16
	}

	r, g, b := pt.RGB255()
	return int(r)<<16 | int(g)<<8 | int(b)
}

// ToPCD writes the cloud to out in the PCD v0.7 format. Coordinates are written in meters.
func ToPCD(cloud PointCloud, out io.Writer, outputType PCDType) error {
	hasColor := cloud.MetaData().HasColor
	header := "VERSION .7\n"
	if hasColor {
		header += "FIELDS x y z rgb\nSIZE 4 4 4 4\nTYPE F F F I\nCOUNT 1 1 1 1\n"
	} else {
		header += "FIELDS x y z\nSIZE 4 4 4\nTYPE F F F\nCOUNT 1 1 1\n"
	}
	header += fmt.Sprintf("WIDTH %d\nHEIGHT 1\nVIEWPOINT 0 0 0 1 0 0 0\nPOINTS %d\n", cloud.Size(), cloud.Size())
	switch outputType {
	case PCDAscii:
		header += "DATA ascii\n"
	case PCDBinary:
		header += "DATA binary\n"
	default:
		return errors.Errorf("unsupported pcd type %d", outputType)
	}
	if _, err := io.WriteString(out, header); err != nil {
		return err
	}

	var err error
	cloud.Iterate(0, 0, func(pos r3.Vector, d Data) bool {
		switch outputType {
		case PCDAscii:
			if hasColor {
				_, err = fmt.Fprintf(out, "%f %f %f %d\n", pos.X, pos.Y, pos.Z, colorToPCDInt(d))
			} else {
				_, err = fmt.Fprintf(out, "%f %f %f\n", pos.X, pos.Y, pos.Z)
			}
		case PCDBinary:
			size := 12
			if hasColor {
				size = 16
			}
			buf := make([]byte, size)
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(pos.X)))
			binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(pos.Y)))
			binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(float32(pos.Z)))
			if hasColor {
				binary.LittleEndian.PutUint32(buf[12:], uint32(colorToPCDInt(d)))
			}
			_, err = out.Write(buf)
		}
		return err == nil
	})
	return err
}
