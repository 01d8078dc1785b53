package ros

import (
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/edaniels/gobag/rosbag"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/gapnav/lidar"
)

// LaserScanMessage is a sensor_msgs/LaserScan as produced by the bag JSON export.
type LaserScanMessage struct {
	Meta struct {
		Secs  int64
		Nsecs int64
	}
	Data struct {
		Header struct {
			Seq   int
			Stamp struct {
				Secs  int64
				Nsecs int64
			}
			FrameID string `json:"frame_id"`
		}
		AngleMin       float64   `json:"angle_min"`
		AngleMax       float64   `json:"angle_max"`
		AngleIncrement float64   `json:"angle_increment"`
		TimeIncrement  float64   `json:"time_increment"`
		ScanTime       float64   `json:"scan_time"`
		RangeMin       float64   `json:"range_min"`
		RangeMax       float64   `json:"range_max"`
		Ranges         []float64 `json:"ranges"`
		Intensities    []float64 `json:"intensities"`
	}
}

// nonFiniteHook decodes the string spellings of non-finite floats that JSON cannot represent
// natively.
func nonFiniteHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Float64 || from.Kind() != reflect.String {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), nil
	case "-inf", "-infinity":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}
	return data, nil
}

// DecodeLaserScan decodes one bag JSON message into a LaserScanMessage.
func DecodeLaserScan(raw map[string]interface{}) (*LaserScanMessage, error) {
	var msg LaserScanMessage
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &msg,
		WeaklyTypedInput: true,
		DecodeHook:       nonFiniteHook,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating decoder for laser scan")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "error decoding laser scan")
	}
	return &msg, nil
}

// Stamp returns the header timestamp, falling back to the bag record time.
func (msg *LaserScanMessage) Stamp() time.Time {
	stamp := msg.Data.Header.Stamp
	if stamp.Secs == 0 && stamp.Nsecs == 0 {
		return time.Unix(msg.Meta.Secs, msg.Meta.Nsecs)
	}
	return time.Unix(stamp.Secs, stamp.Nsecs)
}

// ToScan converts the message to a lidar scan.
func (msg *LaserScanMessage) ToScan() (*lidar.Scan, error) {
	scan := &lidar.Scan{
		Frame:          msg.Data.Header.FrameID,
		Time:           msg.Stamp(),
		AngleMin:       msg.Data.AngleMin,
		AngleIncrement: msg.Data.AngleIncrement,
		RangeMin:       msg.Data.RangeMin,
		RangeMax:       msg.Data.RangeMax,
		Ranges:         msg.Data.Ranges,
	}
	if err := scan.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid laser scan seq %d", msg.Data.Header.Seq)
	}
	return scan, nil
}

// LaserScansFromMessages converts decoded bag messages to scans in bag order.
func LaserScansFromMessages(raw []map[string]interface{}) ([]*lidar.Scan, error) {
	scans := make([]*lidar.Scan, 0, len(raw))
	for i, m := range raw {
		msg, err := DecodeLaserScan(m)
		if err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
		scan, err := msg.ToScan()
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, nil
}

// LaserScansForTopic returns every laser scan recorded on topic.
func LaserScansForTopic(rb *rosbag.RosBag, topic string) ([]*lidar.Scan, error) {
	raw, err := MessagesForTopic(rb, topic)
	if err != nil {
		return nil, err
	}
	return LaserScansFromMessages(raw)
}
