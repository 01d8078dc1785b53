// Package ros reads recorded ROS bags and converts laser scan messages into lidar scans.
package ros

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadBag loads a whole bag file.
func ReadBag(filename string) (*rosbag.RosBag, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open bag")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	rb := rosbag.NewRosBag()
	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "cannot read bag %s", filename)
	}
	return rb, nil
}

// topicKey is the name gobag files a topic's messages under: no leading slash, lower case,
// remaining slashes replaced by underscores.
func topicKey(topic string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(topic, "/"), "/", "_"))
}

// MessagesForTopic decodes every message recorded on topic, in bag order. Each message is an
// object with a "meta" part holding the record time and a "data" part holding the payload.
// Topics match with or without their leading slash.
func MessagesForTopic(rb *rosbag.RosBag, topic string) ([]map[string]interface{}, error) {
	key := topicKey(topic)
	if err := rb.ParseTopicsToJSON(
		"",
		func(int64) bool { return true },
		func(t string) bool { return topicKey(t) == key },
		false,
	); err != nil {
		return nil, errors.Wrap(err, "cannot parse bag")
	}

	lines := rb.TopicsAsJSON[key]
	if lines == nil {
		return nil, errors.Errorf("no messages on topic %s", topic)
	}
	var msgs []map[string]interface{}
	for {
		line, err := lines.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return msgs, nil
		}
		if err != nil {
			return nil, err
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, errors.Wrapf(err, "cannot decode message %d on %s", len(msgs), topic)
		}
		msgs = append(msgs, msg)
	}
}
