package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. It expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[3], test.ShouldEqual, expectedParts[3])
	if len(actualParts) == 4 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[4]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[4]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"", NewAtomicLevelAt(DEBUG), true, []Appender{NewWriterAppender(notStdout)}}

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	logging/impl_test.go:53	impl Info log`)

	logger.Infof("impl %s log", "formatted")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	logging/impl_test.go:57	impl formatted log`)

	logger.Infow("impl logw", "gap", 2, "side", "right")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	logging/impl_test.go:61	impl logw	{"gap":2,"side":"right"}`)

	logger.Debugw("unpaired", "key")
	output, err := notStdout.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	test.That(t, output, test.ShouldContainSubstring, "unpaired log key")
}

func TestLevels(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"", NewAtomicLevelAt(WARN), true, []Appender{NewWriterAppender(notStdout)}}

	logger.Info("dropped")
	logger.Debugf("dropped %d", 1)
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	WARN	logging/impl_test.go:79	kept`)

	logger.CDebugf(EnableDebugMode(context.Background(), ""), "forced %s", "debug")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	DEBUG	logging/impl_test.go:83	forced debug`)

	logger.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)
	logger.Warn("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	for _, inp := range []string{"debug", "INFO", "warning", "Error"} {
		_, err := LevelFromString(inp)
		test.That(t, err, test.ShouldBeNil)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	b, err := json.Marshal(level)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(b), test.ShouldEqual, `"warn"`)
}

func TestSubloggerAndObserver(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("gaps")
	sub.Infow("selected", "index", 3)

	test.That(t, logs.FilterMessage("selected").Len(), test.ShouldEqual, 1)
	entry := logs.FilterMessage("selected").All()[0]
	test.That(t, entry.LoggerName, test.ShouldEqual, "gaps")
	test.That(t, entry.ContextMap()["index"], test.ShouldEqual, int64(3))

	nested := sub.Sublogger("resolver")
	nested.Warn("blocked")
	test.That(t, logs.FilterLoggerName("gaps.resolver").Len(), test.ShouldEqual, 1)
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gapnav.log")
	logger := NewBlankLogger("replay")
	logger.AddAppender(NewFileAppender(path, 1))
	logger.Infow("scan processed", "index", 4)
	test.That(t, logger.Sync(), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "replay")
	test.That(t, string(data), test.ShouldContainSubstring, `{"index":4}`)
}
