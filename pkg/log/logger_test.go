package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Info("training started",
		ModelNameKey, "LogisticRegression",
		SamplesKey, 100,
		FeaturesKey, 4,
	)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if record["message"] != "training started" {
		t.Errorf("message = %v, want %q", record["message"], "training started")
	}
	if record[ModelNameKey] != "LogisticRegression" {
		t.Errorf("%s = %v, want LogisticRegression", ModelNameKey, record[ModelNameKey])
	}
	if record[SamplesKey] != float64(100) {
		t.Errorf("%s = %v, want 100", SamplesKey, record[SamplesKey])
	}
}

func TestZerologLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf)).With(ComponentKey, "shallow")

	logger.Warn("attributes is missing")

	if !strings.Contains(buf.String(), `"ml.component":"shallow"`) {
		t.Errorf("expected component field in output, got %q", buf.String())
	}
}

func TestZerologLoggerEnabled(t *testing.T) {
	logger := NewZerologLogger(zerolog.New(io.Discard).Level(zerolog.WarnLevel))

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestTestLoggerConcurrentWithChild(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)
	child := logger.With(ComponentKey, "shallow")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			logger.Info("parent record")
		}()
		go func() {
			defer wg.Done()
			child.Info("child record")
		}()
	}
	wg.Wait()

	if !logger.Contains("parent record") || !logger.Contains("child record") {
		t.Error("records from both parent and child should be captured")
	}
}

func TestTestLoggerCapture(t *testing.T) {
	logger, buf := NewTestLogger(LevelInfo)

	logger.Debug("dropped")
	logger.Warn("labels is missing", ReasonKey, "labels_unset")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("debug record should be filtered at info level")
	}
	if !logger.Contains("labels is missing") {
		t.Error("warn record should be captured")
	}
	if !strings.Contains(out, "reason=labels_unset") {
		t.Errorf("fields should be rendered, got %q", out)
	}
}
