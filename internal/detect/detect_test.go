package detect

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andypayne/cambanzo/internal/config"
)

func TestParseRecords(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []Record
	}{
		{
			name:   "single line",
			output: "[DETECTED] dog: 83%",
			want:   []Record{{Label: "dog", Confidence: 83}},
		},
		{
			name: "noise interleaved",
			output: strings.Join([]string{
				"layer 42: conv 3x3/1",
				"[DETECTED] person: 99%",
				"seen 64 images",
				"[DETECTED] traffic light: 61%",
				"done in 0.42s",
			}, "\n"),
			want: []Record{
				{Label: "person", Confidence: 99},
				{Label: "traffic light", Confidence: 61},
			},
		},
		{
			name:   "label containing colon",
			output: "[DETECTED] sign: stop: 77%",
			want:   []Record{{Label: "sign: stop", Confidence: 77}},
		},
		{
			name:   "crlf line endings",
			output: "[DETECTED] cat: 54%\r\n",
			want:   []Record{{Label: "cat", Confidence: 54}},
		},
		{
			name:   "marker must start the line",
			output: "  [DETECTED] dog: 83%",
			want:   nil,
		},
		{
			name:   "noise only",
			output: "loading weights\ndone",
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRecords(tt.output)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetect_SubstitutesTemplate(t *testing.T) {
	var gotDir, gotCmd string
	d := New(config.Detect{
		Dir:       "/opt/darknet",
		Command:   "./darknet detector test {data} {cfg} {weights} -out {out} {images}",
		Cfg:       "cfg/yolov3.cfg",
		Weights:   "yolov3.weights",
		Data:      "cfg/coco.data",
		OutPrefix: "predictions",
	})
	d.run = func(_ context.Context, dir, cmdline string) ([]byte, error) {
		gotDir, gotCmd = dir, cmdline
		return []byte("[DETECTED] dog: 83%\n"), nil
	}

	records, outputs, err := d.Detect(context.Background(), []string{"/tmp/a.jpg", "/tmp/b.jpg"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if gotDir != "/opt/darknet" {
		t.Errorf("tool dir = %q, want /opt/darknet", gotDir)
	}
	wantCmd := "./darknet detector test cfg/coco.data cfg/yolov3.cfg yolov3.weights -out predictions /tmp/a.jpg /tmp/b.jpg"
	if gotCmd != wantCmd {
		t.Errorf("command = %q, want %q", gotCmd, wantCmd)
	}
	if diff := cmp.Diff([]Record{{Label: "dog", Confidence: 83}}, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	want := []string{
		filepath.Join("/opt/darknet", "predictions__00.jpg"),
		filepath.Join("/opt/darknet", "predictions__01.jpg"),
	}
	if diff := cmp.Diff(want, outputs); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_EmptyBatch(t *testing.T) {
	d := New(config.Detect{Dir: "/opt/darknet", Command: "true"})
	if _, _, err := d.Detect(context.Background(), nil); err == nil {
		t.Fatal("Detect with empty batch returned nil error")
	}
}

func TestDetect_RunsToolInItsDirectory(t *testing.T) {
	dir := t.TempDir()
	d := New(config.Detect{
		Dir:     dir,
		Command: `pwd; echo "[DETECTED] person: 99%"`,
	})

	records, _, err := d.Detect(context.Background(), []string{"ignored.jpg"})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if diff := cmp.Diff([]Record{{Label: "person", Confidence: 99}}, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_NonzeroExit(t *testing.T) {
	d := New(config.Detect{
		Dir:     t.TempDir(),
		Command: `echo "[DETECTED] dog: 83%"; echo "cannot load weights" >&2; exit 3`,
	})

	records, outputs, err := d.Detect(context.Background(), []string{"a.jpg"})
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v, want *ToolError", err)
	}
	if toolErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", toolErr.ExitCode)
	}
	if !strings.Contains(toolErr.Output, "cannot load weights") {
		t.Errorf("Output = %q, want the tool's last lines", toolErr.Output)
	}
	if records != nil || outputs != nil {
		t.Errorf("got partial results (%v, %v) alongside error", records, outputs)
	}
}

func TestDetect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(config.Detect{Dir: t.TempDir(), Command: "sleep 5"})
	if _, _, err := d.Detect(ctx, []string{"a.jpg"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestOutputPaths_AbsolutePrefixKeptAsIs(t *testing.T) {
	d := New(config.Detect{Dir: "/opt/darknet", OutPrefix: "/data/out/run"})
	want := []string{"/data/out/run__00.jpg", "/data/out/run__01.jpg", "/data/out/run__02.jpg"}
	if diff := cmp.Diff(want, d.OutputPaths(3)); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}
