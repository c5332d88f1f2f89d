// Command overlayd runs the perception scheduler against a webcam and
// composites detector overlays onto a live preview window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/inboxy/policamera-sub001/detectors"
	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/inference"
	"github.com/inboxy/policamera-sub001/profiler"
	"github.com/inboxy/policamera-sub001/results"
	"github.com/inboxy/policamera-sub001/scheduler"
)

var (
	deviceID   = flag.Int("device", 0, "video capture device ID")
	objectPath = flag.String("object-model", "yolov8n.onnx", "object detection model")
	depthPath  = flag.String("depth-model", "", "optional depth estimation model")
)

func main() {
	flag.Parse()

	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		log.Fatalf("opening capture device %d: %v", *deviceID, err)
	}
	defer webcam.Close()

	window := gocv.NewWindow("overlayd")
	defer window.Close()

	img := gocv.NewMat()
	defer img.Close()

	ctx := context.Background()
	tracker := profiler.NewLatencyTracker()
	sched := scheduler.New(tracker)
	defer sched.Close()

	runtime := inference.NewONNXRuntime()

	object := detectors.NewObjectDetector("object", runtime, detectors.ObjectConfig{
		Model: inference.ModelRef{
			Name:        "object",
			Path:        *objectPath,
			InputName:   "images",
			OutputName:  "output0",
			InputShape:  []int64{1, 3, 640, 640},
			OutputShape: []int64{1, 84, 8400},
		},
	})
	if err := sched.Register(object, scheduler.Config{RateHz: 30}); err != nil {
		log.Fatalf("registering object detector: %v", err)
	}
	if err := sched.SetEnabled(ctx, "object", true); err != nil {
		log.Fatalf("enabling object detector: %v", err)
	}

	if *depthPath != "" {
		depth := detectors.NewDepthEstimator("depth", runtime, detectors.DepthConfig{
			Model: inference.ModelRef{
				Name:        "depth",
				Path:        *depthPath,
				InputName:   "input",
				OutputName:  "output",
				InputShape:  []int64{1, 3, 256, 256},
				OutputShape: []int64{1, 256, 256},
			},
		})
		if err := sched.Register(depth, scheduler.Config{RateHz: 10}); err != nil {
			log.Fatalf("registering depth estimator: %v", err)
		}
		if err := sched.SetEnabled(ctx, "depth", true); err != nil {
			log.Fatalf("enabling depth estimator: %v", err)
		}
	}

	green := color.RGBA{G: 255, A: 255}
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}

	var frameID uint64
	lastReport := time.Now()

	log.Printf("reading camera device %d", *deviceID)
	for {
		if ok := webcam.Read(&img); !ok {
			log.Printf("cannot read device %d", *deviceID)
			return
		}
		if img.Empty() {
			continue
		}

		frameID++
		frame, err := frames.FromMat(frameID, img)
		if err != nil {
			log.Printf("converting frame %d: %v", frameID, err)
			continue
		}

		for name, snap := range sched.Tick(ctx, frame) {
			drawSnapshot(&img, name, snap, green, gray)
		}

		if time.Since(lastReport) >= 2*time.Second {
			for name, stats := range sched.Latencies() {
				log.Printf("%s: %d inferences, mean %v, last %v (dispatch %s)",
					name, stats.Count, stats.Mean, stats.Last, stats.LastID)
			}
			lastReport = time.Now()
		}

		window.IMShow(img)
		if window.WaitKey(1) == 27 { // esc
			return
		}
	}
}

// drawSnapshot composites one detector's result. Stale results draw gray so
// overlay age stays visible, fresh ones green.
func drawSnapshot(img *gocv.Mat, name string, snap scheduler.Snapshot, fresh, stale color.RGBA) {
	c := stale
	if snap.Fresh {
		c = fresh
	}

	switch snap.Capability {
	case results.KindBoxes:
		for _, b := range snap.Result.Boxes {
			rect := image.Rect(b.Rect.X1, b.Rect.Y1, b.Rect.X2, b.Rect.Y2)
			gocv.Rectangle(img, rect, c, 2)
			label := fmt.Sprintf("%s %d%%", b.Label, b.Confidence)
			gocv.PutText(img, label, rect.Min, gocv.FontHersheySimplex, 0.5, c, 1)
		}
	case results.KindKeypoints:
		for _, k := range snap.Result.Keypoints {
			gocv.Circle(img, image.Pt(int(k.X), int(k.Y)), 3, c, -1)
		}
	case results.KindDepthMap:
		d := snap.Result.Depth
		label := fmt.Sprintf("depth min %.2f max %.2f mean %.2f", d.Min, d.Max, d.Mean)
		gocv.PutText(img, label, image.Pt(8, 24), gocv.FontHersheySimplex, 0.5, c, 1)
	case results.KindText:
		for _, span := range snap.Result.Text {
			gocv.PutText(img, span.Text, span.Quad[0], gocv.FontHersheySimplex, 0.5, c, 1)
		}
	default:
		log.Printf("unknown capability %q from %s", snap.Capability, name)
	}
}
