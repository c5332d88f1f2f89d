package detectors

import (
	"context"
	"image"
	"strings"

	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/inference"
	"github.com/inboxy/policamera-sub001/preprocess"
	"github.com/inboxy/policamera-sub001/results"
)

// defaultCharset is the recognizer vocabulary, indexed from 1; index 0 is
// the CTC blank.
const defaultCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ .,:-"

// TextRecognizer runs a CTC-style recognition model over the frame and
// reports the decoded text span.
type TextRecognizer struct {
	base
	inputSize     int
	seqLen        int
	charset       []rune
	confThreshold float32
}

// TextConfig configures a TextRecognizer.
type TextConfig struct {
	Model inference.ModelRef `json:"model" yaml:"model"`
	// InputSize is the square model input, default 320.
	InputSize int `json:"input_size" yaml:"input_size"`
	// SequenceLength is the number of CTC timesteps, default 40.
	SequenceLength int `json:"sequence_length" yaml:"sequence_length"`
	// Charset overrides the recognizer vocabulary (blank excluded).
	Charset string `json:"charset" yaml:"charset"`
	// ConfThreshold is the minimum mean character confidence for a span to
	// be reported, default 0.45.
	ConfThreshold float32 `json:"conf_threshold" yaml:"conf_threshold"`
}

// NewTextRecognizer builds the adapter; the model is not loaded until
// Initialize.
func NewTextRecognizer(name string, runtime inference.Runtime, cfg TextConfig) *TextRecognizer {
	if cfg.InputSize == 0 {
		cfg.InputSize = 320
	}
	if cfg.SequenceLength == 0 {
		cfg.SequenceLength = 40
	}
	if cfg.Charset == "" {
		cfg.Charset = defaultCharset
	}
	if cfg.ConfThreshold == 0 {
		cfg.ConfThreshold = 0.45
	}
	return &TextRecognizer{
		base:          newBase(name, results.KindText, runtime, cfg.Model),
		inputSize:     cfg.InputSize,
		seqLen:        cfg.SequenceLength,
		charset:       []rune(cfg.Charset),
		confThreshold: cfg.ConfThreshold,
	}
}

// Infer runs one recognition pass. A frame whose decoded span is empty or
// below the confidence threshold yields no spans, not an error.
func (t *TextRecognizer) Infer(ctx context.Context, frame frames.Frame) (*results.Result, error) {
	model, err := t.loaded()
	if err != nil {
		return nil, err
	}

	input, err := preprocess.LetterboxInput(frame, t.inputSize)
	if err != nil {
		return nil, err
	}

	raw, err := model.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	spans, err := t.decode(raw, frame)
	if err != nil {
		return nil, err
	}

	res := results.Result{Kind: results.KindText, Text: spans}.Stamp(frame.CapturedAt)
	return &res, nil
}

// decode collapses a (timesteps x vocab) CTC grid: argmax per timestep,
// repeats merged, blanks dropped. Confidence is the mean over emitted
// characters.
func (t *TextRecognizer) decode(raw []float32, frame frames.Frame) ([]results.TextSpan, error) {
	vocab := len(t.charset) + 1 // index 0 is blank
	if len(raw) != t.seqLen*vocab {
		return nil, errors.Errorf(
			"text output holds %d values, grid (%d timesteps x %d vocab) needs %d",
			len(raw), t.seqLen, vocab, t.seqLen*vocab,
		)
	}

	var sb strings.Builder
	var confSum float32
	emitted := 0
	prev := 0
	for step := 0; step < t.seqLen; step++ {
		row := raw[step*vocab : (step+1)*vocab]
		idx := 0
		score := row[0]
		for i, s := range row {
			if s > score {
				score = s
				idx = i
			}
		}
		if idx != 0 && idx != prev {
			sb.WriteRune(t.charset[idx-1])
			confSum += score
			emitted++
		}
		prev = idx
	}

	if emitted == 0 {
		return nil, nil
	}
	conf := confSum / float32(emitted)
	if conf < t.confThreshold {
		return nil, nil
	}

	// The recognizer reads the whole frame; the span quad covers it,
	// clockwise from top-left.
	return []results.TextSpan{{
		Text:       sb.String(),
		Confidence: conf,
		Quad: [4]image.Point{
			{X: 0, Y: 0},
			{X: frame.Width, Y: 0},
			{X: frame.Width, Y: frame.Height},
			{X: 0, Y: frame.Height},
		},
	}}, nil
}
