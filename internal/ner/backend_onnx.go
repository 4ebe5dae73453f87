//go:build onnx
// +build onnx

package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// OnnxBackend implements Backend using a token-classification model run
// through ONNX Runtime (via yalue/onnxruntime_go). The model directory must
// contain model.onnx, vocab.json (token -> id), and labels.json (id -> BIO
// label).
type OnnxBackend struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	outputName string
	vocab      map[string]int64
	labels     []string
	unkID      int64
	maxLength  int
	logger     *zap.Logger
	ready      bool
	mu         sync.RWMutex
}

// NewBackend initializes the ONNX Runtime backend. Requires build tag 'onnx'.
func NewBackend(logger *zap.Logger, modelDir string, maxLength int) Backend {
	// Allow user to provide shared library path via environment variable.
	if shlib := os.Getenv("ONNXRUNTIME_SHARED_LIB"); shlib != "" {
		ort.SetSharedLibraryPath(shlib)
	} else if shlib := os.Getenv("ORT_SHLIB"); shlib != "" {
		ort.SetSharedLibraryPath(shlib)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		logger.Error("ONNX Runtime environment init failed", zap.Error(err))
		return nil
	}

	vocab, err := loadVocab(filepath.Join(modelDir, "vocab.json"))
	if err != nil {
		logger.Error("Failed to load vocab", zap.Error(err), zap.String("dir", modelDir))
		return nil
	}
	labels, err := loadLabels(filepath.Join(modelDir, "labels.json"))
	if err != nil {
		logger.Error("Failed to load labels", zap.Error(err), zap.String("dir", modelDir))
		return nil
	}

	modelPath := filepath.Join(modelDir, "model.onnx")
	inputsInfo, outputsInfo, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		logger.Error("Failed to inspect ONNX model IO", zap.Error(err), zap.String("model", modelPath))
		return nil
	}

	preferredInputs := []string{"input_ids", "attention_mask"}
	available := map[string]bool{}
	for _, ii := range inputsInfo {
		available[strings.ToLower(ii.Name)] = true
	}
	var inputNames []string
	for _, name := range preferredInputs {
		if available[name] {
			inputNames = append(inputNames, name)
		}
	}
	if len(inputNames) == 0 && len(inputsInfo) > 0 {
		for _, ii := range inputsInfo {
			inputNames = append(inputNames, ii.Name)
		}
	}
	if len(outputsInfo) == 0 {
		logger.Error("ONNX model reports no outputs", zap.String("model", modelPath))
		return nil
	}
	outputName := outputsInfo[0].Name

	sess, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputName}, nil)
	if err != nil {
		logger.Error("ONNX Runtime session creation failed", zap.Error(err), zap.String("model", modelPath))
		return nil
	}

	unkID := int64(0)
	if id, ok := vocab["[UNK]"]; ok {
		unkID = id
	}

	logger.Info("ONNX NER backend ready",
		zap.String("model", modelPath),
		zap.Strings("inputs", inputNames),
		zap.String("output", outputName),
		zap.Int("labels", len(labels)))
	return &OnnxBackend{
		session:    sess,
		inputNames: inputNames,
		outputName: outputName,
		vocab:      vocab,
		labels:     labels,
		unkID:      unkID,
		maxLength:  maxLength,
		logger:     logger,
		ready:      true,
	}
}

func loadVocab(path string) (map[string]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vocab map[string]int64
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, err
	}
	return vocab, nil
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// IsReady reports whether the backend is initialized.
func (b *OnnxBackend) IsReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready && b.session != nil
}

// Close releases session and environment resources.
func (b *OnnxBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		b.session.Destroy()
		b.session = nil
	}
	ort.DestroyEnvironment()
	b.ready = false
	return nil
}

var tokenRe = regexp.MustCompile(`[A-Za-z0-9]+|[^\sA-Za-z0-9]`)

type offsetToken struct {
	text  string
	start int
	end   int
}

// Recognize tokenizes the text, runs the classifier, and merges BIO-tagged
// tokens into labelled character spans.
func (b *OnnxBackend) Recognize(ctx context.Context, text string) ([]RawSpan, error) {
	if !b.IsReady() {
		return nil, fmt.Errorf("onnx backend not ready")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var tokens []offsetToken
	for _, idx := range tokenRe.FindAllStringIndex(text, -1) {
		tokens = append(tokens, offsetToken{text: text[idx[0]:idx[1]], start: idx[0], end: idx[1]})
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) > b.maxLength {
		tokens = tokens[:b.maxLength]
	}

	seqLen := len(tokens)
	inputIDs := make([]int64, seqLen)
	attention := make([]int64, seqLen)
	for i, tok := range tokens {
		id, ok := b.vocab[strings.ToLower(tok.text)]
		if !ok {
			id = b.unkID
		}
		inputIDs[i] = id
		attention[i] = 1
	}

	shape := ort.NewShape(1, int64(seqLen))
	idsTensor, err := ort.NewTensor[int64](shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor[int64](shape, attention)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	inputs := make([]ort.Value, 0, len(b.inputNames))
	for _, rawName := range b.inputNames {
		name := strings.ToLower(rawName)
		if strings.Contains(name, "mask") || strings.Contains(name, "attention") {
			inputs = append(inputs, maskTensor)
		} else {
			inputs = append(inputs, idsTensor)
		}
	}

	outputs := make([]ort.Value, 1)
	if err := b.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx run failed: %w", err)
	}
	if len(outputs) == 0 || outputs[0] == nil {
		return nil, fmt.Errorf("onnx returned no outputs")
	}
	defer func() {
		if outputs[0] != nil {
			_ = outputs[0].Destroy()
		}
	}()

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type (want float32 tensor)")
	}
	data := outTensor.GetData()
	outShape := outTensor.GetShape()
	if len(outShape) != 3 {
		return nil, fmt.Errorf("unsupported output shape %v (want [batch, seq, labels])", outShape)
	}
	outSeq := int(outShape[1])
	numLabels := int(outShape[2])
	if numLabels != len(b.labels) {
		return nil, fmt.Errorf("model emits %d labels, labels.json lists %d", numLabels, len(b.labels))
	}

	tags := make([]string, seqLen)
	for i := 0; i < seqLen && i < outSeq; i++ {
		offset := i * numLabels
		best := 0
		for j := 1; j < numLabels; j++ {
			if data[offset+j] > data[offset+best] {
				best = j
			}
		}
		tags[i] = b.labels[best]
	}

	return mergeBIO(text, tokens, tags), nil
}

// mergeBIO collapses consecutive B-/I- tagged tokens of the same label into
// one span. O tags and label changes end the current span.
func mergeBIO(text string, tokens []offsetToken, tags []string) []RawSpan {
	var spans []RawSpan
	var cur *RawSpan
	curLabel := ""

	flush := func() {
		if cur != nil {
			cur.Text = text[cur.Start:cur.End]
			spans = append(spans, *cur)
			cur = nil
			curLabel = ""
		}
	}

	for i, tag := range tags {
		switch {
		case tag == "O" || tag == "":
			flush()
		case strings.HasPrefix(tag, "B-"):
			flush()
			label := tag[2:]
			cur = &RawSpan{Label: label, Start: tokens[i].start, End: tokens[i].end}
			curLabel = label
		case strings.HasPrefix(tag, "I-"):
			label := tag[2:]
			if cur != nil && label == curLabel {
				cur.End = tokens[i].end
			} else {
				flush()
				cur = &RawSpan{Label: label, Start: tokens[i].start, End: tokens[i].end}
				curLabel = label
			}
		default:
			flush()
		}
	}
	flush()
	return spans
}
