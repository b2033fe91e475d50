//go:build silero

package engine

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/nupi-ai/vad-core/internal/vaderrors"
)

const (
	sileroV5StateSize     = 128
	sileroLegacyStateSize = 64
)

var sileroLegacyFrameSizes = map[int]bool{512: true, 1024: true, 1536: true}

// ortInitOnce ensures ONNX Runtime's environment is initialized exactly
// once per process. ortInitErr is stored at package scope so subsequent
// NewSileroEngine calls surface the failure instead of proceeding with an
// uninitialized environment.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// SileroEngine runs Silero VAD inference (legacy or v5) via ONNX Runtime.
// It implements the Model interface: Process consumes exactly
// FrameSamples() float32 samples and returns a SpeechProbabilities pair,
// carrying recurrent state forward between calls.
type SileroEngine struct {
	variant      SileroVariant
	frameSamples int

	session *ort.AdvancedSession

	inputTensor *ort.Tensor[float32] // [1, frameSamples]
	srTensor    *ort.Tensor[int64]   // scalar

	// v5: combined state. legacy: split h/c state.
	stateTensor  *ort.Tensor[float32]
	hTensor      *ort.Tensor[float32]
	cTensor      *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32] // [1, 1]
	stateNTensor *ort.Tensor[float32]
	hnTensor     *ort.Tensor[float32]
	cnTensor     *ort.Tensor[float32]
}

// NewSileroEngine creates a SileroEngine by initializing ONNX Runtime,
// loading the embedded model for the requested variant, and allocating
// input/output tensors. frameSamples must match the variant's canonical
// size(s) (see SileroVariant).
func NewSileroEngine(variant SileroVariant, frameSamples int) (*SileroEngine, error) {
	if err := validateVariantFrameSamples(variant, frameSamples); err != nil {
		return nil, err
	}

	ortInitOnce.Do(func() {
		libPath, err := resolveORTLibPath()
		if err != nil {
			ortInitErr = fmt.Errorf("resolve ORT lib: %w", err)
			return
		}
		ort.SetSharedLibraryPath(libPath)
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, vaderrors.NewModelLoadError(variant.String(), fmt.Errorf("silero: %w", ortInitErr))
	}

	if variant == SileroV5 {
		return newSileroV5Engine(frameSamples)
	}
	return newSileroLegacyEngine(frameSamples)
}

func validateVariantFrameSamples(variant SileroVariant, frameSamples int) error {
	switch variant {
	case SileroV5:
		if frameSamples != 512 {
			return vaderrors.NewModelLoadError(variant.String(), fmt.Errorf("silero: v5 requires frameSamples=512, got %d", frameSamples))
		}
	case SileroLegacy:
		if !sileroLegacyFrameSizes[frameSamples] {
			return vaderrors.NewModelLoadError(variant.String(), fmt.Errorf("silero: legacy requires frameSamples in {512,1024,1536}, got %d", frameSamples))
		}
	default:
		return vaderrors.NewModelLoadError(variant.String(), fmt.Errorf("silero: unknown variant %d", variant))
	}
	return nil
}

func newSileroV5Engine(frameSamples int) (*SileroEngine, error) {
	if len(sileroV5ModelData) == 0 {
		return nil, vaderrors.NewModelLoadError("v5", fmt.Errorf("silero: v5 model data is empty (build without silero tag?)"))
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(frameSamples)))
	if err != nil {
		return nil, vaderrors.NewModelLoadError("v5", fmt.Errorf("silero: create input tensor: %w", err))
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroV5StateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("v5", fmt.Errorf("silero: create state tensor: %w", err))
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{int64(ExpectedSampleRate)})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("v5", fmt.Errorf("silero: create sr tensor: %w", err))
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("v5", fmt.Errorf("silero: create output tensor: %w", err))
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroV5StateSize))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("v5", fmt.Errorf("silero: create stateN tensor: %w", err))
	}

	clearFloat32Slice(stateTensor.GetData())
	clearFloat32Slice(stateNTensor.GetData())

	session, err := ort.NewAdvancedSessionWithONNXData(
		sileroV5ModelData,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("v5", fmt.Errorf("silero: create session: %w", err))
	}

	return &SileroEngine{
		variant:      SileroV5,
		frameSamples: frameSamples,
		session:      session,
		inputTensor:  inputTensor,
		stateTensor:  stateTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		stateNTensor: stateNTensor,
	}, nil
}

func newSileroLegacyEngine(frameSamples int) (*SileroEngine, error) {
	if len(sileroLegacyModelData) == 0 {
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: legacy model data is empty (build without silero tag?)"))
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(frameSamples)))
	if err != nil {
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create input tensor: %w", err))
	}
	hTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroLegacyStateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create h tensor: %w", err))
	}
	cTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroLegacyStateSize))
	if err != nil {
		inputTensor.Destroy()
		hTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create c tensor: %w", err))
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{int64(ExpectedSampleRate)})
	if err != nil {
		inputTensor.Destroy()
		hTensor.Destroy()
		cTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create sr tensor: %w", err))
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		hTensor.Destroy()
		cTensor.Destroy()
		srTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create output tensor: %w", err))
	}
	hnTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroLegacyStateSize))
	if err != nil {
		inputTensor.Destroy()
		hTensor.Destroy()
		cTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create hn tensor: %w", err))
	}
	cnTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, sileroLegacyStateSize))
	if err != nil {
		inputTensor.Destroy()
		hTensor.Destroy()
		cTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		hnTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create cn tensor: %w", err))
	}

	clearFloat32Slice(hTensor.GetData())
	clearFloat32Slice(cTensor.GetData())
	clearFloat32Slice(hnTensor.GetData())
	clearFloat32Slice(cnTensor.GetData())

	session, err := ort.NewAdvancedSessionWithONNXData(
		sileroLegacyModelData,
		[]string{"input", "h", "c", "sr"},
		[]string{"output", "hn", "cn"},
		[]ort.Value{inputTensor, hTensor, cTensor, srTensor},
		[]ort.Value{outputTensor, hnTensor, cnTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		hTensor.Destroy()
		cTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		hnTensor.Destroy()
		cnTensor.Destroy()
		return nil, vaderrors.NewModelLoadError("legacy", fmt.Errorf("silero: create session: %w", err))
	}

	return &SileroEngine{
		variant:      SileroLegacy,
		frameSamples: frameSamples,
		session:      session,
		inputTensor:  inputTensor,
		hTensor:      hTensor,
		cTensor:      cTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		hnTensor:     hnTensor,
		cnTensor:     cnTensor,
	}, nil
}

// Process runs a single Silero VAD inference over exactly FrameSamples()
// float32 samples in [-1, 1] and returns the speech probability pair.
func (e *SileroEngine) Process(ctx context.Context, frame []float32) (SpeechProbabilities, error) {
	if len(frame) != e.frameSamples {
		return SpeechProbabilities{}, fmt.Errorf("silero: frame length %d, want %d", len(frame), e.frameSamples)
	}
	if err := ctx.Err(); err != nil {
		return SpeechProbabilities{}, err
	}

	copy(e.inputTensor.GetData(), frame)

	if err := e.session.Run(); err != nil {
		return SpeechProbabilities{}, fmt.Errorf("silero: inference: %w", err)
	}

	prob := e.outputTensor.GetData()[0]

	if e.variant == SileroV5 {
		copy(e.stateTensor.GetData(), e.stateNTensor.GetData())
	} else {
		copy(e.hTensor.GetData(), e.hnTensor.GetData())
		copy(e.cTensor.GetData(), e.cnTensor.GetData())
	}

	return SpeechProbabilities{IsSpeech: prob, NotSpeech: 1 - prob}, nil
}

// ResetState clears all recurrent state tensors, restoring inference to t=0.
func (e *SileroEngine) ResetState() error {
	if e.variant == SileroV5 {
		clearFloat32Slice(e.stateTensor.GetData())
	} else {
		clearFloat32Slice(e.hTensor.GetData())
		clearFloat32Slice(e.cTensor.GetData())
	}
	return nil
}

// FrameSamples returns the configured frame size.
func (e *SileroEngine) FrameSamples() int { return e.frameSamples }

// Close releases ONNX Runtime resources. Safe to call multiple times.
func (e *SileroEngine) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[float32]{
		e.inputTensor, e.stateTensor, e.hTensor, e.cTensor,
		e.outputTensor, e.stateNTensor, e.hnTensor, e.cnTensor,
	} {
		if t != nil {
			t.Destroy()
		}
	}
	e.inputTensor, e.stateTensor, e.hTensor, e.cTensor = nil, nil, nil, nil
	e.outputTensor, e.stateNTensor, e.hnTensor, e.cnTensor = nil, nil, nil, nil
	if e.srTensor != nil {
		e.srTensor.Destroy()
		e.srTensor = nil
	}
	return nil
}

func clearFloat32Slice(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
