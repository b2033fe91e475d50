//go:build silero

package engine

import (
	_ "embed"
)

// sileroV5ModelData contains the Silero VAD v5 ONNX model embedded at
// build time.
//
// BUILD REQUIREMENT: the model file must exist at
// internal/engine/silero_vad_v5.onnx before compiling with -tags silero.
// Place silero_vad_v5.onnx and silero_vad_legacy.onnx in this directory,
// then:
//
//	make download-models   # reports which of the two model files are missing
//	make build-silero      # compile with -tags silero
//
// If you see "pattern silero_vad_v5.onnx: no matching files found" during
// build, it means the model file is missing.
//
//go:embed silero_vad_v5.onnx
var sileroV5ModelData []byte

// sileroLegacyModelData contains the legacy Silero VAD (v3/v4) ONNX model,
// embedded the same way. See sileroV5ModelData's BUILD REQUIREMENT above.
//
//go:embed silero_vad_legacy.onnx
var sileroLegacyModelData []byte
