// ttsgen is a web front-end for pretrained text-to-speech models. It maps
// form submissions onto calls to an external Coqui TTS engine, with optional
// voice cloning from an uploaded sample.
//
// Usage:
//
//	ttsgen serve [flags]
//	ttsgen serve --config /path/to/ttsgen.yaml
//	ttsgen models
//	ttsgen speakers tts_models/multilingual/multi-dataset/xtts_v2
//
// @title       ttsgen API
// @version     1.0
// @description Web front-end for pretrained text-to-speech models with optional voice cloning.
// @BasePath    /
package main

import (
	"os"

	"github.com/nadzzz/ttsgen/cmd/ttsgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
