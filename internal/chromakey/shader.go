package chromakey

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/chromakey.wgsl
var shaderSource string

// Entry points of the keying program.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// ShaderSource returns the WGSL program.
func ShaderSource() string {
	return shaderSource
}

// CompileShader compiles the WGSL program to SPIR-V words.
func CompileShader() ([]uint32, error) {
	spirv, err := naga.Compile(shaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile chroma-key shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile chroma-key shader: %d bytes is not a whole number of words", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}
