// Package translator holds the process-wide shader translator used to turn
// GLSL ES 3.00 effect sources into the dialect of the active GL context.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the shared translator, creating it on first use.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr != nil {
			initErr = fmt.Errorf("failed to create shader translator: %w", initErr)
		}
	})
	return translator, initErr
}

// Fragment translates a GLSL ES 3.00 fragment source for the target dialect
// and returns the translated code along with the mapping from declared to
// emitted uniform names.
func Fragment(source string, isGLES bool) (string, map[string]string, error) {
	t, err := Get()
	if err != nil {
		return "", nil, err
	}
	format := gst.OutputFormatGLSL410
	if isGLES {
		format = gst.OutputFormatESSL
	}
	fs, err := t.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, format)
	if err != nil {
		return "", nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}
	names := make(map[string]string, len(fs.Variables))
	for name, v := range fs.Variables {
		names[name] = v.MappedName
	}
	return fs.Code, names, nil
}
