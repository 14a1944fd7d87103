// Package yaml provides YAML output for scripting and inspection
package yaml

import (
	"io"

	"github.com/arthur-debert/wowa/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Renderer writes every result as a YAML document
type Renderer struct {
	output    io.Writer
	documents int
}

// New creates a new YAML renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as a YAML document
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encode(result)
}

// RenderError renders an error as YAML, including its code when it has one
func (r *Renderer) RenderError(err error) error {
	obj := map[string]interface{}{"error": err.Error()}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		obj["code"] = string(code)
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj["details"] = details
	}
	return r.encode(obj)
}

// RenderMessage renders a simple message as YAML
func (r *Renderer) RenderMessage(msg string) error {
	return r.encode(map[string]string{"message": msg})
}

// encode writes v as one complete document. Documents after the first are
// preceded by a "---" separator so the stream stays a sequence of documents.
func (r *Renderer) encode(v interface{}) error {
	if r.documents > 0 {
		if _, err := io.WriteString(r.output, "---\n"); err != nil {
			return err
		}
	}
	r.documents++

	encoder := yaml.NewEncoder(r.output)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
