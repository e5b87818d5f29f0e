package template

import (
	"io"

	"github.com/goliatone/go-blocktags/pkg/blocktag"
)

// TemplateRenderer is the host engine seam. Block tags are resolved through
// the registry handed to RegisterBlockTags.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	RegisterBlockTags(registry *blocktag.Registry) error
	GlobalContext(data any) error
}
