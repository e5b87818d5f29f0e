package gotemplate

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-blocktags/pkg/blocktag"
)

// registryContextKey carries the engine's tag binding through the pongo2
// globals. It must stay a valid pongo2 identifier.
const registryContextKey = "_blocktag_registry"

type tagBinding struct {
	registry *blocktag.Registry
	logger   *slog.Logger
}

// pongo2 keeps a single process-wide tag table. Only a name-based dispatcher
// is installed there; handlers live in each engine's registry.
var (
	installMu sync.Mutex
	installed = make(map[string]struct{})
)

func installBlockTag(name string) error {
	installMu.Lock()
	defer installMu.Unlock()

	if _, ok := installed[name]; ok {
		return nil
	}
	if err := pongo2.RegisterTag(name, blockTagParser(name)); err != nil {
		return fmt.Errorf("gotemplate: block tag %q collides with an existing tag: %w", name, err)
	}
	installed[name] = struct{}{}
	return nil
}

func isInstalled(name string) bool {
	installMu.Lock()
	defer installMu.Unlock()
	_, ok := installed[name]
	return ok
}

type blockTagNode struct {
	name    string
	markup  string
	token   *pongo2.Token
	wrapper *pongo2.NodeWrapper
}

func blockTagParser(name string) pongo2.TagParser {
	endTag := "end" + name
	return func(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
		wrapper, endArgs, err := doc.WrapUntilTag(endTag)
		if err != nil {
			return nil, err
		}
		if endArgs.Count() > 0 {
			return nil, endArgs.Error(fmt.Sprintf("'%s' does not take any arguments.", endTag), nil)
		}
		markup, decodeErr := decodeMarkup(arguments)
		if decodeErr != nil {
			return nil, arguments.Error(fmt.Sprintf("'%s' markup must be parsed through the block tag engine: %v", name, decodeErr), start)
		}
		return &blockTagNode{
			name:    name,
			markup:  markup,
			token:   start,
			wrapper: wrapper,
		}, nil
	}
}

func (node *blockTagNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	binding, ok := ctx.Public[registryContextKey].(*tagBinding)
	if !ok || binding == nil || binding.registry == nil {
		return ctx.Error(fmt.Sprintf("no block tag registry bound for tag '%s'", node.name), node.token)
	}

	var body bytes.Buffer
	if err := node.wrapper.Execute(ctx, &body); err != nil {
		return err
	}

	fragment, err := binding.registry.Render(blocktag.Invocation{
		TagName: node.name,
		Markup:  node.markup,
		Body:    body.String(),
	})
	if err != nil {
		return ctx.OrigError(err, node.token)
	}
	binding.logger.Debug("gotemplate.block_tag.rendered",
		"tag", node.name,
		"markup", node.markup,
		"body_bytes", body.Len(),
	)

	if _, err := writer.WriteString(fragment.String()); err != nil {
		return ctx.OrigError(err, node.token)
	}
	return nil
}
