// Package blocktag renders the code-block wrappers emitted by the `label` and
// `lang` block tags. Both tags share one parameterized Renderer: Label trims
// its markup, Lang keeps it verbatim and marks the inner pre element as shell
// content. Rendering is a pure string transformation and never fails.
//
// Handlers are registered on an explicit Registry owned by the caller rather
// than a process-wide table. Template engines resolve block tags by name
// through that registry.
package blocktag
