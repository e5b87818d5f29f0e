// Package template defines the template renderer contract the block tags plug
// into. The gotemplate subpackage provides the pongo2-backed implementation.
package template
