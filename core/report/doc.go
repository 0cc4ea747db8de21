// Package report renders parsed leases for people and scripts.
//
// [FormatText] prints one block per lease:
//
//	Lease name: gpu-lease
//	  reservation amount: 3
//	  resource_properties name: gpu-a100
//
// [FormatJSON] and [FormatYAML] emit one document holding every lease, with
// warnings flattened to strings. [FormatMarkdown] renders an HTML fragment
// through html/template and converts it with html-to-markdown.
package report
