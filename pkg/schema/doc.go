// Package schema provides prop validation for surface modules.
//
// A Schema maps prop names to types. Modules declare the props they
// require; the binding validates incoming props trees against the
// declaration before forwarding them to the rendering runtime, so a
// malformed tree is reported to the caller instead of reaching the
// renderer.
//
// Schemas serialize as plain name-to-type-name maps in both JSON and
// YAML, which keeps module manifests readable:
//
//	props:
//	  text: string
//	  count: int
//	  tags: "[string]"
package schema
