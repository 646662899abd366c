/*
Package props implements the dynamically-typed property trees that surfaces
are started and re-rendered with.

A tree is a Value: a tagged variant over null, bool, number, string, array and
object. Values convert losslessly to and from JSON, can be embedded in YAML
module manifests, and can be projected onto tagged Go structs with Decode.

Props carry replacement semantics: a surface update always supplies a whole
new tree, never a partial merge. Diff exists to describe what a replacement
changed, for logs and event streams only.
*/
package props
