// Package manifest defines the declarative description of a surface module.
//
// A manifest names a module, declares the props it accepts and supplies the
// defaults a host may apply. Manifests are authored in YAML:
//
//	name: profile
//	description: User profile card
//	default_mode: visible
//	props:
//	  user: string
//	  badges: "[string]"
//	default_props:
//	  user: guest
//	  badges: []
//
// Catalog adapters (memory, loam) load manifests and serve them through
// ports.ModuleCatalog.
package manifest
