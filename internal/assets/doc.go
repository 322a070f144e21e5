// Package assets provides the theme styles, document template and navigation
// script used to assemble slide decks.
//
// # Loaders
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in assets compiled in with go:embed
//	    ├── FilesystemLoader  - assets from a directory on disk
//	    └── AssetResolver     - custom directory first, embedded fallback
//
// A custom directory only needs the files it overrides:
//
//	{basePath}/
//	├── styles/{name}.css
//	├── templates/{name}.html
//	└── scripts/{name}.js
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
