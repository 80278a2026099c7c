// Package assets provides the stylesheet for software-rendered pages and the
// scripts handed to OS scripting bridges.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// A custom directory overrides individual assets; anything it lacks comes
// from the embedded set.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # page styles (e.g., sheet.css)
//	└── scripts/
//	    └── {name}.applescript   # bridge scripts (e.g., export.applescript)
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
