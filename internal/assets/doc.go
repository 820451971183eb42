// Package assets provides the CSS styles and HTML templates that paint
// carousel slides.
//
// # Loader Architecture
//
//	AssetLoader, Lister (interfaces)
//	    │
//	    ├── EmbeddedLoader    - built-in styles and the default template set
//	    ├── FilesystemLoader  - custom theme directory on disk
//	    └── AssetResolver     - theme directory first, embedded fallback
//
// AssetResolver.LoadTheme returns the style and template set the composer
// needs in one call. A theme directory may override a single style or
// template set while the rest stays embedded; Theme.Custom records whether
// it did.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}/
//	        ├── layout.html   # page shell, receives the rendered slide body
//	        ├── cover.html
//	        ├── content.html
//	        ├── end.html
//	        └── logo.svg      # optional inline logo
//
// Templates are html/template sources. The data each one receives is
// documented in internal/pipeline.
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
