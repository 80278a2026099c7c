package assets

// Built-in asset names.
const (
	DefaultStyleName = "sheet"
	ExportScriptName = "export"
	scriptExtension  = ".applescript"
	styleExtension   = ".css"
	stylesDirectory  = "styles"
	scriptsDirectory = "scripts"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadScript loads a bridge script by name using the default embedded loader.
func LoadScript(name string) (string, error) {
	return defaultLoader.LoadScript(name)
}
