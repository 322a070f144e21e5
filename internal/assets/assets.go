package assets

// Names of the built-in assets.
const (
	DefaultStyleName    = "burgundy"
	DefaultTemplateName = "deck"
	DefaultScriptName   = "nav"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a document template by name using the default embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// LoadScript loads a script by name using the default embedded loader.
func LoadScript(name string) (string, error) {
	return defaultLoader.LoadScript(name)
}
