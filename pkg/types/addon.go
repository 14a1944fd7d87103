package types

// Source records where an installed addon came from.
type Source struct {
	Provider string `json:"provider" yaml:"provider"`
	ID       string `json:"id" yaml:"id"`
	URL      string `json:"url" yaml:"url"`
}

// Addon is the installed addon record kept in the manifest.
// Identity is (ID, Flavor); ID is the provider slug.
type Addon struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Author      string   `json:"author" yaml:"author"`
	Version     string   `json:"version" yaml:"version"`
	Flavor      Flavor   `json:"gameVersion" yaml:"gameVersion"`
	Directories []string `json:"directories" yaml:"directories"`
	Source      Source   `json:"source" yaml:"source"`
}
