package model

// Dependency is one file shipped with a template and the project folder it lands in.
type Dependency struct {
	Name   string `json:"name" yaml:"name"`
	Folder string `json:"folder" yaml:"folder"`
}

// Template describes a starter-project template offered by the catalog.
// Name is the unique key; everything else is display metadata.
type Template struct {
	Name         string       `json:"name" yaml:"name"`
	ImageURL     string       `json:"imageURL" yaml:"imageURL"`
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
}

// PackagingOptions holds the download form state for one page.
type PackagingOptions struct {
	AppName     string // Namespace for a runnable solution, also the download filename
	StartupPage string // Template name used as the app's first page
	Runnable    bool   // Runnable solution (true) or plain files (false)
}

// PackageType is the packaging mode understood by the bundle service.
type PackageType int

const (
	PackageRunnable PackageType = 0
	PackagePlain    PackageType = 1
)

// Platform identifies the target UI stack. Only MAUI is offered.
type Platform int

const PlatformMAUI Platform = 0

// BundleRequest is the JSON body posted to the packaging service.
// Empty AppName and StartupPage are left out of the payload.
type BundleRequest struct {
	AppName     string      `json:"AppName,omitempty"`
	Templates   []string    `json:"Templates"`
	Platform    Platform    `json:"Platform"`
	StartupPage string      `json:"StartupPage,omitempty"`
	PackageType PackageType `json:"PackageType"`
}
