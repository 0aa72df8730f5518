// Package bundle asks the packaging service for a downloadable archive of
// the selected templates.
package bundle

import "ui-kit-catalog/internal/model"

const (
	// BundlePath is the packaging endpoint on the template service.
	BundlePath = "/api/Package/Bundle"

	// DefaultBaseName names the download when no AppName was given.
	DefaultBaseName = "trimble-ui-kit"

	// Extension is appended to every download name.
	Extension = ".zip"
)

// NewRequest builds the payload for the selected template names.
func NewRequest(names []string, opts model.PackagingOptions) model.BundleRequest {
	templates := make([]string, len(names))
	copy(templates, names)

	packageType := model.PackagePlain
	if opts.Runnable {
		packageType = model.PackageRunnable
	}

	return model.BundleRequest{
		AppName:     opts.AppName,
		Templates:   templates,
		Platform:    model.PlatformMAUI,
		StartupPage: opts.StartupPage,
		PackageType: packageType,
	}
}

// Filename derives the saved file name from the app name.
func Filename(appName string) string {
	if appName == "" {
		appName = DefaultBaseName
	}
	return appName + Extension
}
