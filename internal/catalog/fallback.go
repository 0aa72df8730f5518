package catalog

import (
	"encoding/json"

	"ui-kit-catalog/internal/model"
)

// Fallback returns the built-in descriptor set used whenever the catalog
// service gives nothing usable. Each call returns a fresh copy.
func Fallback() []model.Template {
	return []model.Template{
		{
			Name:        "LoginPage",
			ImageURL:    "https://templategenstg.blob.core.windows.net/images/LoginPage.png",
			Title:       "Login page",
			Description: "A simple Login UI for mobile applications.",
			Dependencies: []model.Dependency{
				{Name: "LoginPage.xaml", Folder: "Views"},
				{Name: "LoginPage.xaml.cs", Folder: "Views"},
				{Name: "LoginPageViewModel.cs", Folder: "ViewModels"},
				{Name: "Data.cs", Folder: "Models"},
			},
		},
	}
}

// Encode renders templates the way the catalog service does.
func Encode(templates []model.Template) ([]byte, error) {
	if templates == nil {
		templates = []model.Template{}
	}
	return json.Marshal(templates)
}
