package generator

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"ui-kit-catalog/internal/model"
	"ui-kit-catalog/pkg/fsutils"
)

// Config holds the configuration for bundle generation.
type Config struct {
	// SolutionFiles are added to runnable packages only.
	SolutionFiles map[string]FileContent
	// Modified is stamped on every archive entry so output is reproducible.
	Modified time.Time
}

// FileContent defines the content and target subdirectory for a solution file.
type FileContent struct {
	Content string
	SubDir  string // Relative path from the archive root (e.g., "Platforms", "")
}

// --- Namespace Sanitization ---
// Sanitize namespace: replace non-identifier runs with underscore, ensure starts with letter
var nonIdentifier = regexp.MustCompile(`[^A-Za-z0-9_.]+`)
var multiDot = regexp.MustCompile(`\.{2,}`)

const defaultNamespace = "TrimbleUIKit"

func sanitizeNamespace(name string) string {
	sanitized := nonIdentifier.ReplaceAllString(strings.TrimSpace(name), "_")
	sanitized = multiDot.ReplaceAllString(sanitized, ".")
	sanitized = strings.Trim(sanitized, "._")
	if sanitized == "" {
		return defaultNamespace
	}
	if c := sanitized[0]; c >= '0' && c <= '9' {
		sanitized = "App" + sanitized
	}
	return sanitized
}

// DefaultGeneratorConfig provides the MAUI solution skeleton for runnable packages.
func DefaultGeneratorConfig() Config {
	const projectContent = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFrameworks>net8.0-android;net8.0-ios</TargetFrameworks>
    <OutputType>Exe</OutputType>
    <RootNamespace>{{ .Namespace }}</RootNamespace>
    <UseMaui>true</UseMaui>
    <ApplicationTitle>{{ .Namespace }}</ApplicationTitle>
  </PropertyGroup>
</Project>
`

	const mauiProgramContent = `namespace {{ .Namespace }};

public static class MauiProgram
{
    public static MauiApp CreateMauiApp()
    {
        var builder = MauiApp.CreateBuilder();
        builder.UseMauiApp<App>();
        return builder.Build();
    }
}
`

	const appXAMLContent = `<?xml version="1.0" encoding="UTF-8" ?>
<Application xmlns="http://schemas.microsoft.com/dotnet/2021/maui"
             xmlns:x="http://schemas.microsoft.com/winfx/2009/xaml"
             xmlns:views="clr-namespace:{{ .Namespace }}.Views"
             x:Class="{{ .Namespace }}.App">
    <Application.MainPage>
        <views:{{ .StartupPage }} />
    </Application.MainPage>
</Application>
`

	return Config{
		SolutionFiles: map[string]FileContent{
			"{{ .Namespace }}.csproj": {Content: projectContent, SubDir: ""},
			"MauiProgram.cs":          {Content: mauiProgramContent, SubDir: ""},
			"App.xaml":                {Content: appXAMLContent, SubDir: ""},
		},
		Modified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// GenerateBundle builds the zip archive for req from the templates in catalog.
// Every dependency of every requested template becomes <folder>/<file>;
// runnable packages also get the solution skeleton.
func GenerateBundle(cfg Config, catalog []model.Template, req model.BundleRequest) ([]byte, error) {
	if len(req.Templates) == 0 {
		return nil, fmt.Errorf("bundle request names no templates")
	}

	byName := make(map[string]model.Template, len(catalog))
	for _, t := range catalog {
		byName[t.Name] = t
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	written := make(map[string]bool)

	addFile := func(name string, content string) error {
		if written[name] {
			return nil // same file shipped by two templates
		}
		written[name] = true
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: cfg.Modified})
		if err != nil {
			return fmt.Errorf("failed to add %s to bundle: %w", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return fmt.Errorf("failed to write %s to bundle: %w", name, err)
		}
		return nil
	}

	for _, name := range req.Templates {
		tmpl, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown template %q", name)
		}
		for _, dep := range tmpl.Dependencies {
			entry, err := fsutils.ArchivePath(dep.Folder, dep.Name)
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", name, err)
			}
			if err := addFile(entry, placeholderContent(tmpl, dep)); err != nil {
				return nil, err
			}
		}
	}

	if req.PackageType == model.PackageRunnable {
		namespace := sanitizeNamespace(req.AppName)
		startup := req.StartupPage
		if startup == "" {
			startup = req.Templates[0]
		}

		filenames := make([]string, 0, len(cfg.SolutionFiles))
		for filename := range cfg.SolutionFiles {
			filenames = append(filenames, filename)
		}
		sort.Strings(filenames)

		for _, filename := range filenames {
			fileInfo := cfg.SolutionFiles[filename]
			content := fileInfo.Content
			content = strings.ReplaceAll(content, "{{ .Namespace }}", namespace)
			content = strings.ReplaceAll(content, "{{ .StartupPage }}", startup)
			filename = strings.ReplaceAll(filename, "{{ .Namespace }}", namespace)

			entry, err := fsutils.ArchivePath(fileInfo.SubDir, filename)
			if err != nil {
				return nil, fmt.Errorf("solution file %s: %w", filename, err)
			}
			if err := addFile(entry, content); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// placeholderContent is the stand-in body for a template file.
func placeholderContent(tmpl model.Template, dep model.Dependency) string {
	switch strings.ToLower(path.Ext(dep.Name)) {
	case ".xaml":
		return fmt.Sprintf("<!-- %s from the %s template -->\n", dep.Name, tmpl.Title)
	default:
		return fmt.Sprintf("// %s from the %s template\n", dep.Name, tmpl.Title)
	}
}
