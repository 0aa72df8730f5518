package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"ui-kit-catalog/internal/deptree"
	"ui-kit-catalog/internal/model"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	folderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	fileStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	enumStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).PaddingRight(1)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderCatalog prints every template as a card followed by its file tree.
func renderCatalog(templates []model.Template) string {
	var b strings.Builder
	for i, t := range templates {
		if i > 0 {
			b.WriteString(separatorStyle.Render(strings.Repeat("─", 40)))
			b.WriteString("\n")
		}
		b.WriteString(renderTemplate(t))
		b.WriteString("\n")
	}
	return b.String()
}

func renderTemplate(t model.Template) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString(" ")
	b.WriteString(nameStyle.Render("(" + t.Name + ")"))
	b.WriteString("\n")
	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n")
	}
	if len(t.Dependencies) > 0 {
		b.WriteString(renderTree(deptree.Build(t.Name, t.Dependencies)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTree draws a dependency tree with lipgloss.
func renderTree(dt deptree.Tree) string {
	return toLipgloss(dt.Root).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle).
		RootStyle(folderStyle).
		String()
}

func toLipgloss(n deptree.Node) *tree.Tree {
	t := tree.Root(label(n))
	for _, child := range n.Children {
		if len(child.Children) == 0 && child.Kind == deptree.KindFile {
			t.Child(label(child))
			continue
		}
		t.Child(toLipgloss(child))
	}
	return t
}

func label(n deptree.Node) string {
	switch n.Kind {
	case deptree.KindFile:
		return fileStyle.Render(n.Label)
	default:
		return folderStyle.Render(n.Label + "/")
	}
}
