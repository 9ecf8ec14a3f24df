package graph

import (
	"fmt"
	"path"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// dynamicNode stands in for targets computed at runtime by a branch function.
const dynamicNode = "dynamic"

// GraphOverlay contains session state to visualize on the graph.
// Routes are relative to the wizard base URL.
type GraphOverlay struct {
	VisitedNodes []string
	InvalidNodes []string
	CurrentNode  string
}

// OverlayFromHistory builds an overlay from a journey log. Entries recorded by
// other wizards or outside base are ignored.
func OverlayFromHistory(def *domain.Definition, log domain.JourneyLog, current string) *GraphOverlay {
	o := &GraphOverlay{CurrentNode: current}
	for _, e := range log {
		if def.Name != "" && e.Wizard != "" && e.Wizard != def.Name {
			continue
		}
		route, ok := relative(def.BaseURL, e.Path)
		if !ok {
			continue
		}
		if e.Invalid {
			o.InvalidNodes = append(o.InvalidNodes, route)
			continue
		}
		o.VisitedNodes = append(o.VisitedNodes, route)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of a journey definition.
// It applies semantic styling:
// - Entry point: ((Circle))
// - Step collecting fields: [/Parallelogram/]
// - Skip step: [[Subroutine]]
// - Default: [Rectangle]
// Conditional branches are labelled with their rule, targets outside the
// wizard are dotted and branch functions point at a shared dynamic node.
func GenerateMermaid(def *domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	external := make(map[string]bool)
	usesDynamic := false

	for _, step := range def.Steps {
		safeID := sanitizeMermaidID(step.Route)

		opener, closer := "[", "]"
		switch {
		case step.EntryPoint:
			opener, closer = "((", "))"
		case step.Skip:
			opener, closer = "[[", "]]"
		case len(step.Fields) > 0:
			opener, closer = "[/", "/]"
		}

		label := step.Route
		if step.Minor {
			label += " <br/> minor"
		}
		if step.Editable {
			label += " <br/> editable"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		edges(&sb, safeID, step.Next, "", external, &usesDynamic)

		for _, p := range step.Prereqs {
			sb.WriteString(fmt.Sprintf("    %s -. prereq .-> %s\n", sanitizeMermaidID("/"+strings.TrimPrefix(p, "/")), safeID))
		}
	}

	for target := range external {
		sb.WriteString(fmt.Sprintf("    %s>\"%s\"]\n", sanitizeMermaidID("ext"+target), target))
	}
	if usesDynamic {
		sb.WriteString(fmt.Sprintf("    %s{{\"?\"}}\n", dynamicNode))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef invalid fill:#ffcdd2,stroke:#b71c1c,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, overlay.VisitedNodes, "visited")
		writeClass(&sb, overlay.InvalidNodes, "invalid")
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func edges(sb *strings.Builder, from string, n domain.Next, label string, external map[string]bool, usesDynamic *bool) {
	switch {
	case n.Path != "":
		to, outside := target(n.Path)
		if outside {
			external[n.Path] = true
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow(label, outside), to))
	case n.Func != nil || n.FuncName != "":
		*usesDynamic = true
		name := n.FuncName
		if name == "" {
			name = "fn"
		}
		if label != "" {
			name = label + " / " + name
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow(name+"()", true), dynamicNode))
	}
	for _, c := range n.Conditions {
		rule := c.String()
		if label != "" {
			rule = label + " / " + rule
		}
		if c.Redirect != "" {
			to, _ := target(c.Redirect)
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", from, arrow(rule+" (redirect)", true), to))
			continue
		}
		edges(sb, from, c.Next, rule, external, usesDynamic)
	}
}

// target maps a branch target to a node ID. Absolute paths leave the wizard.
func target(t string) (string, bool) {
	if strings.HasPrefix(t, "/") {
		return sanitizeMermaidID("ext" + t), true
	}
	return sanitizeMermaidID("/" + t), false
}

func arrow(label string, dotted bool) string {
	if label == "" {
		if dotted {
			return "-.->"
		}
		return "-->"
	}
	// Escape double quotes in the rule for the Mermaid label
	safe := strings.ReplaceAll(label, "\"", "'")
	if dotted {
		return fmt.Sprintf("-. \"%s\" .->", safe)
	}
	return fmt.Sprintf("-- \"%s\" -->", safe)
}

func writeClass(sb *strings.Builder, routes []string, class string) {
	seen := make(map[string]bool)
	for _, r := range routes {
		safeID := sanitizeMermaidID(r)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
	}
}

// Relative strips base from a full step path. Paths outside base are
// returned unchanged.
func Relative(base, p string) string {
	if r, ok := relative(base, p); ok {
		return r
	}
	return p
}

func relative(base, p string) (string, bool) {
	base = path.Join("/", base)
	if base == "/" {
		return p, true
	}
	if !strings.HasPrefix(p, base+"/") {
		return "", false
	}
	return strings.TrimPrefix(p, base), true
}

func sanitizeMermaidID(id string) string {
	id = strings.TrimPrefix(id, "/")
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
