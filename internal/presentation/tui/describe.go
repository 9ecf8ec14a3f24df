package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Describe summarizes a wizard as Markdown: one section per step with its
// flags, fields, targets and content.
func Describe(def *domain.Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", def.Name)
	fmt.Fprintf(&b, "Served under `%s` with %d steps.\n", def.BaseURL, len(def.Steps))

	for _, s := range def.Steps {
		fmt.Fprintf(&b, "\n## %s\n\n", s.Route)
		if flags := stepFlags(s); len(flags) > 0 {
			fmt.Fprintf(&b, "_%s_\n\n", strings.Join(flags, ", "))
		}
		if len(s.Prereqs) > 0 {
			fmt.Fprintf(&b, "- **prereqs**: %s\n", strings.Join(s.Prereqs, ", "))
		}
		for _, f := range s.Fields {
			fmt.Fprintf(&b, "- **field** `%s`%s\n", f, fieldNote(def, f))
		}
		writeNext(&b, s.Next, "")
		if s.Content != "" {
			fmt.Fprintf(&b, "\n%s\n", quote(s.Content))
		}
	}
	return b.String()
}

func stepFlags(s domain.StepConfig) []string {
	var flags []string
	if s.EntryPoint {
		flags = append(flags, "entry point")
	}
	if !s.JourneyChecked() {
		flags = append(flags, "unchecked")
	}
	if s.Reset {
		flags = append(flags, "resets the journey")
	}
	if s.Skip {
		flags = append(flags, "skipped")
	}
	if s.Minor {
		flags = append(flags, "minor")
	}
	if s.Editable {
		flags = append(flags, "editable at "+s.EditRoute())
	}
	return flags
}

func fieldNote(def *domain.Definition, name string) string {
	cfg, ok := def.Fields[name]
	if !ok {
		return ""
	}
	var notes []string
	if cfg.Type != "" {
		notes = append(notes, cfg.Type)
	}
	if cfg.Required {
		notes = append(notes, "required")
	}
	if key := def.JourneyKey(name); key != name {
		notes = append(notes, "stored as "+key)
	}
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}

func writeNext(b *strings.Builder, n domain.Next, indent string) {
	switch {
	case n.Path != "":
		fmt.Fprintf(b, "%s- **next** `%s`\n", indent, n.Path)
	case n.Func != nil || n.FuncName != "":
		name := n.FuncName
		if name == "" {
			name = "func"
		}
		fmt.Fprintf(b, "%s- **next** decided by `%s()`\n", indent, name)
	}
	for _, c := range n.Conditions {
		if c.Redirect != "" {
			fmt.Fprintf(b, "%s- when `%s` redirect to `%s`\n", indent, c.String(), c.Redirect)
			continue
		}
		fmt.Fprintf(b, "%s- when `%s`\n", indent, c.String())
		writeNext(b, c.Next, indent+"  ")
	}
}

func quote(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return strings.Join(lines, "\n")
}
