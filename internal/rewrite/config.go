package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sbwt/internal/ports"
	"sbwt/pkg/logging"
)

// IdentifierField is the top-level template key holding the environment identifier.
const IdentifierField = "project_id"

var (
	// assignment '=' + digits + (comment marker | end of line)
	portValueRe = regexp.MustCompile(`(?m)(=[ \t]*)(\d+)([ \t]*(?:#|\r?$))`)

	identifierRe   = regexp.MustCompile(`(?m)^([ \t]*` + IdentifierField + `[ \t]*=[ \t]*)"[^"\r\n]*"`)
	firstSectionRe = regexp.MustCompile(`(?m)^[ \t]*\[`)
)

// RewriteConfig substitutes every changed port of portMap and sets the
// top-level identifier field. Substitution is a single pass, so a map in
// which one entry's new value is another entry's old value is safe.
func RewriteConfig(templateText string, portMap ports.PortMap, identifier string) string {
	changed := portMap.Changed()

	out := templateText
	if len(changed) > 0 {
		out = portValueRe.ReplaceAllStringFunc(out, func(match string) string {
			m := portValueRe.FindStringSubmatch(match)
			newPort, ok := changed[m[2]]
			if !ok {
				return match
			}
			return m[1] + newPort + m[3]
		})
	}

	if identifier != "" {
		out = replaceIdentifier(out, identifier)
	}
	return out
}

// replaceIdentifier only touches the region before the first section header.
func replaceIdentifier(text, identifier string) string {
	topEnd := len(text)
	if loc := firstSectionRe.FindStringIndex(text); loc != nil {
		topEnd = loc[0]
	}

	top := identifierRe.ReplaceAllStringFunc(text[:topEnd], func(match string) string {
		m := identifierRe.FindStringSubmatch(match)
		return m[1] + `"` + identifier + `"`
	})
	return top + text[topEnd:]
}

// HasIdentifierField reports whether the template declares a top-level project_id.
func HasIdentifierField(templateText string) bool {
	topEnd := len(templateText)
	if loc := firstSectionRe.FindStringIndex(templateText); loc != nil {
		topEnd = loc[0]
	}
	return identifierRe.MatchString(templateText[:topEnd])
}

// WriteConfig renders templatePath into outputPath. The template is never modified.
func WriteConfig(templatePath, outputPath string, portMap ports.PortMap, identifier string) error {
	if filepath.Clean(templatePath) == filepath.Clean(outputPath) {
		return fmt.Errorf("output path %s must differ from the template path", outputPath)
	}

	data, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}
	info, err := os.Stat(templatePath)
	if err != nil {
		return fmt.Errorf("failed to stat template %s: %w", templatePath, err)
	}

	rendered := RewriteConfig(string(data), portMap, identifier)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(rendered), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write config %s: %w", outputPath, err)
	}

	logging.Debug("Rewrite", "Wrote %s from %s (%d port changes, identifier %q)",
		outputPath, templatePath, len(portMap.Changed()), identifier)
	if identifier != "" && !strings.Contains(rendered, `"`+identifier+`"`) {
		logging.Warn("Rewrite", "Template %s has no top-level %s field; identifier not written", templatePath, IdentifierField)
	}
	return nil
}
