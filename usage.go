package wcx

import (
	"fmt"
	"strings"
)

// Usage returns human-readable instructions for using a component: its
// name, a sample tag with every prop set to "value", and the declared
// methods and events.
func Usage(rec *Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Component: %s (v%s)\n\n", rec.Name, rec.Version)

	b.WriteString("Usage:\n  <")
	b.WriteString(rec.Name)
	for _, p := range rec.Props {
		fmt.Fprintf(&b, ` %s="value"`, p)
	}
	fmt.Fprintf(&b, "></%s>\n", rec.Name)

	if len(rec.Props) > 0 {
		fmt.Fprintf(&b, "\nProps: %s\n", strings.Join(rec.Props, ", "))
	}
	if len(rec.Methods) > 0 {
		fmt.Fprintf(&b, "Methods: %s\n", strings.Join(rec.MethodNames(), ", "))
	}
	if len(rec.Events) > 0 {
		fmt.Fprintf(&b, "Events: %s\n", strings.Join(rec.Events, ", "))
	}

	fmt.Fprintf(&b, "\nLoad the script artifact, or import the record:\n  wcx import %s\n", rec.Name)
	return b.String()
}
