package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatLocationsText formats CLILocation results as "file:line:col" lines.
func formatLocationsText(w io.Writer, locs []CLILocation) {
	for _, loc := range locs {
		fmt.Fprintf(w, "%s:%d:%d\n", loc.File, loc.StartLine, loc.StartCol)
	}
}

// formatNodesText formats CLINode results as aligned columns.
func formatNodesText(w io.Writer, nodes []CLINode) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tTYPE\tLOCATION")
	for _, n := range nodes {
		loc := ""
		if n.Location != nil {
			loc = fmt.Sprintf("%s:%d:%d", n.Location.File, n.Location.StartLine, n.Location.StartCol)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Name, n.Kind, n.Type, loc)
	}
	tw.Flush()
}

// formatCallGroupsText formats CLICallGroup results, one function per block
// with its call sites indented.
func formatCallGroupsText(w io.Writer, groups []CLICallGroup) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s", g.Function.Name)
		if g.Function.Type != "" {
			fmt.Fprintf(w, " %s", g.Function.Type)
		}
		fmt.Fprintln(w)
		for _, site := range g.Sites {
			fmt.Fprintf(w, "  %s:%d:%d\n", site.File, site.StartLine, site.StartCol)
		}
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLILocation:
		formatLocationsText(w, v)
	case []CLINode:
		formatNodesText(w, v)
	case CLINode:
		formatNodesText(w, []CLINode{v})
	case []CLICallGroup:
		formatCallGroupsText(w, v)
	case CLIHover:
		fmt.Fprintln(w, v.Markdown)
	case nil:
		// No output for nil results (e.g., no symbol at the position).
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
