package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mlowell/cnav"
	"github.com/mlowell/cnav/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a snapshot from the command line",
	Long:  "Run navigation queries against a snapshot without a language server. All line and column numbers are 0-based.",
}

func init() {
	queryCmd.AddCommand(definitionCmd)
	queryCmd.AddCommand(declarationsCmd)
	queryCmd.AddCommand(referencesCmd)
	queryCmd.AddCommand(hoverCmd)
	queryCmd.AddCommand(callersCmd)
	queryCmd.AddCommand(calleesCmd)
	queryCmd.AddCommand(symbolsCmd)
}

// --- Helpers ---

// openSnapshot opens the snapshot for a source file, from --snapshot or
// derived via the --snapshot-ext/--alias rule.
func openSnapshot(sourceFile string) (*store.Store, error) {
	path := flagSnapshot
	if path == "" {
		rule, err := buildRule()
		if err != nil {
			return nil, err
		}
		if !rule.Configured() {
			return nil, fmt.Errorf("no snapshot: pass --snapshot or --snapshot-ext")
		}
		path = rule.SnapshotPath(sourceFile)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot not found: %s", path)
	}
	return store.Open(path)
}

// resolveFilePath converts a file argument to an absolute path.
func resolveFilePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	return abs, nil
}

// parseIntArg parses a positional argument as an integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be non-negative", name, value)
	}
	return n, nil
}

// positionQuery bundles everything a <file> <line> <col> command needs.
type positionQuery struct {
	snap *store.Store
	src  *store.Source
	node *store.Node
}

// resolvePositionArgs opens the snapshot and resolves the node under the
// cursor from <file> <line> <col> positional args. The caller owns snap.
func resolvePositionArgs(ctx context.Context, args []string) (*positionQuery, error) {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return nil, err
	}
	line, err := parseIntArg(args[1], "line")
	if err != nil {
		return nil, err
	}
	col, err := parseIntArg(args[2], "col")
	if err != nil {
		return nil, err
	}

	snap, err := openSnapshot(file)
	if err != nil {
		return nil, err
	}

	src, err := snap.SourceByName(ctx, file)
	if err != nil {
		snap.Close()
		return nil, err
	}

	doc, err := cnav.ReadDocument(file)
	if err != nil {
		snap.Close()
		return nil, err
	}

	node, err := cnav.ResolvePosition(ctx, snap, doc, src.Number, line, col)
	if err != nil {
		snap.Close()
		return nil, err
	}

	return &positionQuery{snap: snap, src: src, node: node}, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// locationToCLI converts a cnav.Location to a CLILocation.
func locationToCLI(loc *cnav.Location) CLILocation {
	return CLILocation{
		File:      loc.File,
		StartLine: loc.StartLine,
		StartCol:  loc.StartCol,
		EndLine:   loc.EndLine,
		EndCol:    loc.EndCol,
	}
}

// spanToCLI converts a cnav.Span to a CLILocation, resolving the file name.
func spanToCLI(ctx context.Context, snap *store.Store, sp cnav.Span) (CLILocation, error) {
	src, err := snap.SourceByNumber(ctx, sp.Src)
	if err != nil {
		return CLILocation{}, err
	}
	return CLILocation{
		File:      src.Filename,
		StartLine: int(sp.StartRow),
		StartCol:  int(sp.StartCol),
		EndLine:   int(sp.EndRow),
		EndCol:    int(sp.EndCol),
	}, nil
}

// nodeToCLI converts a store.Node to a CLINode with its location.
func nodeToCLI(ctx context.Context, snap *store.Store, n *store.Node) (CLINode, error) {
	cli := CLINode{
		Number: n.Number,
		Kind:   string(n.Kind),
		Name:   n.Name,
		Type:   n.QualifiedType,
	}
	loc, err := cnav.NodeLocation(ctx, snap, n)
	if err != nil {
		return cli, err
	}
	if loc != nil {
		l := locationToCLI(loc)
		cli.Location = &l
	}
	return cli, nil
}

// nodesToLocations maps declaration nodes to their name locations, dropping
// nodes in synthetic sources.
func nodesToLocations(ctx context.Context, snap *store.Store, nodes []*store.Node) ([]CLILocation, error) {
	locs := make([]CLILocation, 0, len(nodes))
	for _, n := range nodes {
		loc, err := cnav.NameLocation(ctx, snap, n)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			continue
		}
		locs = append(locs, locationToCLI(loc))
	}
	return locs, nil
}

// --- Position-Based Commands ---

var definitionCmd = &cobra.Command{
	Use:   "definition <file> <line> <col>",
	Short: "Find the definition of the symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runDefinition,
}

func runDefinition(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	q, err := resolvePositionArgs(ctx, args)
	if err != nil {
		return outputError("definition", err)
	}
	defer q.snap.Close()

	if q.node == nil {
		return outputResult(CLIResult{Command: "definition"})
	}

	def, err := cnav.Definition(ctx, q.snap, q.node)
	if err != nil {
		return outputError("definition", err)
	}
	if def == nil {
		return outputResult(CLIResult{Command: "definition"})
	}

	cli, err := nodeToCLI(ctx, q.snap, def)
	if err != nil {
		return outputError("definition", err)
	}

	one := 1
	return outputResult(CLIResult{
		Command:    "definition",
		Results:    cli,
		TotalCount: &one,
	})
}

var declarationsCmd = &cobra.Command{
	Use:   "declarations <file> <line> <col>",
	Short: "List the redeclaration chain of the symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runDeclarations,
}

func runDeclarations(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	q, err := resolvePositionArgs(ctx, args)
	if err != nil {
		return outputError("declarations", err)
	}
	defer q.snap.Close()

	if q.node == nil {
		return outputResult(CLIResult{Command: "declarations"})
	}

	def, err := cnav.Definition(ctx, q.snap, q.node)
	if err != nil {
		return outputError("declarations", err)
	}
	if def == nil {
		return outputResult(CLIResult{Command: "declarations"})
	}

	decls, err := cnav.Declarations(ctx, q.snap, def)
	if err != nil {
		return outputError("declarations", err)
	}
	decls = append(decls, def)

	cliNodes := make([]CLINode, 0, len(decls))
	for _, d := range decls {
		cli, err := nodeToCLI(ctx, q.snap, d)
		if err != nil {
			return outputError("declarations", err)
		}
		cliNodes = append(cliNodes, cli)
	}

	count := len(cliNodes)
	return outputResult(CLIResult{
		Command:    "declarations",
		Results:    cliNodes,
		TotalCount: &count,
	})
}

var referencesCmd = &cobra.Command{
	Use:   "references <file> <line> <col>",
	Short: "Find all references to the symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runReferences,
}

func init() {
	referencesCmd.Flags().Bool("include-decls", false, "include the declarations themselves")
}

func runReferences(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	q, err := resolvePositionArgs(ctx, args)
	if err != nil {
		return outputError("references", err)
	}
	defer q.snap.Close()

	if q.node == nil {
		return outputResult(CLIResult{Command: "references"})
	}

	includeDecls, _ := cmd.Flags().GetBool("include-decls")
	refs, err := cnav.CollectReferences(ctx, q.snap, q.node, cnav.RefOptions{
		IncludeDeclarations: includeDecls,
	})
	if err != nil {
		return outputError("references", err)
	}

	locs, err := nodesToLocations(ctx, q.snap, refs)
	if err != nil {
		return outputError("references", err)
	}

	count := len(locs)
	return outputResult(CLIResult{
		Command:    "references",
		Results:    locs,
		TotalCount: &count,
	})
}

var hoverCmd = &cobra.Command{
	Use:   "hover <file> <line> <col>",
	Short: "Render hover documentation for the symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runHover,
}

func runHover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	q, err := resolvePositionArgs(ctx, args)
	if err != nil {
		return outputError("hover", err)
	}
	defer q.snap.Close()

	if q.node == nil {
		return outputResult(CLIResult{Command: "hover"})
	}

	markup, err := cnav.RenderHover(ctx, q.snap, q.node, q.src.Number)
	if err != nil {
		return outputError("hover", err)
	}

	one := 1
	return outputResult(CLIResult{
		Command:    "hover",
		Results:    CLIHover{Markdown: markup.Markdown()},
		TotalCount: &one,
	})
}

// --- Call Hierarchy Commands ---

var callersCmd = &cobra.Command{
	Use:   "callers <file> <line> <col>",
	Short: "Find functions that call the function at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runCallers,
}

func runCallers(cmd *cobra.Command, args []string) error {
	return runCallQuery("callers", args, cnav.IncomingCalls)
}

var calleesCmd = &cobra.Command{
	Use:   "callees <file> <line> <col>",
	Short: "Find functions called by the function at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runCallees,
}

func runCallees(cmd *cobra.Command, args []string) error {
	return runCallQuery("callees", args, cnav.OutgoingCalls)
}

func runCallQuery(command string, args []string, collect func(context.Context, *store.Store, *store.Node) ([]*cnav.CallGroup, error)) error {
	ctx := context.Background()
	q, err := resolvePositionArgs(ctx, args)
	if err != nil {
		return outputError(command, err)
	}
	defer q.snap.Close()

	if q.node == nil {
		return outputResult(CLIResult{Command: command})
	}

	def, err := cnav.Definition(ctx, q.snap, q.node)
	if err != nil {
		return outputError(command, err)
	}
	if def == nil || def.Kind != store.KindFunctionDecl {
		return outputError(command, fmt.Errorf("not a function: %s:%s:%s", args[0], args[1], args[2]))
	}

	groups, err := collect(ctx, q.snap, def)
	if err != nil {
		return outputError(command, err)
	}

	cliGroups := make([]CLICallGroup, 0, len(groups))
	for _, g := range groups {
		fn, err := nodeToCLI(ctx, q.snap, g.Target)
		if err != nil {
			return outputError(command, err)
		}
		sites := make([]CLILocation, 0, len(g.Sites))
		for _, sp := range g.Sites {
			loc, err := spanToCLI(ctx, q.snap, sp)
			if err != nil {
				return outputError(command, err)
			}
			sites = append(sites, loc)
		}
		cliGroups = append(cliGroups, CLICallGroup{Function: fn, Sites: sites})
	}

	count := len(cliGroups)
	return outputResult(CLIResult{
		Command:    command,
		Results:    cliGroups,
		TotalCount: &count,
	})
}

// --- File-Based Commands ---

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List top-level declarations in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func runSymbols(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("symbols", err)
	}

	snap, err := openSnapshot(file)
	if err != nil {
		return outputError("symbols", err)
	}
	defer snap.Close()

	src, err := snap.SourceByName(ctx, file)
	if err != nil {
		return outputError("symbols", err)
	}

	nodes, err := snap.TopLevelByFile(ctx, src.Number)
	if err != nil {
		return outputError("symbols", err)
	}

	cliNodes := make([]CLINode, 0, len(nodes))
	for _, n := range nodes {
		if n.Name == "" || !n.Kind.IsDeclaration() {
			continue
		}
		cli, err := nodeToCLI(ctx, snap, n)
		if err != nil {
			return outputError("symbols", err)
		}
		cliNodes = append(cliNodes, cli)
	}

	count := len(cliNodes)
	return outputResult(CLIResult{
		Command:    "symbols",
		Results:    cliNodes,
		TotalCount: &count,
	})
}
