package main

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLILocation is a JSON-friendly source location.
type CLILocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// CLINode is a JSON-friendly view of an AST declaration.
type CLINode struct {
	Number   int64        `json:"number"`
	Kind     string       `json:"kind"`
	Name     string       `json:"name,omitempty"`
	Type     string       `json:"type,omitempty"`
	Location *CLILocation `json:"location,omitempty"`
}

// CLICallGroup is one caller or callee with its call sites.
type CLICallGroup struct {
	Function CLINode       `json:"function"`
	Sites    []CLILocation `json:"sites"`
}

// CLIHover is a rendered hover payload.
type CLIHover struct {
	Markdown string `json:"markdown"`
}
