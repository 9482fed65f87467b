package main

// CLIResult is the top-level JSON envelope for every command.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results,omitempty"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIHit is one search match.
type CLIHit struct {
	Source string `json:"source"`
	Tree   int    `json:"tree"` // ordinal of the tree within Source
	Node   int    `json:"node"`
	Label  string `json:"label"`
	// Match is the printed match: the matched subtree, or the whole tree
	// with --whole, or its words with --terminals.
	Match   string            `json:"match"`
	Handles map[string]string `json:"handles,omitempty"`
	Vars    map[string]string `json:"vars,omitempty"`
}

// CLITreebank is one indexed file.
type CLITreebank struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Trees       int    `json:"trees"`
	LastIndexed string `json:"last_indexed"`
}

// CLIExplain is the compiled form of a pattern.
type CLIExplain struct {
	Pattern   string     `json:"pattern"`
	Canonical string     `json:"canonical"`
	Root      CLIASTNode `json:"root"`
}

// CLIASTNode is one node of a compiled pattern.
type CLIASTNode struct {
	Kind        string       `json:"kind"` // "node", "and" or "or"
	Relation    string       `json:"relation,omitempty"`
	Description string       `json:"description,omitempty"`
	Mode        string       `json:"mode,omitempty"`
	Name        string       `json:"name,omitempty"`
	Backref     bool         `json:"backref,omitempty"`
	Link        string       `json:"link,omitempty"`
	Vars        []string     `json:"vars,omitempty"`
	Negated     bool         `json:"negated,omitempty"`
	Optional    bool         `json:"optional,omitempty"`
	Children    []CLIASTNode `json:"children,omitempty"`
}
