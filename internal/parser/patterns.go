package parser

// Patterns use .NET syntax and run with multiline anchors.
const (
	// declarationPattern finds a top-level class, struct, interface or enum.
	// The body ends on the same line when its braces balance there, otherwise
	// at the first line that starts with the header's indentation followed by
	// '}'.
	declarationPattern = `^(?<indent>[ \t]*)(?:\[[^\]\n]*\][ \t]*)*` +
		`(?:(?:public|internal|private|protected|partial|abstract|sealed|static|readonly|ref|unsafe|new)\s+)*` +
		`(?<kind>class|struct|interface|enum)\s+` +
		`(?<name>\w+(?:[ \t]*<[\w\s,]+>)?)` +
		`(?:\s*:\s*(?<inherits>[\w.<>,\s]+?))?` +
		`(?:\s+where\s+[^{]+?)?` +
		`\s*\{(?:(?<inline>[^\n{}]*(?:\{[^\n{}]*\}[^\n{}]*)*)\}[ \t]*;?[ \t]*$|(?<body>[\s\S]*?)^\k<indent>\}[ \t]*;?)`

	memberPrefix = `^[ \t]*(?:\[[^\]\n]*\][ \t]*)*` +
		`(?:(?<visibility>public|private|protected|internal)[ \t]+)*`

	// typeShape is a possibly qualified name with optional generic
	// arguments and array ranks.
	typeShape = `[\w.]+(?:[ \t]*<[\w.<>,\[\]? \t]+>)?(?:[ \t]*\[[ \t,]*\])*`

	// propertyPattern finds fields and auto, expression-bodied or
	// initialized properties. Accessor braces may start on a later line.
	propertyPattern = memberPrefix +
		`(?:(?<skip>static|const|event)[ \t]+)?` +
		`(?:(?:new|override|sealed|abstract|required|volatile|unsafe)[ \t]+)*` +
		`(?:(?<modifier>virtual|readonly)[ \t]+)?` +
		`(?:(?:override|sealed|required)[ \t]+)*` +
		`(?<type>` + typeShape + `)(?<nullable>\?)?[ \t]+(?<name>\w+)` +
		`(?:\s*(?=\{)|[ \t]*)` +
		`(?<accessor>\{\s*(?:(?:public|private|protected|internal)\s+)*get\s*;\s*` +
		`(?:(?:(?:public|private|protected|internal)\s+)*(?<setter>set|init)\s*;\s*)?\}` +
		`|=>[^;]*;|=[^;]*;|;)`

	// methodPattern finds a method header up to its closing parenthesis.
	methodPattern = memberPrefix +
		`(?:(?<skip>static|extern|operator)[ \t]+)?` +
		`(?:(?:new|override|sealed|abstract|unsafe|partial)[ \t]+)*` +
		`(?:(?<modifier>virtual|readonly)[ \t]+)?` +
		`(?:(?:override|sealed|abstract|new)[ \t]+)*` +
		`(?:(?<async>async)[ \t]+)?` +
		`(?:(?<type>` + typeShape + `\??)[ \t]+)?` +
		`(?<name>\w+)[ \t]*(?:<[\w, \t]+>)?[ \t]*` +
		`\((?<params>[^()]*(?:\([^()]*\)[^()]*)*)\)`

	// parameterPattern walks a parameter list one entry at a time.
	parameterPattern = `\s*(?:\[[^\]]*\]\s*)*(?:(?:ref|out|in|params|this)\s+)*` +
		`(?<type>[\w.]+(?:\s*<[\w.<>,\[\]?\s]+?>)?(?:\s*\[[\s,]*\])*)(?<nullable>\?)?\s+` +
		`(?<name>\w+)(?:\s*=\s*(?<default>[^,]+))?\s*(?:,|$)`

	// enumAnnotationPattern matches attributes on enum entries.
	enumAnnotationPattern = `\[[^\[\]\n]*\]`

	// enumEntryPattern finds NAME or NAME = VALUE entries.
	enumEntryPattern = `(?<name>[A-Za-z_]\w*)\s*(?:=\s*(?<value>[^,\n]+?))?\s*(?:,|$)`
)

// controlKeywords can look like method calls and are never member names.
var controlKeywords = map[string]bool{
	"if":      true,
	"while":   true,
	"for":     true,
	"foreach": true,
	"switch":  true,
	"using":   true,
	"lock":    true,
	"catch":   true,
	"return":  true,
	"new":     true,
	"nameof":  true,
	"typeof":  true,
	"sizeof":  true,
	"default": true,
	"base":    true,
	"this":    true,
}
