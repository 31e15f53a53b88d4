package typemap

// Table maps source scalar type names to target type names.
type Table map[string]string

// builtins are the scalar aliases every table starts from.
var builtins = map[string]string{
	"int":     "number",
	"double":  "number",
	"float":   "number",
	"Int32":   "number",
	"Int64":   "number",
	"short":   "number",
	"long":    "number",
	"decimal": "number",
	"byte":    "number",
	"sbyte":   "number",
	"ushort":  "number",
	"uint":    "number",
	"ulong":   "number",
	"Int16":   "number",
	"UInt16":  "number",
	"UInt32":  "number",
	"UInt64":  "number",
	"Single":  "number",
	"Double":  "number",
	"Decimal": "number",

	"bool":    "boolean",
	"Boolean": "boolean",

	"Guid":        "string",
	"System.Guid": "string",
	"string":      "string",
	"String":      "string",
	"char":        "string",
	"Char":        "string",

	"JObject": "any",
	"dynamic": "any",
	"object":  "any",
	"Object":  "any",
}

// dateTypes follow the date-handling toggle.
var dateTypes = []string{"DateTime", "System.DateTime", "DateTimeOffset", "System.DateTimeOffset"}

// NewTable builds a fresh table from the built-in aliases.
// dateTimeToDate maps timestamp types to Date instead of string.
func NewTable(dateTimeToDate bool) Table {
	t := make(Table, len(builtins)+len(dateTypes))
	for k, v := range builtins {
		t[k] = v
	}

	dateTarget := "string"
	if dateTimeToDate {
		dateTarget = "Date"
	}
	for _, k := range dateTypes {
		t[k] = dateTarget
	}

	return t
}

// With returns a copy of t with overrides merged in.
func (t Table) With(overrides map[string]string) Table {
	out := make(Table, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Lookup returns the target for a scalar source name.
func (t Table) Lookup(name string) (string, bool) {
	v, ok := t[name]
	return v, ok
}
