package emitter

import (
	"context"
	"strings"
	"testing"
	"time"

	"cs2ts/internal/parser"
	"cs2ts/internal/safematch"
	"cs2ts/internal/typemap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmitter(opts Options) *Emitter {
	p := parser.New(safematch.New(5 * time.Second))
	return New(opts, p, typemap.NewTranslator(typemap.NewTable(false), nil))
}

const mixedBody = `
        public int Visible { get; set; }
        private int Hidden { get; set; }
`

func TestInterfaceVisibilityFiltering(t *testing.T) {
	e := newEmitter(Options{})

	class := parser.TypeDeclaration{Kind: parser.KindClass, Name: "Account", BodyText: mixedBody}
	got, err := e.Interface(context.Background(), class)
	require.NoError(t, err)
	assert.Equal(t, "interface Account {\n    Visible: number;\n}\n", got)

	iface := parser.TypeDeclaration{Kind: parser.KindInterface, Name: "Account", BodyText: mixedBody}
	got, err = e.Interface(context.Background(), iface)
	require.NoError(t, err)
	assert.Equal(t, "interface Account {\n    Visible: number;\n    Hidden: number;\n}\n", got)
}

func TestInterfaceMembers(t *testing.T) {
	body := `
        public Order(int id) { }
        public readonly Guid Id;
        public string? Note { get; set; }
        public virtual List<OrderLine> Lines { get; set; }
        public Dictionary<string, decimal> Totals { get; set; }
        public async Task<Customer> LoadCustomerAsync(int id, bool refresh = false) { return null; }
        public async Task SaveAsync() { }
        public virtual void Recalculate() { }
        public ORDER() { }
`
	decl := parser.TypeDeclaration{Kind: parser.KindClass, Name: "Order", BodyText: body}

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "defaults",
			opts: Options{},
			want: "interface Order {\n" +
				"    readonly Id: string;\n" +
				"    Note?: string;\n" +
				"    Lines: OrderLine[];\n" +
				"    Totals: { [index: string]: number };\n" +
				"    LoadCustomerAsync(id: number, refresh?: boolean): Promise<Customer>;\n" +
				"    SaveAsync(): Promise<void>;\n" +
				"    Recalculate(): void;\n" +
				"}\n",
		},
		{
			name: "strip readonly and ignore virtual",
			opts: Options{StripReadOnly: true, IgnoreVirtual: true},
			want: "interface Order {\n" +
				"    Id: string;\n" +
				"    Note?: string;\n" +
				"    Totals: { [index: string]: number };\n" +
				"    LoadCustomerAsync(id: number, refresh?: boolean): Promise<Customer>;\n" +
				"    SaveAsync(): Promise<void>;\n" +
				"}\n",
		},
		{
			name: "ignore methods",
			opts: Options{IgnoreMethods: true},
			want: "interface Order {\n" +
				"    readonly Id: string;\n" +
				"    Note?: string;\n" +
				"    Lines: OrderLine[];\n" +
				"    Totals: { [index: string]: number };\n" +
				"}\n",
		},
		{
			name: "name resolvers",
			opts: Options{
				IgnoreMethods:        true,
				PropertyNameResolver: strings.ToLower,
			},
			want: "interface Order {\n" +
				"    readonly id: string;\n" +
				"    note?: string;\n" +
				"    lines: OrderLine[];\n" +
				"    totals: { [index: string]: number };\n" +
				"}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newEmitter(tt.opts).Interface(context.Background(), decl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterfaceConstructorExclusion(t *testing.T) {
	decl := parser.TypeDeclaration{
		Kind:     parser.KindClass,
		Name:     "Widget",
		BodyText: "\n    public widget() { }\n    public Widget(int size) { }\n    public void Draw() { }\n",
	}

	got, err := newEmitter(Options{}).Interface(context.Background(), decl)
	require.NoError(t, err)
	assert.Equal(t, "interface Widget {\n    Draw(): void;\n}\n", got)
}

func TestInterfaceMethodNameResolver(t *testing.T) {
	decl := parser.TypeDeclaration{
		Kind:     parser.KindInterface,
		Name:     "IService",
		BodyText: "\n    Task<int> CountAsync(string filter);\n",
	}

	got, err := newEmitter(Options{MethodNameResolver: strings.ToLower}).Interface(context.Background(), decl)
	require.NoError(t, err)
	// Without the async keyword the return type is not unwrapped.
	assert.Equal(t, "interface IService {\n    countasync(filter: string): Task<number>;\n}\n", got)
}

func TestInterfaceHeader(t *testing.T) {
	stripPrefix := func(name string) string { return strings.TrimPrefix(name, "Models.") }

	tests := []struct {
		name string
		opts Options
		base string
		want string
	}{
		{name: "no base", want: "interface Customer {"},
		{name: "base", base: "Entity", want: "interface Customer extends Entity {"},
		{name: "prefix with I", base: "Entity", opts: Options{PrefixWithI: true}, want: "interface ICustomer extends IEntity {"},
		{name: "ignore all", base: "Entity", opts: Options{IgnoreInheritance: true}, want: "interface Customer {"},
		{name: "ignore listed", base: "Entity", opts: Options{IgnoreInheritanceOf: []string{"Entity"}}, want: "interface Customer {"},
		{name: "ignore other", base: "Entity", opts: Options{IgnoreInheritanceOf: []string{"Base"}}, want: "interface Customer extends Entity {"},
		{name: "ignore resolved spelling", base: "Entity", opts: Options{PrefixWithI: true, IgnoreInheritanceOf: []string{"IEntity"}}, want: "interface ICustomer {"},
		{name: "name resolver", base: "Models.Entity", opts: Options{InterfaceNameResolver: stripPrefix}, want: "interface Customer extends Entity {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := parser.TypeDeclaration{Kind: parser.KindClass, Name: "Customer", InheritsFrom: tt.base}
			got, err := newEmitter(tt.opts).Interface(context.Background(), decl)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n}\n", got)
		})
	}
}

func TestInterfaceAdditionalCode(t *testing.T) {
	var gotIndent, gotName string
	var gotProps []parser.PropertyMember

	opts := Options{
		PrefixWithI: true,
		AdditionalInterfaceCodeResolver: func(indent, originalName string, props []parser.PropertyMember, methods []parser.MethodMember) string {
			gotIndent, gotName, gotProps = indent, originalName, props
			return "clone(): I" + originalName + ";"
		},
	}
	decl := parser.TypeDeclaration{Kind: parser.KindClass, Name: "Point", BodyText: "\n    public double X;\n"}

	got, err := newEmitter(opts).Interface(context.Background(), decl)
	require.NoError(t, err)
	assert.Equal(t, "interface IPoint {\n    X: number;\n\n    clone(): IPoint;\n}\n", got)
	assert.Equal(t, Indent, gotIndent)
	assert.Equal(t, "Point", gotName)
	require.Len(t, gotProps, 1)
	assert.Equal(t, "number", gotProps[0].TargetType)
}

func TestPromise(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Task<Customer>", want: "Promise<Customer>"},
		{input: "ValueTask<number>", want: "Promise<number>"},
		{input: "System.Threading.Tasks.Task<string>", want: "Promise<string>"},
		{input: "Task", want: "Promise<void>"},
		{input: "void", want: "void"},
		{input: "TaskList", want: "TaskList"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, promise(tt.input))
		})
	}
}

func TestEnum(t *testing.T) {
	decl := parser.TypeDeclaration{Kind: parser.KindEnum, Name: "Status", BodyText: "\n    A,\n    B = 5,\n    C\n"}

	tests := []struct {
		name    string
		opts    Options
		declare bool
		want    string
	}{
		{
			name:    "numeric declared",
			declare: true,
			want:    "declare enum Status {\n    A = 0,\n    B = 5,\n    C = 6\n}\n",
		},
		{
			name: "numeric in namespace",
			want: "enum Status {\n    A = 0,\n    B = 5,\n    C = 6\n}\n",
		},
		{
			name:    "string union",
			opts:    Options{UseStringUnionTypes: true},
			declare: true,
			want:    "declare type Status =\n    'A' |\n    'B' |\n    'C'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newEmitter(tt.opts).Enum(context.Background(), decl, tt.declare)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnumEmpty(t *testing.T) {
	decl := parser.TypeDeclaration{Kind: parser.KindEnum, Name: "Nothing", BodyText: " "}

	got, err := newEmitter(Options{}).Enum(context.Background(), decl, false)
	require.NoError(t, err)
	assert.Equal(t, "enum Nothing {\n}\n", got)

	got, err = newEmitter(Options{UseStringUnionTypes: true}).Enum(context.Background(), decl, false)
	require.NoError(t, err)
	assert.Equal(t, "type Nothing = never\n", got)
}

func TestWrapNamespace(t *testing.T) {
	result := "interface Foo {\n    Bar: string;\n}\n\nenum Kind {\n    A = 0\n}\n"

	got := WrapNamespace(result, "Models", true)
	assert.Equal(t, "declare module Models {\n"+
		"    export interface Foo {\n"+
		"        Bar: string;\n"+
		"    }\n"+
		"\n"+
		"    export enum Kind {\n"+
		"        A = 0\n"+
		"    }\n"+
		"}", got)

	got = WrapNamespace("type T =\n    'A'\n", "Models", false)
	assert.Equal(t, "module Models {\n    export type T =\n        'A'\n}", got)

	assert.Equal(t, "declare module Empty {\n}", WrapNamespace("", "Empty", true))
}
