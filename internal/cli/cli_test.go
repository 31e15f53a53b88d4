package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cs2ts/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productSource = "public class Product\n{\n    public int Id { get; set; }\n}\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// run executes the root command. Callers clear DATABASE_URL first so the
// cache stays in memory.
func run(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestConvertFileToStdout(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	src := filepath.Join(t.TempDir(), "Product.cs")
	writeFile(t, src, productSource)

	out, err := run(context.Background(), "convert", src)
	require.NoError(t, err)
	assert.Equal(t, "interface Product {\n    Id: number;\n}\n", out)
}

func TestConvertFileToPath(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	src := filepath.Join(dir, "Product.cs")
	dst := filepath.Join(dir, "nested", "product.d.ts")
	writeFile(t, src, productSource)

	_, err := run(context.Background(), "convert", src, dst)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "interface Product {\n    Id: number;\n}\n", string(got))
}

func TestConvertTreeWithOptionsFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(in, "Models", "Product.cs"), productSource)
	writeFile(t, filepath.Join(in, "obj", "Generated.cs"), productSource)

	optionsPath := filepath.Join(t.TempDir(), "options.json")
	writeFile(t, optionsPath, `{"definitionFile": false, "baseNamespace": "Ignored"}`)

	_, err := run(context.Background(),
		"convert", in, out,
		"--config", optionsPath,
		"--namespace", "Shop",
		"--workers", "2",
	)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "Models", "Product.ts"))
	require.NoError(t, err)
	assert.Equal(t,
		"module Shop {\n"+
			"    export interface Product {\n"+
			"        Id: number;\n"+
			"    }\n"+
			"}",
		string(got))

	assert.NoFileExists(t, filepath.Join(out, "Models", "Product.d.ts"))
	assert.NoDirExists(t, filepath.Join(out, "obj"))
}

func TestConvertErrors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Product.cs"), productSource)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing input", args: []string{"convert", filepath.Join(dir, "missing.cs")}, want: "stat input"},
		{name: "directory without output", args: []string{"convert", dir}, want: "output directory is required"},
		{name: "bad options file", args: []string{"convert", dir, t.TempDir(), "--config", filepath.Join(dir, "none.yaml")}, want: "read options file"},
		{name: "no arguments", args: []string{"convert"}, want: "accepts between 1 and 2 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(context.Background(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGraphRequiresWork(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(context.Background(), "graph")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to do")
}

func TestPrintSubtypes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSubtypes(&buf, "Entity", nil))
	assert.Equal(t, "no declarations extend Entity\n", buf.String())

	buf.Reset()
	require.NoError(t, printSubtypes(&buf, "Entity", []graph.Subtype{
		{Name: "Customer", Kind: "class", File: "Models/Customer.cs", Depth: 1},
		{Name: "Vendor", Depth: 2},
	}))
	assert.Equal(t, "1\tclass\tCustomer\tModels/Customer.cs\n2\texternal\tVendor\t\n", buf.String())
}

func TestWatch(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(in, "Product.cs"), productSource)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := run(ctx, "watch", in, out, "--debounce", "20ms")
		errCh <- err
	}()

	hasContent := func(path, want string) func() bool {
		return func() bool {
			got, err := os.ReadFile(path)
			return err == nil && string(got) == want
		}
	}

	productOut := filepath.Join(out, "Product.d.ts")
	require.Eventually(t, hasContent(productOut, "interface Product {\n    Id: number;\n}\n"),
		5*time.Second, 20*time.Millisecond, "initial conversion")

	writeFile(t, filepath.Join(in, "Order.cs"), "public class Order\n{\n    public string Code { get; set; }\n}\n")
	require.Eventually(t, hasContent(filepath.Join(out, "Order.d.ts"), "interface Order {\n    Code: string;\n}\n"),
		5*time.Second, 20*time.Millisecond, "new file")

	writeFile(t, filepath.Join(in, "Sales", "Line.cs"), "public class Line\n{\n    public bool Paid { get; set; }\n}\n")
	require.Eventually(t, hasContent(filepath.Join(out, "Sales", "Line.d.ts"), "interface Line {\n    Paid: boolean;\n}\n"),
		5*time.Second, 20*time.Millisecond, "new directory")

	require.NoError(t, os.Remove(filepath.Join(in, "Product.cs")))
	require.Eventually(t, func() bool {
		_, err := os.Stat(productOut)
		return os.IsNotExist(err)
	}, 5*time.Second, 20*time.Millisecond, "removed file")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
