package gen

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/hardsync.go/pkg/contract"
	"github.com/robotalks/hardsync.go/pkg/protocol"
)

func buildSet(t *testing.T, specs ...contract.Spec) *contract.Set {
	set, err := contract.BuildSet(protocol.DefaultEncoding(), specs)
	require.NoError(t, err)
	return set
}

func parse(t *testing.T, src []byte) *ast.File {
	f, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.ParseComments)
	require.NoError(t, err)
	return f
}

func declNames(f *ast.File) []string {
	var names []string
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil {
				name = "Client." + name
			}
			names = append(names, name)
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					names = append(names, ts.Name.Name)
				}
			}
		}
	}
	return names
}

func TestGenerate(t *testing.T) {
	set := buildSet(t,
		contract.Spec{
			Name:    "MeasureVoltage",
			Args:    []contract.ArgDoc{{Name: "channel", Type: "Int"}, {Name: "integration_time", Type: "Double"}},
			Returns: &contract.ArgDoc{Name: "voltage", Type: "Double"},
		},
		contract.Spec{Name: "set_label", Args: []contract.ArgDoc{{Name: "text", Type: "String"}}},
		contract.Spec{Name: "Temperature", Returns: &contract.ArgDoc{Name: "celsius", Type: "Float"}},
	)
	src, err := Generate(set, Options{Package: "bench", Source: "bench.yaml"})
	require.NoError(t, err)
	f := parse(t, src)
	require.Equal(t, "bench", f.Name.Name)
	require.Equal(t, []string{
		"Contracts", "Device", "Bind", "Client", "NewClient",
		"Client.MeasureVoltage", "Client.SetLabel", "Client.Temperature",
	}, declNames(f))

	code := string(src)
	require.True(t, strings.HasPrefix(code, "// Code generated by hsgen from bench.yaml. DO NOT EDIT.\n"))
	for _, expect := range []string{
		"MeasureVoltage(channel int, integrationTime float64) (float64, error)",
		"SetLabel(text string) error",
		"Temperature() (float32, error)",
		`d.Handle("MeasureVoltageRequest", func(in *dispatch.Inputs) (protocol.Value, error) {`,
		"ret, err := dev.MeasureVoltage(in.Int(0), in.Double(1))",
		"return protocol.DoubleValue(ret), err",
		"return protocol.Value{}, dev.SetLabel(in.String(0))",
		"func (c *Client) MeasureVoltage(ctx context.Context, channel int, integrationTime float64) (float64, error) {",
		"v, err := c.conn.Invoke(ctx, ct, protocol.IntValue(channel), protocol.DoubleValue(integrationTime))",
		"return v.AsFloat(), err",
		`{Name: "set_label", Args: []contract.ArgDoc{{Name: "text", Type: "String"}}},`,
	} {
		require.Contains(t, code, expect)
	}
}

func TestGenerateRenamesParams(t *testing.T) {
	set := buildSet(t, contract.Spec{Name: "Configure", Args: []contract.ArgDoc{
		{Name: "type", Type: "Int"},
		{Name: "len", Type: "Int"},
		{Name: "ctx", Type: "String"},
		{Name: "v", Type: "Float"},
	}})
	src, err := Generate(set, Options{})
	require.NoError(t, err)
	require.Equal(t, DefaultPackage, parse(t, src).Name.Name)
	require.Contains(t, string(src), "Configure(typeArg int, lenArg int, ctxArg string, vArg float32) error")
}

func TestGenerateEmptySet(t *testing.T) {
	src, err := Generate(buildSet(t), Options{Package: "empty"})
	require.NoError(t, err)
	f := parse(t, src)
	for _, imp := range f.Imports {
		require.NotEqual(t, `"context"`, imp.Path.Value)
	}
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(buildSet(t), Options{Package: "not-a-package"})
	require.True(t, errors.Is(err, ErrInvalidPackage))

	set := buildSet(t, contract.Spec{Name: "set_label"}, contract.Spec{Name: "SetLabel"})
	_, err = Generate(set, Options{})
	require.True(t, errors.Is(err, ErrInvalidIdentifier))

	set = buildSet(t, contract.Spec{Name: "Move", Args: []contract.ArgDoc{
		{Name: "max_x", Type: "Int"}, {Name: "maxX", Type: "Int"},
	}})
	_, err = Generate(set, Options{})
	require.True(t, errors.Is(err, ErrInvalidIdentifier))

	set = buildSet(t, contract.Spec{Name: "_"})
	_, err = Generate(set, Options{})
	require.True(t, errors.Is(err, ErrInvalidIdentifier))
}
