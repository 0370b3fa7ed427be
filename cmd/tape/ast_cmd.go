package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	"github.com/risor-io/tape"
	"github.com/risor-io/tape/ast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newAstCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Display the instruction tree of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return astHandler(cmd, v, args)
		},
	}
	cmd.Flags().StringP("code", "c", "", "Code to parse")
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json or yaml)")
	cmd.RegisterFlagCompletionFunc("output", fixedCompletion("text", "json", "yaml"))
	return cmd
}

func astHandler(cmd *cobra.Command, v *viper.Viper, args []string) error {
	code, filename, err := getCode(cmd, args)
	if err != nil {
		return err
	}
	program, err := tape.Compile(code, compileOptions(v, filename)...)
	if err != nil {
		return report(cmd.ErrOrStderr(), err, useColor(v, cmd.ErrOrStderr()))
	}

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("output")
	switch strings.ToLower(format) {
	case "", "text":
		printAST(out, program)
		return nil
	case "json":
		return printASTJSON(out, program, useColor(v, out))
	case "yaml":
		return printASTYAML(out, program)
	}
	return fmt.Errorf("unknown output format: %s", format)
}

// astNode represents a node in the JSON and YAML output.
type astNode struct {
	Type     string     `json:"type" yaml:"type"`
	Symbol   string     `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Offset   int        `json:"offset" yaml:"offset"`
	Line     int        `json:"line" yaml:"line"`
	Column   int        `json:"column" yaml:"column"`
	Children []*astNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func newASTNode(node ast.Node) *astNode {
	result := &astNode{
		Type:   reflect.TypeOf(node).Elem().Name(),
		Offset: node.Pos().Char,
		Line:   node.Pos().LineNumber(),
		Column: node.Pos().ColumnNumber(),
	}
	if cmd, ok := node.(*ast.Command); ok {
		result.Type = cmd.Op.String()
		result.Symbol = cmd.String()
	}
	return result
}

func nodeTree(program *ast.Program) *astNode {
	type item struct {
		parent *astNode
		body   []ast.Instruction
	}
	root := newASTNode(program)
	stack := []item{{parent: root, body: program.Instructions}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, instr := range it.body {
			child := newASTNode(instr)
			it.parent.Children = append(it.parent.Children, child)
			if loop, ok := instr.(*ast.Loop); ok {
				stack = append(stack, item{parent: child, body: loop.Body})
			}
		}
	}
	return root
}

func printASTJSON(w io.Writer, program *ast.Program, colored bool) error {
	root := nodeTree(program)
	var data []byte
	var err error
	if colored {
		data, err = prettyjson.Marshal(root)
	} else {
		data, err = json.MarshalIndent(root, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printASTYAML(w io.Writer, program *ast.Program) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nodeTree(program)); err != nil {
		return err
	}
	return enc.Close()
}

// printAST writes one line per node, indented by nesting depth.
func printAST(w io.Writer, program *ast.Program) {
	type item struct {
		node  ast.Node
		depth int
	}
	stack := []item{{node: program}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		indent := strings.Repeat("  ", it.depth)
		var body []ast.Instruction
		switch n := it.node.(type) {
		case *ast.Program:
			fmt.Fprintf(w, "%s%s\n", indent, cyan("Program"))
			body = n.Instructions
		case *ast.Loop:
			fmt.Fprintf(w, "%s%s %s\n", indent, cyan("Loop"), yellow(position(n)))
			body = n.Body
		case *ast.Command:
			fmt.Fprintf(w, "%s%s %s %s\n", indent, cyan(n.Op), n, yellow(position(n)))
		}
		for i := len(body) - 1; i >= 0; i-- {
			stack = append(stack, item{node: body[i], depth: it.depth + 1})
		}
	}
}

func position(node ast.Node) string {
	pos := node.Pos()
	return fmt.Sprintf("%d:%d", pos.LineNumber(), pos.ColumnNumber())
}
