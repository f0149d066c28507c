package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/stateflow/pkg/compiler"
	"github.com/dukex/stateflow/pkg/decompiler"
	"github.com/dukex/stateflow/pkg/log"
	"github.com/dukex/stateflow/pkg/validation"
	cli "github.com/urfave/cli/v3"
)

var (
	errBlocking    = errors.New("graph has blocking diagnostics")
	errDiagnostics = errors.New("graph has diagnostics")
)

func CompileCommand() *cli.Command {
	return &cli.Command{
		Name:    "compile",
		Aliases: []string{"c"},
		Usage:   "Compile a graph file into a step document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Usage:    "Graph file (.json, .yaml)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "Workflow name",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file; stdout when omitted",
			},
			&cli.StringFlag{
				Name:    "created-by",
				Usage:   "Author recorded in the document",
				Sources: cli.EnvVars("CREATED_BY"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail on any diagnostic, not only blocking ones",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("compile")

			graph, err := readGraph(command.String("in"))
			if err != nil {
				return err
			}

			result := compiler.Compile(graph.Nodes, graph.Edges, command.String("name"),
				compiler.WithCreatedBy(command.String("created-by")))

			logger.DebugContext(ctx, "Compiled graph",
				"nodes", len(graph.Nodes), "steps", len(result.Document.Steps), "diagnostics", len(result.Diagnostics))

			reportDiagnostics(command.Root().ErrWriter, result.Diagnostics)

			if err := writeOutput(command.Root().Writer, command.String("out"), result.Document); err != nil {
				return err
			}

			switch {
			case result.Diagnostics.Blocking():
				return errBlocking
			case command.Bool("strict") && len(result.Diagnostics) > 0:
				return fmt.Errorf("%w: %d found", errDiagnostics, len(result.Diagnostics))
			}

			return nil
		},
	}
}

func DecompileCommand() *cli.Command {
	return &cli.Command{
		Name:    "decompile",
		Aliases: []string{"d"},
		Usage:   "Rebuild a graph from a step document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Usage:    "Document file (.json)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Start step name; defaults to the document's startAt",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (.json, .yaml); stdout when omitted",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("decompile")

			doc, err := readDocument(command.String("in"))
			if err != nil {
				return err
			}

			if start := command.String("start"); start != "" {
				doc.StartAt = start
			}

			result := decompiler.DecompileDocument(doc)

			logger.DebugContext(ctx, "Decompiled document",
				"steps", len(doc.Steps), "nodes", len(result.Graph.Nodes), "diagnostics", len(result.Diagnostics))

			reportDiagnostics(command.Root().ErrWriter, result.Diagnostics)

			return writeOutput(command.Root().Writer, command.String("out"), result.Graph)
		},
	}
}

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Report diagnostics for a graph file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Usage:    "Graph file (.json, .yaml)",
				Required: true,
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			graph, err := readGraph(command.String("in"))
			if err != nil {
				return err
			}

			diagnostics := validation.ValidateGraph(graph)

			for _, node := range graph.Nodes {
				if !node.Type.Valid() {
					continue
				}

				diagnostics = append(diagnostics, validation.ValidateNode(node)...)
			}

			reportDiagnostics(command.Root().Writer, diagnostics)

			if diagnostics.Blocking() {
				return errBlocking
			}

			if len(diagnostics) == 0 {
				fmt.Fprintln(command.Root().Writer, "ok")
			}

			return nil
		},
	}
}
