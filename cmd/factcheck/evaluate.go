package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/driver"
	"github.com/agenthands/factcheck/internal/llm"
)

var (
	inputPath  string
	outputPath string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a batch of candidates against a reference",
	Long:  "Reads a JSON batch {\"reference\": {...}, \"candidates\": [...]} and prints the classification records, consistency graph and ranking as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req core.BatchRequest
		if err := readJSON(inputPath, cmd.InOrStdin(), &req); err != nil {
			return err
		}

		ctx := cmd.Context()
		e, cleanup, err := newEvaluator(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.EvaluateBatch(ctx, req)
		if err != nil {
			return err
		}
		return writeJSON(outputPath, cmd.OutOrStdout(), res)
	},
}

var (
	pairReference string
	pairCandidate string
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Evaluate a single candidate against a reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, cleanup, err := newEvaluator(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := e.EvaluatePair(ctx,
			model.Paragraph{ID: "reference", Text: pairReference},
			model.Paragraph{ID: "candidate", Text: pairCandidate},
		)
		if err != nil {
			return err
		}
		return writeJSON(outputPath, cmd.OutOrStdout(), rec)
	},
}

func init() {
	evaluateCmd.Flags().StringVarP(&inputPath, "input", "i", "-", "batch JSON file, - for stdin")
	evaluateCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "report file, - for stdout")

	pairCmd.Flags().StringVar(&pairReference, "reference", "", "reference paragraph")
	pairCmd.Flags().StringVar(&pairCandidate, "candidate", "", "candidate paragraph")
	pairCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "report file, - for stdout")
	_ = pairCmd.MarkFlagRequired("reference")
	_ = pairCmd.MarkFlagRequired("candidate")

	rootCmd.AddCommand(evaluateCmd, pairCmd)
}

// newEvaluator wires providers and, when configured, the Memgraph store.
func newEvaluator(ctx context.Context, cfg *config.Config) (*core.Evaluator, func(), error) {
	providers, closeProviders, err := llm.NewProviders(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = closeProviders() }

	var drv driver.GraphDriver
	if cfg.Evaluation.SaveGraph && cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		drv = d
		cleanup = func() {
			_ = d.Close(context.Background())
			_ = closeProviders()
		}
	}

	e, err := core.NewEvaluator(cfg, providers, drv)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return e, cleanup, nil
}

func readJSON(path string, stdin io.Reader, v any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return eris.Wrapf(err, "open input %s", path)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return eris.Wrap(err, "decode input")
	}
	return nil
}

func writeJSON(path string, stdout io.Writer, v any) error {
	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create output %s", path)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode report")
}
