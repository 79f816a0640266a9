package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/paralegal/internal/domain"
)

type askOptions struct {
	maxResults int
	json       bool
}

func newAskCmd(flags *globalFlags) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one legal question and exit",
		Long: `Runs a single query against the configured store and language model.
The store is seeded first when it is empty and seeding is enabled.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, flags, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVarP(&opts.maxResults, "max-results", "n", 0,
		"number of passages to retrieve (default: query.default_max_results)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output the answer as JSON")
	return cmd
}

func runAsk(cmd *cobra.Command, flags *globalFlags, opts *askOptions, question string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.seedIfEmpty(ctx); err != nil {
		return err
	}

	q := domain.Query{Text: question, MaxResults: a.cfg.Query.DefaultMaxResults}
	if cmd.Flags().Changed("max-results") {
		q.MaxResults = opts.maxResults
	}

	ans, err := a.query.Query(ctx, q.Text, q.MaxResults)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if opts.json {
		return outputAnswerJSON(cmd, ans)
	}
	outputAnswerText(cmd, ans)
	return nil
}

type answerJSON struct {
	Answer     string       `json:"answer"`
	Sources    []sourceJSON `json:"sources"`
	Confidence float64      `json:"confidence"`
}

type sourceJSON struct {
	Content        string          `json:"content"`
	Metadata       domain.Metadata `json:"metadata"`
	RelevanceScore float64         `json:"relevance_score"`
}

func outputAnswerJSON(cmd *cobra.Command, ans domain.Answer) error {
	out := answerJSON{
		Answer:     ans.Answer,
		Sources:    make([]sourceJSON, len(ans.Sources)),
		Confidence: ans.Confidence,
	}
	for i, s := range ans.Sources {
		out.Sources[i] = sourceJSON{Content: s.Content, Metadata: s.Metadata, RelevanceScore: s.RelevanceScore}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, ans domain.Answer) {
	cmd.Println(ans.Answer)
	cmd.Println()
	cmd.Printf("Confidence: %.2f\n", ans.Confidence)

	if len(ans.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, s := range ans.Sources {
		cmd.Printf("  [%d] %s / %s (%.2f)\n", i+1, s.Metadata.Type, s.Metadata.Topic, s.RelevanceScore)
		cmd.Printf("      %s\n", s.Content)
	}
}
