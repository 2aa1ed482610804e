/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/extractor"
)

var (
	batchDocument  string
	batchInput     string
	batchOutput    string
	batchColumn    int
	batchHasHeader bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer a CSV file of questions about one document",
	Long: `Read questions from one column of a CSV file, answer each against the
document and write a CSV with both answers, the reliability score and the
judgment for every question.

Example:
  legalease batch -d lease.pdf -i questions.csv -o answers.csv --header`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if batchInput == batchOutput {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		f, err := os.Open(batchInput)
		if err != nil {
			return fmt.Errorf("failed to open input CSV: %w", err)
		}
		defer f.Close()

		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}
		if batchHasHeader && len(records) > 0 {
			records = records[1:]
		}
		if len(records) == 0 {
			return fmt.Errorf("CSV file has no questions")
		}

		c, err := buildComponents(cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		text, err := extractor.ExtractFile(batchDocument)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		sess := assistant.NewSession(uuid.NewString(), c.pipeline)
		if _, err := sess.LoadDocument(filepath.Base(batchDocument), text); err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(batchOutput), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		out, err := os.Create(batchOutput)
		if err != nil {
			return fmt.Errorf("failed to create output CSV: %w", err)
		}
		defer out.Close()

		w := csv.NewWriter(out)
		_ = w.Write([]string{"question", "language", "primary_answer", "comparison_answer", "reliability_score", "winner"})

		answered := 0
		for i, row := range records {
			if batchColumn >= len(row) {
				fmt.Fprintf(os.Stderr, "Row %d: no column %d, skipping\n", i+1, batchColumn)
				continue
			}
			reply, err := sess.Ask(cmd.Context(), row[batchColumn])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Row %d: %v, skipping\n", i+1, err)
				continue
			}
			// The conversation is not needed between independent questions.
			sess.Reset()

			if err := w.Write([]string{
				reply.Question,
				reply.TargetLang,
				reply.Primary.Text,
				reply.Secondary.Text,
				assistant.FormatScore(reply.Verdict.Score),
				reply.Verdict.Winner,
			}); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
			answered++
			fmt.Fprintf(os.Stderr, "Answered %d/%d\n", answered, len(records))

			if cmd.Context().Err() != nil {
				break
			}
		}

		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		fmt.Printf("Answered %d of %d questions, written to %s\n", answered, len(records), batchOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchDocument, "document", "d", "", "PDF document to ask about (required)")
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "CSV file with questions (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "CSV file for answers (required)")
	batchCmd.Flags().IntVarP(&batchColumn, "column", "l", 0, "Column holding the question (0-indexed)")
	batchCmd.Flags().BoolVar(&batchHasHeader, "header", false, "Skip the first row")

	batchCmd.MarkFlagRequired("document")
	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")
}
