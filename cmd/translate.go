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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/legalease/internal/extractor"
	"github.com/valpere/legalease/internal/translator"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a document with the configured backends",
	Long: `Translate a text or PDF file using the translation backends in
translation.backends, falling back in order. Code spans, URLs and section
citations (§ 12) are protected from translation. Long documents are split
into chunks at paragraph and sentence boundaries.

Example:
  legalease translate -i contract.pdf -o contract.uk.txt -t uk`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		var text string
		if strings.EqualFold(filepath.Ext(inputFile), ".pdf") {
			extracted, err := extractor.ExtractFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			text = extracted
		} else {
			raw, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			text = string(raw)
		}

		c, err := buildComponents(cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		src := sourceLang
		if src == translator.Auto {
			src = c.detector.DetectSample(text, cfg.Detector.SampleSize)
			fmt.Fprintf(os.Stderr, "Detected source language: %s\n", src)
		}

		out, err := c.translator.Translate(cmd.Context(), text, targetLang, src)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		if outputFile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Successfully translated %s to %s\n", src, targetLang)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Text or PDF file to translate (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", translator.Auto, "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("target")
}
