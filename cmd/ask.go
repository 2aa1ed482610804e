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
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/extractor"
)

var (
	askFile     string
	askQuestion string
	askHTML     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer one question about a PDF document",
	Long: `Extract the text of a PDF, ask both models the question and print the
composite answer as Markdown.

The answer language is the one named in the question ("answer in French",
"відповідай українською"), otherwise the language of the document.

Example:
  legalease ask -f lease.pdf -q "Who is liable for repairs?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		text, err := extractor.ExtractFile(askFile)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}

		sess := assistant.NewSession(uuid.NewString(), c.pipeline)
		doc, err := sess.LoadDocument(filepath.Base(askFile), text)
		if err != nil {
			return err
		}
		logger.Sugar().Infof("Loaded %s (language: %s)", doc.Name, doc.Language)

		reply, err := sess.Ask(cmd.Context(), askQuestion)
		if err != nil {
			return err
		}

		if askHTML {
			fmt.Fprintln(cmd.OutOrStdout(), reply.HTML())
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), reply.Markdown())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "PDF document to ask about (required)")
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "Question to ask (required)")
	askCmd.Flags().BoolVar(&askHTML, "html", false, "Print the answer as HTML instead of Markdown")

	askCmd.MarkFlagRequired("file")
	askCmd.MarkFlagRequired("question")
}
