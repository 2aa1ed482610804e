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
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/legalease/internal"
	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/extractor"
)

var chatFile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat about a PDF document",
	Long: `Start an interactive session in the terminal.

Commands:
  /load <file.pdf>   load a document (clears the conversation)
  /reset             clear the conversation, keep the document
  /history           print the conversation so far
  /quit              exit

Any other line is asked as a question about the loaded document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		sess := assistant.NewSession(uuid.NewString(), c.pipeline)
		out := cmd.OutOrStdout()

		if chatFile != "" {
			if err := loadInto(sess, chatFile, out); err != nil {
				return err
			}
		}
		return runChat(cmd, sess, cmd.InOrStdin(), out)
	},
}

func runChat(cmd *cobra.Command, sess *assistant.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/reset":
			sess.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
		case line == "/history":
			printHistory(out, sess.Conversation())
		case strings.HasPrefix(line, "/load "):
			if err := loadInto(sess, strings.TrimSpace(strings.TrimPrefix(line, "/load ")), out); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		default:
			reply, err := sess.Ask(cmd.Context(), line)
			switch {
			case errors.Is(err, assistant.ErrNoDocument):
				fmt.Fprintln(out, "Load a document first: /load <file.pdf>")
			case err != nil:
				return err
			default:
				fmt.Fprintln(out, reply.Markdown())
			}
		}
		if cmd.Context().Err() != nil {
			return nil
		}
		fmt.Fprint(out, "\n> ")
	}
	return scanner.Err()
}

func loadInto(sess *assistant.Session, path string, out io.Writer) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("only PDF documents are supported: %s", path)
	}
	text, err := extractor.ExtractFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := sess.LoadDocument(filepath.Base(path), text)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %s (language: %s, %d characters)\n", doc.Name, doc.Language, len([]rune(doc.Text)))
	return nil
}

func printHistory(out io.Writer, entries []internal.ConversationEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No conversation yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "[%s] %s:\n%s\n\n", e.At.Format("15:04:05"), e.Role, e.Content)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatFile, "file", "f", "", "PDF document to load at start")
}
