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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(db *store.Store) error {
			records, err := db.RecentQueries(cmd.Context(), historyLimit)
			if err != nil {
				return fmt.Errorf("failed to read query log: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No questions answered yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tDOCUMENT\tLANG\tSCORE\tWINNER\tQUESTION")
			for _, r := range records {
				q := []rune(r.Question)
				if len(q) > 60 {
					q = append(q[:57], []rune("...")...)
				}
				fmt.Fprintf(w, "%s\t%s\t%s>%s\t%s%%\t%s\t%s\n",
					r.Timestamp.Local().Format("2006-01-02 15:04"), r.DocumentName,
					r.QueryLang, r.TargetLang, assistant.FormatScore(r.Score), r.Winner, string(q))
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}
