package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/processor"
)

var extractMax int

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Print the readable text of a web article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		art, err := collector.NewArticleExtractor().Extract(args[0], extractMax)
		if err != nil {
			printError("extract failed", err)
			return err
		}
		fmt.Println(art.Title)
		fmt.Println()
		fmt.Println(art.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().IntVar(&extractMax, "max-chars", processor.DefaultReadoutRunes, "truncate the text to this many characters")
}
