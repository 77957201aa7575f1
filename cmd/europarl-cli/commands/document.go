package commands

import (
	"fmt"

	"github.com/ABCurado/eu-parliment-votes-sdk/internal/document"

	"github.com/spf13/cobra"
)

const previewLength = 400

func init() {
	rootCmd.AddCommand(documentCmd)
}

var documentCmd = &cobra.Command{
	Use:   "document <id>",
	Short: "Fetches a document and prints the start of its resolution text.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.Close()

		doc, err := document.Fetch(cmd.Context(), e.client, args[0])
		if err != nil {
			fatal("failed to fetch document", err)
		}

		preview := []rune(doc.Text)
		if len(preview) > previewLength {
			preview = append(preview[:previewLength], '…')
		}

		fmt.Printf("id:   %s\n", doc.ID)
		fmt.Printf("kind: %s\n", doc.Kind)
		fmt.Printf("url:  %s\n", doc.Url)
		fmt.Printf("text: %d characters\n\n", len([]rune(doc.Text)))
		fmt.Println(string(preview))
	},
}
