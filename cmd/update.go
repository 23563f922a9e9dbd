package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var updateMeta metadataFlags

var updateCmd = &cobra.Command{
	Use:   "update <video-id>",
	Short: "Replace the metadata of an uploaded video",
	Long: `Replace the metadata of an uploaded video. The metadata is sent as a whole:
any field left empty is cleared on the server.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateMeta.register(updateCmd)
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	videoID := args[0]

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	client := buildClient(ctx, cfg)
	meta := updateMeta.metadata(cmd, cfg)

	entry, err := client.Update(ctx, videoID, meta)
	if err != nil {
		fmt.Println(errorStyle.Render("✗ " + describeError(err)))
		return err
	}

	fmt.Println(successStyle.Render("✓ Updated " + videoID))
	fmt.Println(labelStyle.Render("  Title:    ") + entry.Title)
	fmt.Println(labelStyle.Render("  Category: ") + entry.Category)
	fmt.Println(labelStyle.Render("  Keywords: ") + strings.Join(entry.Keywords, ", "))
	fmt.Println(labelStyle.Render("  Private:  ") + fmt.Sprint(entry.Private))
	if entry.Updated != "" {
		fmt.Println(labelStyle.Render("  Updated:  ") + entry.Updated)
	}
	return nil
}
