package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <video-id>",
	Short: "Delete an uploaded video",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	videoID := args[0]

	if !deleteYes && interactive() {
		var confirm bool
		if err := huh.NewConfirm().
			Title("Delete video " + videoID + "?").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirm).
			Run(); err != nil {
			return err
		}
		if !confirm {
			fmt.Println(infoStyle.Render("Cancelled"))
			return nil
		}
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	client := buildClient(ctx, cfg)
	if err := client.Delete(ctx, videoID); err != nil {
		fmt.Println(errorStyle.Render("✗ " + describeError(err)))
		return err
	}

	fmt.Println(successStyle.Render("✓ Deleted " + videoID))
	return nil
}
