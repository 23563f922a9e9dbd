package cmd

import (
	"fmt"
	"log/slog"

	"gdupload/internal/gdata"
	"gdupload/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	uploadMeta       metadataFlags
	uploadMIMEType   string
	uploadFilename   string
	uploadDetectType bool
	uploadOpen       bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file|gs://bucket/object>",
	Short: "Upload a video",
	Long: `Upload a local video file or a Google Cloud Storage object together with its
metadata. The video is streamed, never loaded into memory.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadMeta.register(uploadCmd)
	uploadCmd.Flags().StringVarP(&uploadMIMEType, "mime-type", "m", "", "Video MIME type (default from config)")
	uploadCmd.Flags().StringVar(&uploadFilename, "filename", "", "Filename sent as Slug (default derived from the video)")
	uploadCmd.Flags().BoolVar(&uploadDetectType, "detect-type", false, "Detect the MIME type from the video contents")
	uploadCmd.Flags().BoolVar(&uploadOpen, "open", false, "Open the video page in a browser after upload")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	location := args[0]

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	resolver, cleanup := buildResolver(cfg)
	defer cleanup()

	src, err := resolver.Open(ctx, location)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	meta := uploadMeta.metadata(cmd, cfg)
	meta.Filename = uploadFilename
	meta.MIMEType = resolveMIMEType(location, src, cfg.YouTube.MIMEType)

	client := buildClient(ctx, cfg)

	var id string
	err = runWithSpinner(fmt.Sprintf("Uploading %s", src.Name), func() error {
		var uploadErr error
		id, uploadErr = client.Upload(ctx, src.Payload, meta)
		return uploadErr
	})
	if err != nil {
		fmt.Println(errorStyle.Render("✗ " + describeError(err)))
		return err
	}

	url := gdata.WatchURL(id)
	fmt.Println(successStyle.Render("✓ Uploaded " + src.Name))
	fmt.Println(labelStyle.Render("  ID:  ") + id)
	fmt.Println(labelStyle.Render("  URL: ") + infoStyle.Render(url))

	if uploadOpen {
		if err := browser.OpenURL(url); err != nil {
			slog.Warn("Failed to open browser", "error", err)
		}
	}
	return nil
}

func resolveMIMEType(location string, src *storage.Source, fallback string) string {
	if uploadMIMEType != "" {
		return uploadMIMEType
	}
	if !uploadDetectType {
		return fallback
	}
	if src.ContentType != "" {
		return src.ContentType
	}
	if src.Path == "" {
		slog.Debug("No local file to detect MIME type from", "location", location)
		return fallback
	}

	mtype, err := mimetype.DetectFile(src.Path)
	if err != nil {
		slog.Warn("Failed to detect MIME type", "path", src.Path, "error", err)
		return fallback
	}
	slog.Debug("Detected MIME type", "path", src.Path, "type", mtype.String())
	return mtype.String()
}
