package cmd

import (
	"gdupload/internal/gdata"
	"gdupload/pkg/config"

	"github.com/spf13/cobra"
)

type metadataFlags struct {
	title       string
	description string
	category    string
	keywords    []string
	private     bool
}

func (f *metadataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Video title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Video description")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Video category, e.g. People")
	cmd.Flags().StringSliceVarP(&f.keywords, "keywords", "k", nil, "Comma separated keywords")
	cmd.Flags().BoolVar(&f.private, "private", false, "Mark the video private")
}

// metadata builds video metadata from the flags, falling back to the
// configured category, tags and privacy for flags the user left unset.
func (f *metadataFlags) metadata(cmd *cobra.Command, cfg *config.Config) gdata.Metadata {
	meta := gdata.Metadata{
		Title:       f.title,
		Description: f.description,
		Category:    f.category,
		Keywords:    f.keywords,
		Private:     f.private,
	}

	if !cmd.Flags().Changed("category") {
		meta.Category = cfg.YouTube.Category
	}
	if !cmd.Flags().Changed("keywords") {
		meta.Keywords = cfg.YouTube.DefaultTags
	}
	if !cmd.Flags().Changed("private") {
		meta.Private = cfg.YouTube.Private
	}
	return meta
}
