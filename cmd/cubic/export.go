package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cubic-dev/ui/internal/config"
	"github.com/cubic-dev/ui/pkg/endpoint"
	"github.com/cubic-dev/ui/pkg/manifest"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "export <destination>",
		Short: "Write the endpoint table to a manifest",
		Long: `Discover endpoints and write them as a manifest.

The destination is a local path (format chosen by extension: .json,
.yaml, .yml) or an S3 URL of the form s3://bucket/key.

Examples:
  cubic export build/endpoints.json
  cubic export build/endpoints.yaml
  cubic export s3://my-bucket/site/endpoints.json --region=eu-west-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eps, err := discover(cmd.Context(), flags)
			if err != nil {
				return err
			}

			dest, err := openDestination(cmd, flags, args[0], region)
			if err != nil {
				return err
			}
			if err := dest.Save(cmd.Context(), eps); err != nil {
				return err
			}

			success(cmd, "Exported %d endpoints", len(eps))
			info(cmd, "to %s", dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "AWS region for s3:// destinations (default from cubic.json)")

	return cmd
}

// saver is a manifest destination.
type saver interface {
	Save(ctx context.Context, eps []endpoint.Endpoint) error
	fmt.Stringer
}

func openDestination(cmd *cobra.Command, flags *globalFlags, dest, region string) (saver, error) {
	bucket, key, ok, err := parseS3URL(dest)
	if err != nil {
		return nil, err
	}
	if !ok {
		return manifest.NewFileStore(dest), nil
	}

	if region == "" {
		if cfg, err := config.LoadOrDefault(flags.dir); err == nil {
			region = cfg.Manifest.Region
		}
	}
	return manifest.NewS3Store(cmd.Context(), bucket, key, region)
}

// parseS3URL splits s3://bucket/key. ok is false for non-S3 destinations.
func parseS3URL(dest string) (bucket, key string, ok bool, err error) {
	rest, found := strings.CutPrefix(dest, "s3://")
	if !found {
		return "", "", false, nil
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false, fmt.Errorf("invalid S3 destination %q: want s3://bucket/key", dest)
	}
	return bucket, key, true, nil
}
