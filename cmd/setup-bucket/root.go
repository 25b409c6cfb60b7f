package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rajcreationz/livesite/internal/infrastructure/storage"
)

const (
	placeholderKey = "YOUR_SERVICE_ROLE_KEY_HERE"
	bucketName     = "images"
	sizeLimit      = 52428800 // 50 MB
)

var errMissingKey = errors.New("SUPABASE_SERVICE_KEY is not set.\n" +
	"   Get your service_role key from: Supabase Dashboard → Settings → API")

// bucketAdmin is the part of the storage client this command needs.
type bucketAdmin interface {
	ListBuckets(ctx context.Context) ([]storage.BucketInfo, error)
	CreateBucket(ctx context.Context, public bool, sizeLimit int64) error
	Name() string
}

func newRootCommand(out io.Writer) *cobra.Command {
	var url, serviceKey string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:           "setup-bucket",
		Short:         "Create the public images storage bucket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = os.Getenv("SUPABASE_URL")
			}
			if serviceKey == "" {
				serviceKey = os.Getenv("SUPABASE_SERVICE_KEY")
			}
			if url == "" {
				return errors.New("SUPABASE_URL is not set. Pass --url or export SUPABASE_URL")
			}
			if serviceKey == "" || serviceKey == placeholderKey {
				return errMissingKey
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return setupBucket(ctx, storage.NewSupabaseBucket(url, serviceKey, bucketName), cmd.OutOrStdout())
		},
	}
	cmd.SetOut(out)

	cmd.Flags().StringVar(&url, "url", "", "Supabase project URL (default $SUPABASE_URL)")
	cmd.Flags().StringVar(&serviceKey, "service-key", "", "Supabase service_role key (default $SUPABASE_SERVICE_KEY)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall request timeout")

	return cmd
}

// setupBucket creates the bucket unless it already exists. An existing
// private bucket is reported with the steps to make it public.
func setupBucket(ctx context.Context, admin bucketAdmin, out io.Writer) error {
	fmt.Fprintln(out, "Setting up Supabase Storage bucket...")

	buckets, err := admin.ListBuckets(ctx)
	if err != nil {
		return checkList(err)
	}

	for _, b := range buckets {
		if b.Name != admin.Name() {
			continue
		}
		fmt.Fprintf(out, "Bucket %q already exists.\n", b.Name)
		fmt.Fprintln(out, renderBucket(b))
		if !b.Public {
			fmt.Fprintln(out, "\nWARNING: Bucket exists but is not public!")
			fmt.Fprintln(out, "   To make it public:")
			fmt.Fprintln(out, "   1. Go to Supabase Dashboard → Storage")
			fmt.Fprintf(out, "   2. Click on %q bucket\n", b.Name)
			fmt.Fprintln(out, "   3. Click \"Settings\" tab")
			fmt.Fprintln(out, "   4. Toggle \"Public bucket\" to ON")
			fmt.Fprintln(out, "   5. Click \"Save\"")
		}
		return nil
	}

	fmt.Fprintf(out, "Creating %q bucket...\n", admin.Name())
	if err := admin.CreateBucket(ctx, true, sizeLimit); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			fmt.Fprintln(out, "The bucket already exists. This is fine!")
			return nil
		}
		return checkList(err)
	}

	limit := int64(sizeLimit)
	fmt.Fprintf(out, "Successfully created %q bucket!\n", admin.Name())
	fmt.Fprintln(out, renderBucket(storage.BucketInfo{Name: admin.Name(), Public: true, FileSizeLimit: &limit}))
	fmt.Fprintln(out, "Setup complete! Your storage bucket is ready to use.")
	return nil
}

func checkList(err error) error {
	return fmt.Errorf("%w\n\n   Please check:\n"+
		"   1. Your SUPABASE_URL is correct\n"+
		"   2. Your SUPABASE_SERVICE_KEY is correct (service_role key, not anon key)\n"+
		"   3. You have permission to create buckets", err)
}

func renderBucket(b storage.BucketInfo) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Bucket", "Public", "File size limit", "Allowed MIME types"})

	public := "No"
	if b.Public {
		public = "Yes"
	}
	limit := "none"
	if b.FileSizeLimit != nil && *b.FileSizeLimit > 0 {
		limit = fmt.Sprintf("%d MB", *b.FileSizeLimit/(1024*1024))
	}
	tw.AppendRow(table.Row{b.Name, public, limit, "Any"})
	return tw.Render()
}
