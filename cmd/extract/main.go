package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/mediatext-backend/internal/app"
	"github.com/yungbote/mediatext-backend/internal/extraction"
	"github.com/yungbote/mediatext-backend/internal/pkg/logger"
)

func main() {
	var (
		format      string
		asJSON      bool
		timeoutSecs int
		batchLimit  int
	)

	root := &cobra.Command{
		Use:   "extract [url...]",
		Short: "Extract text from media assets by URL",
		Long: `Downloads each asset, classifies it as document, image, audio or video,
and prints the extracted text. Extraction never fails outright: assets
that cannot be read produce bracketed placeholder text instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(os.Getenv("LOG_MODE"))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			cfg := app.LoadConfig(log)
			svc, closeClients := app.BuildExtractionService(log, cfg)
			defer closeClients()

			ctx := context.Background()
			if timeoutSecs > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
				defer cancel()
			}

			declared := extraction.ParseFormat(format)
			reqs := make([]extraction.Request, 0, len(args))
			for _, u := range args {
				reqs = append(reqs, extraction.Request{URL: u, Declared: declared})
			}
			results := svc.ExtractBatch(ctx, reqs, batchLimit)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for i, res := range results {
				if len(results) > 1 {
					fmt.Fprintf(cmd.OutOrStdout(), "==> %s\n", res.URL)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				if i != len(results)-1 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}
			return nil
		},
	}

	root.Flags().StringVarP(&format, "format", "f", "", "declared format hint: document, image, audio or video")
	root.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	root.Flags().IntVar(&timeoutSecs, "timeout", 0, "overall timeout in seconds (0 means none)")
	root.Flags().IntVar(&batchLimit, "concurrency", 4, "max assets processed in parallel")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
