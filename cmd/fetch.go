package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// fetchTimeout bounds each download.
const fetchTimeout = 60 * time.Second

// Fetch implements the "fetch" subcommand: download the current and past
// datasets from their configured URLs into the data directory.
func Fetch(args []string) {
	s := newSession()

	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	dir := fs.String("dir", s.cfg.DataDir, "output directory for downloaded files")
	url := fs.String("url", s.cfg.DataURL, "URL of the current dataset")
	pastURL := fs.String("past-url", s.cfg.PastDataURL, "URL of the past-year dataset")
	force := fs.Bool("force", false, "overwrite files that already exist")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: epimap fetch [-dir path] [-url URL] [-past-url URL] [-force]\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	targets := []struct {
		url, name string
	}{
		{*url, filepath.Base(s.cfg.DataFile)},
		{*pastURL, filepath.Base(s.cfg.PastDataFile)},
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var downloaded, skipped, failed int
	for _, t := range targets {
		if t.url == "" {
			fmt.Fprintf(os.Stderr, "skip %s (no URL configured)\n", t.name)
			skipped++
			continue
		}
		outPath := filepath.Join(*dir, t.name)
		if _, err := os.Stat(outPath); err == nil && !*force {
			fmt.Fprintf(os.Stderr, "skip %s (already exists)\n", t.name)
			skipped++
			continue
		}

		fmt.Fprintf(os.Stderr, "downloading %s -> %s\n", t.url, outPath)
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		err := downloadFile(ctx, http.DefaultClient, t.url, outPath)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error downloading %s: %v\n", t.url, err)
			s.logger.Error("download failed", "url", t.url, "error", err)
			failed++
			continue
		}
		downloaded++
	}

	fmt.Fprintf(os.Stderr, "Done: %d downloaded, %d skipped, %d failed\n", downloaded, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// downloadFile writes the body of url to dest. A partial download never
// replaces an existing file.
func downloadFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	return nil
}
