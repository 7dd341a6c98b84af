package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	_ "golang.org/x/image/webp"

	"github.com/lixenwraith/barrace/config"
)

const maxLogoBytes = 2 << 20

// logoFetcher downloads team logos off the owner loop and hands decoded images back to it
type logoFetcher struct {
	client  *retryablehttp.Client
	post    func(func()) error
	deliver func(team string, img image.Image)
}

func newLogoFetcher(cfg config.Logos, post func(func()) error, deliver func(string, image.Image)) *logoFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.HTTPClient.Timeout = cfg.Timeout.Duration
	client.Logger = log.Default()
	return &logoFetcher{client: client, post: post, deliver: deliver}
}

// fetchAll loads every logo in the background; failures only cost the badge
func (f *logoFetcher) fetchAll(ctx context.Context, logos map[string]string) {
	if len(logos) == 0 {
		return
	}
	go func() {
		for team, ref := range logos {
			if ctx.Err() != nil {
				return
			}
			img, err := f.fetch(ctx, ref)
			if err != nil {
				log.Printf("logos: %s: %v", team, err)
				continue
			}
			if err := f.post(func() { f.deliver(team, img) }); err != nil {
				return
			}
		}
	}()
}

// fetch resolves an http(s) URL or a local file path
func (f *logoFetcher) fetch(ctx context.Context, ref string) (image.Image, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		file, err := os.Open(ref)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return decodeLogo(file)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return decodeLogo(resp.Body)
}

func decodeLogo(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(io.LimitReader(r, maxLogoBytes))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}
