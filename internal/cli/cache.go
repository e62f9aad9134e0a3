package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/tickcal/internal/assetcache"
	"github.com/julianstephens/tickcal/internal/constants"
)

type CacheCmd struct {
	Warm   CacheWarmCmd   `cmd:"" help:"Pre-cache app assets for offline use."`
	Status CacheStatusCmd `cmd:"" help:"Show asset cache contents."`
	Clean  CacheCleanCmd  `cmd:"" help:"Remove all cached assets."`
}

func newWorker(ctx *Context, baseURL string) *assetcache.Worker {
	if baseURL == "" {
		baseURL = constants.AssetBaseURL
	}
	return assetcache.NewWorker(constants.AssetCacheVersion, ctx.AssetCacheDir(), baseURL)
}

type CacheWarmCmd struct {
	URL string `help:"Base URL to fetch assets from." default:""`
}

func (c *CacheWarmCmd) Run(ctx *Context) error {
	worker := newWorker(ctx, c.URL)

	if err := worker.Install(context.Background()); err != nil {
		return fmt.Errorf("cache warm failed: %w", err)
	}
	if err := worker.Activate(); err != nil {
		return fmt.Errorf("failed to evict stale caches: %w", err)
	}

	st, err := worker.Stat()
	if err != nil {
		return err
	}
	fmt.Printf("✓ Cached %d assets (%s)\n", st.StaticCount, st.Version)
	return nil
}

type CacheStatusCmd struct{}

func (c *CacheStatusCmd) Run(ctx *Context) error {
	worker := newWorker(ctx, "")

	st, err := worker.Stat()
	if err != nil {
		return err
	}

	if st.StaticCount == 0 && st.DynamicCount == 0 {
		fmt.Println("Asset cache is empty. Run 'tickcal cache warm' to populate it.")
		return nil
	}

	fmt.Printf("Asset cache (%s):\n", st.Version)
	fmt.Printf("  Pre-cached assets: %d\n", st.StaticCount)
	fmt.Printf("  Dynamic entries:   %d\n", st.DynamicCount)
	fmt.Printf("  Total size:        %.1f KB\n", float64(st.TotalSize)/1024.0)
	fmt.Printf("  Directory:         %s\n", ctx.AssetCacheDir())
	return nil
}

type CacheCleanCmd struct{}

func (c *CacheCleanCmd) Run(ctx *Context) error {
	worker := newWorker(ctx, "")
	if err := worker.Clean(); err != nil {
		return err
	}
	fmt.Println("✓ Asset cache removed")
	return nil
}
