package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/radovskyb/watcher"
	"k8s.io/klog/v2"
)

// siteHandler serves dir under prefix, the way the site is deployed.
func siteHandler(dir, prefix string) http.Handler {
	mux := http.NewServeMux()
	files := http.FileServer(http.Dir(dir))
	if prefix == "/" {
		mux.Handle("/", files)
		return mux
	}
	mux.Handle(prefix, http.StripPrefix(strings.TrimSuffix(prefix, "/"), files))
	mux.Handle("/", http.RedirectHandler(prefix, http.StatusFound))
	return mux
}

func serveSite(ctx context.Context, dir, prefix string, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: siteHandler(dir, prefix),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	klog.Infof("Serving %s on http://%s%s", dir, srv.Addr, prefix)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// rerenderOnChange blocks, rebuilding the site whenever something under the
// input directory changes, until ctx is done.
func rerenderOnChange(ctx context.Context, conf *SiteConf, bc *buildConfig, drafts bool) error {
	klog.Infof("Watching %s for changes...", conf.Dir.Input)

	w := watcher.New()
	w.SetMaxEvents(1)
	if err := w.AddRecursive(conf.Dir.Input); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event := <-w.Event:
				klog.V(1).Infof("Change detected: %v", event)
				if err := renderSite(ctx, conf, bc, drafts); err != nil {
					klog.Error(err)
				}
			case err := <-w.Error:
				klog.Error(err)
			case <-ctx.Done():
				w.Close()
				return
			case <-w.Closed:
				return
			}
		}
	}()

	return w.Start(time.Millisecond * 200)
}
