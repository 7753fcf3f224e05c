package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

type cmdFlags struct {
	configFile string
	pathPrefix string
	drafts     bool
	watch      bool
	port       int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &cmdFlags{}
	root := &cobra.Command{
		Use:          "journey",
		Short:        "Build the Journey static site",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "Config file (default is ./journey.yaml)")
	root.PersistentFlags().StringVar(&flags.pathPrefix, "path-prefix", "", "URL path prefix for deployment under a subpath")
	root.PersistentFlags().BoolVar(&flags.drafts, "drafts", false, "Include items with the 'draft' flag.")

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	build := &cobra.Command{
		Use:   "build",
		Short: "Write the site to the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, bc, err := loadConf(cmd, flags)
			if err != nil {
				return err
			}
			if err := renderSite(cmd.Context(), conf, bc, flags.drafts); err != nil {
				return err
			}
			if flags.watch {
				return rerenderOnChange(cmd.Context(), conf, bc, flags.drafts)
			}
			return nil
		},
	}
	build.Flags().BoolVar(&flags.watch, "watch", false, "Keep running and re-render the site on changes to the input directory.")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Build, watch and serve the site on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, bc, err := loadConf(cmd, flags)
			if err != nil {
				return err
			}
			if err := renderSite(cmd.Context(), conf, bc, flags.drafts); err != nil {
				return err
			}
			go func() {
				if err := rerenderOnChange(cmd.Context(), conf, bc, flags.drafts); err != nil {
					klog.Error(err)
				}
			}()
			return serveSite(cmd.Context(), conf.Dir.Output, conf.PathPrefix, flags.port)
		},
	}
	serve.Flags().IntVar(&flags.port, "port", 9999, "Port of the localhost server")

	root.AddCommand(build, serve)
	return root
}

// loadConf runs configure and layers the config file, JOURNEY_* environment
// variables and --path-prefix over its defaults.
func loadConf(cmd *cobra.Command, flags *cmdFlags) (*SiteConf, *buildConfig, error) {
	bc := newBuildConfig()
	defaults := configure(bc)

	v := newViper(flags.configFile)
	if err := v.BindPFlag("pathPrefix", cmd.Flags().Lookup("path-prefix")); err != nil {
		return nil, nil, err
	}
	conf, err := readConf(v, defaults)
	if err != nil {
		return nil, nil, err
	}
	return conf, bc, nil
}

func renderSite(ctx context.Context, conf *SiteConf, bc *buildConfig, drafts bool) error {
	site, err := ReadSite(conf, bc, drafts)
	if err != nil {
		return err
	}

	klog.Infof("Writing site to %s", conf.Dir.Output)
	if err = site.RenderAll(ctx); err != nil {
		return err
	}
	return site.CopyPassthrough()
}
