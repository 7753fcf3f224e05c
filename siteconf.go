package main

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

const (
	engineGoTemplate = "gotmpl"
	engineNone       = "none"
)

type DirConf struct {
	Input    string `mapstructure:"input"`
	Includes string `mapstructure:"includes"`
	Data     string `mapstructure:"data"`
	Output   string `mapstructure:"output"`
}

// SiteMeta is only used for the feed.
type SiteMeta struct {
	Title     string `mapstructure:"title"`
	Author    string `mapstructure:"author"`
	AuthorUri string `mapstructure:"authorUri"`
	BaseUrl   string `mapstructure:"baseUrl"`
}

// SiteConf is the configuration record of one build. Includes and Data are
// relative to Input; Input and Output are absolute once read.
type SiteConf struct {
	Dir                    DirConf  `mapstructure:"dir"`
	PathPrefix             string   `mapstructure:"pathPrefix"`
	MarkdownTemplateEngine string   `mapstructure:"markdownTemplateEngine"`
	HtmlTemplateEngine     string   `mapstructure:"htmlTemplateEngine"`
	Site                   SiteMeta `mapstructure:"site"`

	baseDir string
}

func (c *SiteConf) includesDir() string { return filepath.Join(c.Dir.Input, c.Dir.Includes) }

func (c *SiteConf) dataDir() string { return filepath.Join(c.Dir.Input, c.Dir.Data) }

// projectPath resolves a path given relative to the project root, i.e. the
// directory holding the config file.
func (c *SiteConf) projectPath(p string) string {
	return normalizePath(filepath.FromSlash(p), c.baseDir)
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("journey")
	}
	v.SetEnvPrefix("JOURNEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConf layers the config file, the environment and bound flags over the
// defaults returned by configure.
func readConf(v *viper.Viper, defaults SiteConf) (*SiteConf, error) {
	v.SetDefault("dir.input", defaults.Dir.Input)
	v.SetDefault("dir.includes", defaults.Dir.Includes)
	v.SetDefault("dir.data", defaults.Dir.Data)
	v.SetDefault("dir.output", defaults.Dir.Output)
	v.SetDefault("pathPrefix", defaults.PathPrefix)
	v.SetDefault("markdownTemplateEngine", defaults.MarkdownTemplateEngine)
	v.SetDefault("htmlTemplateEngine", defaults.HtmlTemplateEngine)
	v.SetDefault("site.title", defaults.Site.Title)
	v.SetDefault("site.author", defaults.Site.Author)
	v.SetDefault("site.authorUri", defaults.Site.AuthorUri)
	v.SetDefault("site.baseUrl", defaults.Site.BaseUrl)

	baseDir := "."
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		klog.V(1).Info("No config file found, using defaults")
	} else {
		klog.Infof("Using config file %s", v.ConfigFileUsed())
		baseDir = filepath.Dir(v.ConfigFileUsed())
	}

	conf := SiteConf{}
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	conf.baseDir = absBase
	conf.PathPrefix = normalizePathPrefix(conf.PathPrefix)
	// The executable can be called from anywhere.
	conf.Dir.Input = normalizePath(conf.Dir.Input, absBase)
	conf.Dir.Output = normalizePath(conf.Dir.Output, absBase)

	return &conf, nil
}

func (c *SiteConf) validate() error {
	if c.Dir.Input == "" || c.Dir.Output == "" {
		return errors.New("dir.input and dir.output must be set")
	}
	for key, engine := range map[string]string{
		"markdownTemplateEngine": c.MarkdownTemplateEngine,
		"htmlTemplateEngine":     c.HtmlTemplateEngine,
	} {
		if engine != engineGoTemplate && engine != engineNone {
			return fmt.Errorf("unknown template engine %q for %s, want %q or %q", engine, key, engineGoTemplate, engineNone)
		}
	}
	return nil
}

func normalizePath(p, baseDir string) string {
	if !filepath.IsAbs(p) {
		absPath := filepath.Join(baseDir, p)
		klog.V(2).Infof("Normalizing %s to %s", p, absPath)
		return absPath
	}
	return p
}

// normalizePathPrefix returns the prefix with exactly one leading and one
// trailing slash. An empty prefix is the root.
func normalizePathPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "/"
	}
	cleaned := path.Clean("/" + prefix)
	if cleaned == "/" {
		return cleaned
	}
	return cleaned + "/"
}
