package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
	"github.com/haukened/tubefilter/internal/filter/gateways/classifier"
	"github.com/haukened/tubefilter/internal/filter/gateways/htmldoc"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
	"github.com/haukened/tubefilter/internal/filter/repos/verdictcache"
	"github.com/haukened/tubefilter/internal/filter/services/relevance"
	"github.com/haukened/tubefilter/internal/filter/services/scanner"
)

var errClassifierDisabled = errors.New("classifier disabled")

// offlineBackend leaves show mode with direct title matches only.
type offlineBackend struct{}

func (offlineBackend) Classify(context.Context, relevance.Request) (domain.RelevanceVerdict, error) {
	return domain.RelevanceVerdict{}, errClassifierDisabled
}

type filterFlags struct {
	pageURL string
	output  string
	rules   string
	offline bool
}

func newFilterCommand(ctx *commandContext) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "filter <page.html>",
		Short: "Run one scan pass over a saved page and write the filtered HTML",
		Long: "Filter parses a saved page, applies the stored settings (or a rule file given with --rules) " +
			"exactly as the daemon would on the live page, and writes the result.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := filterSettings(cmd, ctx, flags.rules)
			if err != nil {
				return err
			}
			backend, cacheSize, err := filterBackend(ctx, flags.offline)
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			out := cmd.OutOrStdout()
			if flags.output != "" {
				f, err := os.Create(flags.output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			res, err := filterPage(commandContextOf(cmd), in, out, flags.pageURL, s, backend, cacheSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Located %d, decided %d, suppressed %d, classified %d\n",
				res.Located, res.Decided, res.Suppressed, res.Dispatched)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.pageURL, "url", "https://www.youtube.com/", "URL the page was saved from; selects the page type")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the filtered page to file instead of stdout")
	cmd.Flags().StringVar(&flags.rules, "rules", "", "Rule file or directory to use instead of the settings database")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "Do not call the semantic classifier")
	return cmd
}

func filterSettings(cmd *cobra.Command, ctx *commandContext, rules string) (domain.Settings, error) {
	if rules != "" {
		doc, err := loadRuleDocument(rules)
		if err != nil {
			return domain.Settings{}, err
		}
		return settingsFromDocument(doc)
	}
	var s domain.Settings
	err := ctx.withRepository(func(repo *settings.Repository) error {
		var err error
		s, err = repo.Load(commandContextOf(cmd))
		return err
	})
	return s, err
}

// settingsFromDocument overlays a rule document onto the defaults.
func settingsFromDocument(doc settings.Document) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if doc.BlockedKeywords != nil {
		s.BlockedKeywords = doc.BlockedKeywords
	}
	if doc.BlockedCreators != nil {
		s.BlockedCreators = doc.BlockedCreators
	}
	if doc.InterestKeywords != nil {
		s.InterestKeywords = doc.InterestKeywords
	}
	if doc.FilterMode != "" {
		mode, err := domain.ParseFilterMode(doc.FilterMode)
		if err != nil {
			return domain.Settings{}, err
		}
		s.Mode = mode
	}
	if doc.Enabled != nil {
		s.Enabled = *doc.Enabled
	}
	if doc.Options != nil {
		s.Options = doc.Options.Merge(s.Options)
	}
	return s, nil
}

func filterBackend(ctx *commandContext, offline bool) (relevance.Backend, int, error) {
	if offline {
		return offlineBackend{}, 0, nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, 0, err
	}
	backends := []relevance.Backend{classifier.NewZeroShot(classifier.Config{
		URL:     cfg.ClassifierURL,
		Token:   cfg.ClassifierToken,
		Timeout: cfg.ClassifierTimeout,
	})}
	if cfg.ClassifierFallbackURL != "" {
		backends = append(backends, classifier.NewCompletion(classifier.Config{
			URL:     cfg.ClassifierFallbackURL,
			Token:   cfg.ClassifierToken,
			Timeout: cfg.ClassifierTimeout,
		}))
	}
	return classifier.NewChain(backends...), cfg.CacheSize, nil
}

// filterPage runs a single pass and waits for every show-mode verdict before rendering.
func filterPage(ctx context.Context, in io.Reader, out io.Writer, pageURL string, s domain.Settings, backend relevance.Backend, cacheSize int) (scanner.Result, error) {
	doc, err := htmldoc.Parse(in, pageURL)
	if err != nil {
		return scanner.Result{}, err
	}
	cache, err := verdictcache.New(cacheSize)
	if err != nil {
		return scanner.Result{}, err
	}
	sc := scanner.NewPipeline(doc, backend, cache, scanner.Options{
		Logger: log.GetLogger(),
		Chrome: doc,
		// markers stay in the output
		MarkerReset: time.Hour,
	}).Scanner

	res, err := sc.Scan(ctx, scanner.Pass{Page: domain.PageTypeFromURL(pageURL), Settings: s, Generation: 1})
	if err != nil {
		return res, err
	}
	sc.Wait()
	return res, doc.Render(out)
}
