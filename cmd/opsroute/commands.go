package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"opsroute/internal/adapters/llm"
	"opsroute/internal/core/dates"
	"opsroute/internal/core/normalize"
	"opsroute/internal/core/version"
	"opsroute/internal/platform/config"
	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/logger"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/services/route/domain"
	"opsroute/internal/services/route/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type flags struct {
	output string
	today  string
	apiKey string
}

func newRootCmd(out io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "opsroute",
		Short:         "Route mine operations questions to sql, rag or optimize",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch f.output {
			case "text", "json", "yaml":
			default:
				return perr.WithField(perr.Validationf("output must be text, json or yaml"), "output")
			}
			if f.today != "" {
				if _, err := time.Parse(dates.ISO, f.today); err != nil {
					return perr.WithField(perr.Validationf("today must be YYYY-MM-DD"), "today")
				}
			}
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&f.output, "output", "o", "text", "text, json or yaml")
	root.PersistentFlags().StringVar(&f.today, "today", "", "pin the reference date (YYYY-MM-DD) for relative dates")

	routeCmd := &cobra.Command{
		Use:   "route [question]",
		Short: "Route a question; router misses go to the model when CORE_LLM_API_KEY or --llm-key is set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newService(f)
			res, err := svc.Route(cmd.Context(), input(f, args))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.output, res, func(w io.Writer) {
				fmt.Fprintf(w, "task:       %s\n", res.Task)
				fmt.Fprintf(w, "confidence: %.2f (raw %.2f)\n", res.Confidence, res.RawConfidence)
				fmt.Fprintf(w, "source:     %s\n", res.RouteSource)
				fmt.Fprintf(w, "intent:     %s\n", res.Intent)
				fmt.Fprintf(w, "reason:     %s\n", res.Reason)
				if res.SQL != "" {
					fmt.Fprintf(w, "sql:        %s\n", res.SQL)
				}
			})
		},
	}
	routeCmd.Flags().StringVar(&f.apiKey, "llm-key", "", "per-call llm api key")

	explainCmd := &cobra.Command{
		Use:   "explain [question]",
		Short: "Show candidates, parameters and the router trace; never calls the model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newService(f).Explain(cmd.Context(), input(f, args))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.output, res, func(w io.Writer) {
				fmt.Fprintf(w, "normalized: %s\n", res.Normalized)
				fmt.Fprintf(w, "params:     %s\n", res.Params.Summary())
				for i, c := range res.Candidates {
					if i == 5 {
						break
					}
					fmt.Fprintf(w, "  %-24s %.2f\n", c.Intent, c.Confidence)
				}
				if res.Decision != nil {
					fmt.Fprintf(w, "decision:   %s via %s (%.2f)\n", res.Decision.Task, res.Decision.Rule, res.Decision.Confidence)
				} else {
					fmt.Fprintln(w, "decision:   none, the model would decide")
				}
				if res.SQL != "" {
					fmt.Fprintf(w, "sql:        %s\n", res.SQL)
				}
			})
		},
	}

	intentsCmd := &cobra.Command{
		Use:   "intents",
		Short: "List the intent catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := newService(f).Intents(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), f.output, list, func(w io.Writer) {
				for _, in := range list {
					fmt.Fprintf(w, "%d  %-26s %s\n", in.Tier, in.Name, strings.Join(in.Keywords, ", "))
				}
			})
		},
	}

	dateCmd := &cobra.Command{
		Use:   "date [expression]",
		Short: "Parse a date expression into an ISO range",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pd, ok := parser(f).Parse(normalize.Question(strings.Join(args, " ")))
			if !ok {
				return perr.Newf(perr.ErrorCodeNotFound, "no date found in %q", strings.Join(args, " "))
			}
			return render(cmd.OutOrStdout(), f.output, pd, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s .. %s\n", pd.Kind, pd.StartDate, pd.EndDate)
			})
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build stamp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bi := version.Info("opsroute")
			return render(cmd.OutOrStdout(), f.output, bi, func(w io.Writer) { fmt.Fprintln(w, bi.String()) })
		},
	}

	root.AddCommand(routeCmd, explainCmd, intentsCmd, dateCmd, versionCmd)
	return root
}

func input(f *flags, args []string) domain.RouteInput {
	return domain.RouteInput{
		Question: strings.Join(args, " "),
		Settings: domain.Settings{LLMAPIKey: f.apiKey},
	}
}

func parser(f *flags) *dates.Parser {
	p := dates.New()
	if f.today != "" {
		t, _ := time.Parse(dates.ISO, f.today)
		p.Now = func() time.Time { return t }
	}
	return p
}

func newService(f *flags) *service.Svc {
	root := config.New()
	settings, retry := resilience.FromConfig(root)
	reg := resilience.NewRegistry(settings,
		resilience.WithRetry(retry),
		resilience.WithStateHook(func(name string, from, to resilience.State) {
			logger.Named("cli").Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("breaker state changed")
		}),
	)
	return service.New(nil, service.Config{},
		service.WithModels(llm.NewPool(llm.OptionsFromConfig(root))),
		service.WithBreakers(reg),
		service.WithDates(parser(f)),
	)
}

func render(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// go through json so the output keeps the api field names
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var tree any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(tree)
	default:
		text(w)
		return nil
	}
}
