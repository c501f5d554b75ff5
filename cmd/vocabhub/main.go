package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vocabhub/internal/bootstrap"
	"vocabhub/internal/platform/config"
	uiapp "vocabhub/internal/ui/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir    string
	configPath string
	backend    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "vocabhub",
		Short:         "Vocabulary study, assessment and saved words in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", defaultDataDir(), "directory holding config.yaml and the local database")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <data-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "override the configured backend: local|remote")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newStudyCmd(flags))
	root.AddCommand(newAssessCmd(flags))
	root.AddCommand(newSavedCmd(flags))
	root.AddCommand(newSayCmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newDeckCmd(flags))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "vocabhub")
	}
	return ".vocabhub"
}

func loadApp(ctx context.Context, flags *globalFlags, interactive bool) (*bootstrap.App, error) {
	cfg, err := config.New(flags.dataDir, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return bootstrap.New(ctx, cfg, bootstrap.Options{Interactive: interactive})
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	var filter, interaction string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the vocabhub terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer app.Close()
			study := app.StudyDefaults()
			if filter != "" {
				study.ModeFilter = filter
			}
			if interaction != "" {
				study.Interaction = interaction
			}
			return bootstrap.RunTUI(app, uiapp.Options{Study: study, Assessment: app.AssessmentDefaults()})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "study subset: new|review|mixed")
	cmd.Flags().StringVar(&interaction, "interaction", "", "study interaction: reveal|spelling")
	return cmd
}

func newStudyCmd(flags *globalFlags) *cobra.Command {
	var filter, interaction string
	var newLimit, reviewLimit int
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Study due and new words line by line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			app, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			input := app.StudyDefaults()
			if filter != "" {
				input.ModeFilter = filter
			}
			if interaction != "" {
				input.Interaction = interaction
			}
			if cmd.Flags().Changed("new") {
				input.NewItemLimit = newLimit
			}
			if cmd.Flags().Changed("review") {
				input.ReviewItemLimit = reviewLimit
			}
			host, err := app.SessionCLI.StartStudy(ctx, input)
			defer host.Unmount()
			if err != nil {
				return err
			}
			return runStudy(ctx, host, newConsole(cmd.InOrStdin(), cmd.OutOrStdout()))
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "study subset: new|review|mixed")
	cmd.Flags().StringVar(&interaction, "interaction", "", "reveal|spelling")
	cmd.Flags().IntVar(&newLimit, "new", 0, "maximum new words")
	cmd.Flags().IntVar(&reviewLimit, "review", 0, "maximum review words")
	return cmd
}

func newAssessCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Estimate your vocabulary size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			app, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			input := app.AssessmentDefaults()
			if cmd.Flags().Changed("limit") {
				input.Limit = limit
			}
			host, err := app.SessionCLI.StartAssessment(ctx, input)
			defer host.Unmount()
			if err != nil {
				return err
			}
			return runAssessment(ctx, host, newConsole(cmd.InOrStdin(), cmd.OutOrStdout()))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of words to test")
	return cmd
}

func newSavedCmd(flags *globalFlags) *cobra.Command {
	saved := &cobra.Command{Use: "saved", Short: "Saved words"}

	saved.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved words",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SavedCLI.List(ctx)
			if err != nil {
				return err
			}
			if len(out.ItemIDs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no saved words")
				return nil
			}
			labels := app.Labels(ctx, out.ItemIDs)
			for _, id := range out.ItemIDs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, labels[id])
			}
			return nil
		},
	})

	saved.AddCommand(&cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Save or unsave a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SavedCLI.Toggle(ctx, args[0])
			if err != nil {
				return err
			}
			state := "unsaved"
			if out.Saved {
				state = "saved"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", out.ItemID, state)
			return nil
		},
	})
	return saved
}

func newSayCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "say <word>",
		Short: "Pronounce a word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SayCLI.Say(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s via %s\n", out.Label, out.Source)
			return nil
		},
	}
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local backend over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			flags.backend = config.BackendLocal
			app, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			if addr != "" {
				app.Config.Server.Addr = addr
			}
			if token != "" {
				app.Config.Server.Token = token
			}
			return bootstrap.Serve(ctx, app)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token clients must send")
	return cmd
}

func newDeckCmd(flags *globalFlags) *cobra.Command {
	deck := &cobra.Command{Use: "deck", Short: "Word decks for the local backend"}
	deck.AddCommand(&cobra.Command{
		Use:   "import <path>",
		Short: "Import a YAML word deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SessionCLI.ImportDeck(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d words from %s\n", out.Imported, out.Path)
			return nil
		},
	})
	return deck
}
