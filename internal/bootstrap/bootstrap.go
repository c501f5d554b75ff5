package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	membershipinadapter "vocabhub/internal/modules/membership/adapter/in"
	membershipoutadapter "vocabhub/internal/modules/membership/adapter/out"
	membershipin "vocabhub/internal/modules/membership/port/in"
	membershipout "vocabhub/internal/modules/membership/port/out"
	membershipservice "vocabhub/internal/modules/membership/service"
	membershipusecase "vocabhub/internal/modules/membership/usecase"
	pronunciationinadapter "vocabhub/internal/modules/pronunciation/adapter/in"
	pronunciationoutadapter "vocabhub/internal/modules/pronunciation/adapter/out"
	pronunciationin "vocabhub/internal/modules/pronunciation/port/in"
	pronunciationservice "vocabhub/internal/modules/pronunciation/service"
	pronunciationusecase "vocabhub/internal/modules/pronunciation/usecase"
	sessioninadapter "vocabhub/internal/modules/session/adapter/in"
	sessionoutadapter "vocabhub/internal/modules/session/adapter/out"
	sessiondto "vocabhub/internal/modules/session/dto"
	sessionin "vocabhub/internal/modules/session/port/in"
	sessionout "vocabhub/internal/modules/session/port/out"
	sessionusecase "vocabhub/internal/modules/session/usecase"
	"vocabhub/internal/platform/clock"
	"vocabhub/internal/platform/config"
	"vocabhub/internal/platform/httpx"
	"vocabhub/internal/platform/id"
	"vocabhub/internal/platform/identity"
	"vocabhub/internal/platform/logging"
	"vocabhub/internal/platform/sqlitedb"
	"vocabhub/internal/server"
	uiapp "vocabhub/internal/ui/app"
	savedview "vocabhub/internal/ui/views/saved"
)

// localToken is the credential the local backend hands every host; the
// local gateways do not check it.
const localToken = "local"

type App struct {
	Config config.Config
	Logger *zap.Logger

	SessionCLI sessioninadapter.CLIHandler
	SavedCLI   membershipinadapter.CLIHandler
	SayCLI     pronunciationinadapter.CLIHandler

	hosts         sessionin.Hosts
	membership    membershipin.Usecase
	pronunciation pronunciationin.Usecase

	db         *sql.DB
	store      *sessionoutadapter.SQLiteStore
	study      sessionout.StudyGateway
	assessment sessionout.AssessmentGateway
	saved      membershipout.Gateway
}

type Options struct {
	// Interactive routes logs away from the terminal.
	Interactive bool
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Quiet: opts.Interactive})
	if err != nil {
		return nil, err
	}
	clk := clock.SystemClock{}
	app := &App{Config: cfg, Logger: logger}

	var ident *identity.Static
	var decks sessionout.DeckStore
	switch cfg.Backend {
	case config.BackendLocal:
		ident = identity.NewStatic(localToken)
		db, err := sqlitedb.Open(cfg.DBPath())
		if err != nil {
			return nil, err
		}
		app.db = db
		store, err := sessionoutadapter.NewSQLiteStore(ctx, db, clk, id.UUID{})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("new session store: %w", err)
		}
		savedStore, err := membershipoutadapter.NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("new saved store: %w", err)
		}
		app.store = store
		decks = store
		app.study = sessionoutadapter.NewLocalStudyGateway(store)
		app.assessment = sessionoutadapter.NewLocalAssessmentGateway(store)
		app.saved = savedStore

	case config.BackendRemote:
		ident, err = remoteIdentity(cfg.Auth)
		if err != nil {
			return nil, err
		}
		client := httpx.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout, ident)
		app.study = sessionoutadapter.NewHTTPStudyGateway(client)
		app.assessment = sessionoutadapter.NewHTTPAssessmentGateway(client)
		app.saved = membershipoutadapter.NewHTTPGateway(client)
	}

	app.membership = membershipusecase.NewInteractor(membershipservice.NewCache(app.saved, ident, logger))

	public := httpx.NewClient("", cfg.Gateway.Timeout, nil)
	newPronunciation := func() pronunciationin.Usecase {
		return pronunciationusecase.NewInteractor(pronunciationservice.NewResolver(
			pronunciationoutadapter.NewDictionaryLookup(cfg.Pronunciation.LookupURL, public),
			pronunciationoutadapter.NewExecPlayer(public),
			pronunciationoutadapter.NewExecSynth(),
			pronunciationservice.Options{
				Accent: cfg.Pronunciation.Accent,
				Locale: cfg.Pronunciation.Locale,
				Rate:   cfg.Pronunciation.Rate,
			},
			logger,
		))
	}
	// The say command and the saved tab share this one; each host builds
	// its own below.
	app.pronunciation = newPronunciation()

	app.hosts = sessionusecase.HostFactory{
		Study:      app.study,
		Assessment: app.assessment,
		Deps: sessionusecase.Deps{
			Identity:      ident,
			Membership:    app.membership,
			Pronunciation: app.pronunciation,
			Clock:         clk,
			Logger:        logger,
		},
		Options: sessionusecase.StudyOptions{
			CorrectDelay:   cfg.Study.CorrectDelay,
			IncorrectDelay: cfg.Study.IncorrectDelay,
		},
		NewPronunciation: newPronunciation,
	}

	deckUC := sessionusecase.NewDeckInteractor(sessionoutadapter.NewYAMLDeckSource(), decks, logger)

	app.SessionCLI = sessioninadapter.NewCLIHandler(app.hosts, deckUC)
	app.SavedCLI = membershipinadapter.NewCLIHandler(app.membership)
	app.SayCLI = pronunciationinadapter.NewCLIHandler(app.pronunciation)

	logger.Debug("bootstrapped", zap.String("backend", cfg.Backend), zap.String("data_dir", cfg.DataDir))
	return app, nil
}

func remoteIdentity(auth config.AuthConfig) (*identity.Static, error) {
	if auth.Token != "" {
		return identity.NewStatic(auth.Token), nil
	}
	if auth.TokenFile != "" {
		ident, err := identity.FromFile(auth.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("read token file: %w", err)
		}
		return ident, nil
	}
	return identity.NewStatic(""), nil
}

func (a *App) Close() error {
	// Sync fails on some terminals when logging to stderr.
	_ = a.Logger.Sync()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// StudyDefaults are the configured study start parameters.
func (a *App) StudyDefaults() sessiondto.StudyStartInput {
	return sessiondto.StudyStartInput{
		ModeFilter:      a.Config.Study.ModeFilter,
		Interaction:     a.Config.Study.Interaction,
		NewItemLimit:    a.Config.Study.NewItemLimit,
		ReviewItemLimit: a.Config.Study.ReviewItemLimit,
	}
}

func (a *App) AssessmentDefaults() sessiondto.AssessmentStartInput {
	return sessiondto.AssessmentStartInput{Limit: a.Config.Assessment.ItemLimit}
}

func RunTUI(a *App, opts uiapp.Options) error {
	var labels savedview.Labeler
	if a.store != nil {
		labels = a.store
	}
	model := uiapp.NewModel(a.hosts, a.membership, a.pronunciation, labels, opts)
	defer model.Close()
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Serve exposes the local backend over HTTP until ctx is cancelled.
func Serve(ctx context.Context, a *App) error {
	if a.store == nil {
		return errors.New("serve needs the local backend")
	}
	if a.Config.Server.Token == "" {
		return errors.New("server.token (or VOCABHUB_SERVER_TOKEN) is required to serve")
	}
	if counts, err := a.store.SessionCounts(ctx); err == nil {
		a.Logger.Info("local sessions", zap.Any("counts", counts))
	}
	srv := server.New(a.Config.Server.Addr, a.Config.Server.Token, server.Gateways{
		Study:      a.study,
		Assessment: a.assessment,
		Saved:      a.saved,
	}, a.Logger)
	return srv.Run(ctx)
}

// Labels names saved word ids when the local store can; otherwise it
// returns nil.
func (a *App) Labels(ctx context.Context, ids []string) map[string]string {
	if a.store == nil {
		return nil
	}
	labels, err := a.store.Labels(ctx, ids)
	if err != nil {
		a.Logger.Warn("resolve labels", zap.Error(err))
		return nil
	}
	return labels
}
