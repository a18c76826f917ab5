package app

import (
	"context"
	"io"
	"time"

	"github.com/doeshing/qrshield/internal/application/classify"
	configapp "github.com/doeshing/qrshield/internal/application/config"
	"github.com/doeshing/qrshield/internal/application/doctor"
	"github.com/doeshing/qrshield/internal/application/live"
	"github.com/doeshing/qrshield/internal/application/scan"
	"github.com/doeshing/qrshield/internal/application/session"
	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/alert"
	"github.com/doeshing/qrshield/internal/infrastructure/config"
	"github.com/doeshing/qrshield/internal/infrastructure/decoder"
	"github.com/doeshing/qrshield/internal/infrastructure/export"
	"github.com/doeshing/qrshield/internal/infrastructure/frames"
	"github.com/doeshing/qrshield/internal/infrastructure/history"
	"github.com/doeshing/qrshield/internal/infrastructure/httpapi"
	"github.com/doeshing/qrshield/internal/infrastructure/oracle"
	"github.com/doeshing/qrshield/internal/infrastructure/security"
	"github.com/doeshing/qrshield/internal/pkg/logger"
	"github.com/doeshing/qrshield/internal/ports"
)

// Options controls container construction.
type Options struct {
	ConfigPath string
	Verbose    bool
	// AlertOutput receives console alerts; stderr when nil.
	AlertOutput io.Writer
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config        domain.Config
	ConfigLoader  *config.FileLoader
	Logger        ports.Logger
	Rules         *security.Blacklist
	Oracle        ports.ThreatOracle
	Classifier    *classify.Classifier
	Decoder       ports.Decoder
	NewLedger     ports.LedgerFactory
	ScanService   *scan.Service
	Exporter      ports.Exporter
	DoctorService *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(opts.Verbose)
	if err := configapp.Validate(cfg); err != nil {
		log.Warn("config validation failed", map[string]interface{}{"path": cfgLoader.Path(), "error": err.Error()})
	}

	rules, err := security.NewBlacklist(cfg.Classifier.RulesFile)
	if err != nil {
		log.Warn("keyword rules unreadable, using defaults", map[string]interface{}{"error": err.Error()})
		rules, err = security.DefaultBlacklist()
		if err != nil {
			return nil, err
		}
	}

	dec, err := decoder.New(cfg.Decoder.Backend, cfg.Decoder.TryHarder)
	if err != nil {
		return nil, err
	}
	ledgers, err := history.NewFactory(cfg.History.Backend)
	if err != nil {
		return nil, err
	}

	threatOracle := oracle.New(cfg.Oracle)
	if threatOracle.Name() != "safebrowsing" {
		log.Warn("no Safe Browsing API key; URL lookups will report API errors", map[string]interface{}{"env": cfg.Oracle.AuthEnvVar})
	}

	classifier := &classify.Classifier{
		Rules:   rules,
		Oracle:  threatOracle,
		URLGate: cfg.Classifier.URLGate,
		Logger:  log,
	}

	scanService := &scan.Service{
		Classifier: classifier,
		Decoder:    dec,
		LoadImage:  decoder.LoadImage,
		Alerter:    alert.NewConsole(opts.AlertOutput),
		Clock:      time.Now,
		Logger:     log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Validate:       configapp.Validate,
		Rules:          rules,
		Decoder:        dec,
		NewLedger:      ledgers,
	}

	return &Container{
		Config:        cfg,
		ConfigLoader:  cfgLoader,
		Logger:        log,
		Rules:         rules,
		Oracle:        threatOracle,
		Classifier:    classifier,
		Decoder:       dec,
		NewLedger:     ledgers,
		ScanService:   scanService,
		Exporter:      export.CSV{},
		DoctorService: doctorService,
	}, nil
}

// NewSession opens a session with a fresh ledger.
func (c *Container) NewSession() (*session.Session, error) {
	return session.Open(c.NewLedger, time.Now())
}

// HTTPServer builds the HTTP surface with its own session manager.
func (c *Container) HTTPServer() *httpapi.Server {
	return &httpapi.Server{
		Scanner:        c.ScanService,
		Sessions:       session.NewManager(c.NewLedger, c.Config.Server.SessionIdleTimeout(), c.Logger),
		Exporter:       c.Exporter,
		Layout:         c.Config.History.Layout,
		MaxUploadBytes: c.Config.Server.MaxUploadBytes(),
		Logger:         c.Logger,
	}
}

// LiveFeed builds an orchestrator for source. Empty values fall back to the config.
func (c *Container) LiveFeed(source string, frameTimeout time.Duration, viewer ports.FrameViewer) (*live.Orchestrator, error) {
	if source == "" {
		source = c.Config.Live.Source
	}
	if frameTimeout <= 0 {
		frameTimeout = c.Config.Live.FrameTimeout()
	}
	opener, err := frames.NewOpener(source)
	if err != nil {
		return nil, err
	}
	return &live.Orchestrator{
		Source:       opener,
		Scanner:      c.ScanService,
		Viewer:       viewer,
		FrameTimeout: frameTimeout,
		Logger:       c.Logger,
	}, nil
}
