package doctor

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Validate       func(domain.Config) error
	Rules          ports.KeywordMatcher
	Decoder        ports.Decoder
	NewLedger      ports.LedgerFactory
	Getenv         func(string) string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded (format %s)", cfg.ConfigFormatVersion)))

	if s.Validate != nil {
		if err := s.Validate(cfg); err != nil {
			checks = append(checks, fail("Config values", err.Error()))
		} else {
			checks = append(checks, ok("Config values", "valid"))
		}
	}

	if s.Rules != nil {
		keywords := s.Rules.Keywords()
		if len(keywords) == 0 {
			checks = append(checks, warn("Keyword rules", "no keywords configured"))
		} else {
			checks = append(checks, ok("Keyword rules", fmt.Sprintf("%d keywords: %s", len(keywords), strings.Join(keywords, ", "))))
		}
	} else {
		checks = append(checks, warn("Keyword rules", "blacklist not initialized"))
	}

	checks = append(checks, s.apiKeyCheck(cfg.Oracle))
	checks = append(checks, s.decoderCheck())
	checks = append(checks, s.ledgerCheck(cfg.History.Backend))
	checks = append(checks, frameSourceCheck(cfg.Live.Source))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) apiKeyCheck(oracle domain.OracleSettings) domain.HealthCheck {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	name := oracle.AuthEnvVar
	if name == "" {
		name = domain.DefaultOracleAuthEnvVar
	}
	if getenv(name) == "" {
		return warn("API key", name+" missing; URL lookups will report API errors")
	}
	return ok("API key", name+" set")
}

func (s *Service) decoderCheck() domain.HealthCheck {
	if s.Decoder == nil {
		return fail("QR decoder", "decoder not initialized")
	}
	blank := image.NewGray(image.Rect(0, 0, 32, 32))
	if _, err := s.Decoder.Decode(blank); err != nil {
		return fail("QR decoder", fmt.Sprintf("%s backend failed: %v", s.Decoder.Name(), err))
	}
	return ok("QR decoder", s.Decoder.Name()+" backend ready")
}

func (s *Service) ledgerCheck(backend string) domain.HealthCheck {
	if s.NewLedger == nil {
		return fail("History ledger", "ledger factory not initialized")
	}
	ledger, err := s.NewLedger()
	if err != nil {
		return fail("History ledger", fmt.Sprintf("%s backend failed: %v", backend, err))
	}
	defer ledger.Close()
	return ok("History ledger", backend+" backend ready")
}

func frameSourceCheck(source string) domain.HealthCheck {
	switch {
	case source == "":
		return warn("Live source", "not configured; pass --source to watch")
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return ok("Live source", "MJPEG stream "+source+" (not probed)")
	}
	if _, err := os.Stat(source); err != nil {
		return warn("Live source", err.Error())
	}
	return ok("Live source", source)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
