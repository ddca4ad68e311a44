// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/DamiGo/StockAnalyzer/internal/analysis"
	"github.com/DamiGo/StockAnalyzer/internal/notify"
	"github.com/DamiGo/StockAnalyzer/internal/portfolio"
	"github.com/DamiGo/StockAnalyzer/internal/report"
	"github.com/DamiGo/StockAnalyzer/internal/scheduler"
	"github.com/DamiGo/StockAnalyzer/internal/strategyconfig"
	"github.com/DamiGo/StockAnalyzer/pkg/logger"
)

// DefaultReportTime is used when the strategy file does not set one
const DefaultReportTime = "18:30"

// ProxyRefresher rebuilds the outbound proxy pool
type ProxyRefresher interface {
	Refresh(ctx context.Context) error
}

// DailyReport is the end-of-day job: refresh proxies, mail the
// portfolio review, then mail the opportunity ranking.
type DailyReport struct {
	schedule string
	cfg      *strategyconfig.Config
	proxies  ProxyRefresher
	scanner  *analysis.Scanner
	reviewer *portfolio.Reviewer
	mailer   notify.Mailer
	log      *logger.Logger
}

// NewDailyReport builds the job from the strategy configuration.
// proxies may be nil when the proxy pool is disabled.
func NewDailyReport(
	cfg *strategyconfig.Config,
	proxies ProxyRefresher,
	scanner *analysis.Scanner,
	reviewer *portfolio.Reviewer,
	mailer notify.Mailer,
	log *logger.Logger,
) (*DailyReport, error) {
	at := cfg.Meta.ReportTimeLocal
	if at == "" {
		at = DefaultReportTime
	}
	spec, err := scheduler.DailySpec(at)
	if err != nil {
		return nil, fmt.Errorf("daily report schedule: %w", err)
	}

	return &DailyReport{
		schedule: spec,
		cfg:      cfg,
		proxies:  proxies,
		scanner:  scanner,
		reviewer: reviewer,
		mailer:   mailer,
		log:      log.WithField("job", "daily_report"),
	}, nil
}

func (j *DailyReport) Name() string { return "daily_report" }

func (j *DailyReport) Schedule() string { return j.schedule }

// Run executes the three phases. A proxy refresh failure only degrades
// to direct connections; review and scan failures fail the job.
func (j *DailyReport) Run(ctx context.Context) error {
	if j.proxies != nil {
		if err := j.proxies.Refresh(ctx); err != nil {
			j.log.WithError(err).Warn("Proxy refresh failed, continuing without proxies")
		}
	}

	if err := j.sendPortfolioReview(ctx); err != nil {
		return err
	}
	return j.sendOpportunityScan(ctx)
}

func (j *DailyReport) sendPortfolioReview(ctx context.Context) error {
	holdings := j.cfg.PortfolioHoldings()
	if len(holdings) == 0 {
		j.log.Debug("No holdings configured, skipping portfolio review")
		return nil
	}

	summary, err := j.reviewer.Review(ctx, holdings)
	if err != nil {
		return fmt.Errorf("portfolio review: %w", err)
	}

	html, err := report.RenderPortfolio(summary)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Suivi du portefeuille - %s", summary.GeneratedAt.Format("02/01/2006"))
	return j.send(ctx, subject, html)
}

func (j *DailyReport) sendOpportunityScan(ctx context.Context) error {
	opportunities := j.scanner.Scan(ctx, j.cfg.Universe.Tickers)
	j.log.WithFields(map[string]interface{}{
		"universe":      len(j.cfg.Universe.Tickers),
		"opportunities": len(opportunities),
	}).Info("Market scan finished")

	now := time.Now()
	html, err := report.RenderOpportunities(opportunities, now)
	if err != nil {
		return err
	}

	subject := j.cfg.Email.Subject
	if subject == "" {
		subject = fmt.Sprintf("Analyse des actions européennes - %s", now.Format("02/01/2006"))
	}
	return j.send(ctx, subject, html)
}

func (j *DailyReport) send(ctx context.Context, subject, html string) error {
	if !j.cfg.Email.Enabled {
		j.log.WithField("subject", subject).Info("Email disabled, report not sent")
		return nil
	}
	return j.mailer.Send(ctx, notify.Message{
		From:     j.cfg.Email.From,
		To:       j.cfg.Email.Recipients,
		Subject:  subject,
		HTMLBody: html,
	})
}
