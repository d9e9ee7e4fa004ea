// Package runner executes one count → history → chart pass.
package runner

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"RuleBadge/internal/badge"
	"RuleBadge/internal/chart"
	"RuleBadge/internal/config"
	"RuleBadge/internal/counter"
	"RuleBadge/internal/history"
	"RuleBadge/internal/model"
	"RuleBadge/internal/notifier"
	"RuleBadge/internal/output"
	"RuleBadge/internal/recorder"
)

// Notifier announces count changes.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries uint64) error
}

// Runner holds everything a pass needs. Only the rules document and the
// badge/history writes can fail a run; history loading, the chart, the
// recorder and the notifier degrade to log lines.
type Runner struct {
	Config   *config.Config
	Store    *history.Store
	Renderer *chart.Renderer
	Lists    *counter.ListCounter
	Recorder recorder.Recorder
	Notifier Notifier // nil disables notifications
	Now      func() time.Time

	policy history.DedupPolicy
	loc    *time.Location
}

// New wires a Runner from a validated config.
func New(cfg *config.Config, rec recorder.Recorder, n Notifier) (*Runner, error) {
	policy, err := history.ParseDedupPolicy(cfg.History.Dedup)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{
		Config:   cfg,
		Store:    history.NewStore(cfg.History.Timeout, cfg.Proxy, *cfg.History.Retries, loc),
		Renderer: chart.NewRenderer(cfg.ChartOptions()),
		Lists:    counter.NewListCounter(cfg.History.Timeout, cfg.Proxy),
		Recorder: rec,
		Notifier: n,
		Now:      time.Now,
		policy:   policy,
		loc:      loc,
	}, nil
}

// Run performs one pass over the rules document at rulesPath.
func (r *Runner) Run(ctx context.Context, rulesPath string) (*model.RunResult, error) {
	cfg := r.Config

	count, err := counter.CountFile(rulesPath)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] %s: %d rules", rulesPath, count)

	if err := output.EnsureDir(cfg.OutputDir); err != nil {
		return nil, err
	}
	if err := badge.Write(filepath.Join(cfg.OutputDir, cfg.Badge.File), badge.New(cfg.Badge.Label, count, cfg.Badge.Color)); err != nil {
		return nil, fmt.Errorf("write badge: %w", err)
	}

	res := &model.RunResult{RunAt: r.Now().In(r.loc), Count: count}

	if len(cfg.Lists) > 0 {
		res.ListCounts = r.Lists.CountAll(ctx, cfg.Lists)
		for name, n := range res.ListCounts {
			if err := badge.Write(filepath.Join(cfg.OutputDir, name+".json"), badge.New(name, n, cfg.Badge.Color)); err != nil {
				return nil, fmt.Errorf("write %s badge: %w", name, err)
			}
		}
	}

	series := r.Store.Load(ctx, cfg.HistoryLocation())
	if last, ok := series.Last(); ok {
		res.Previous = &last
	}
	series, res.Appended = history.MergeWithPolicy(series, count, res.RunAt, r.policy)
	res.HistoryLen = len(series)
	if !res.Appended {
		log.Printf("[INFO] count unchanged at %d, history not extended", count)
	}

	data, err := history.Encode(series)
	if err != nil {
		return nil, err
	}
	if err := output.WriteFileAtomic(cfg.HistoryPath(), data); err != nil {
		return nil, fmt.Errorf("write history: %w", err)
	}

	rendered, err := r.Renderer.RenderFile(series, filepath.Join(cfg.OutputDir, cfg.Chart.File))
	if err != nil {
		log.Printf("[WARN] %v", err)
	}
	res.ChartRendered = rendered

	if err := r.Recorder.RecordRun(res); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
	r.notify(ctx, res)

	log.Printf("[INFO] run complete: count=%d appended=%v history=%d chart=%v",
		res.Count, res.Appended, res.HistoryLen, res.ChartRendered)
	return res, nil
}

func (r *Runner) notify(ctx context.Context, res *model.RunResult) {
	if r.Notifier == nil || !res.Changed() {
		return
	}
	msg := notifier.FormatChange(r.Config.Badge.Label, res, "2006-01-02 15:04")
	if err := r.Notifier.SendWithRetry(ctx, msg, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
