package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ─────────────────────────────────────────────────────────────
// Autosave — periodic drafts of the editing session
// ─────────────────────────────────────────────────────────────

// Autosave snapshots the session to its draft key on a cron schedule.
type Autosave struct {
	editor *EditorService
	log    logrus.FieldLogger
	sched  *cron.Cron
}

// StartAutosave schedules drafts using a robfig/cron spec such as
// "@every 30s". An empty spec disables autosave and returns nil.
func StartAutosave(ctx context.Context, editor *EditorService, spec string, log logrus.FieldLogger) (*Autosave, error) {
	if spec == "" {
		return nil, nil
	}
	a := &Autosave{editor: editor, log: log.WithField("component", "autosave"), sched: cron.New()}
	if _, err := a.sched.AddFunc(spec, func() { a.Run(ctx) }); err != nil {
		return nil, fmt.Errorf("autosave schedule %q: %w", spec, err)
	}
	a.sched.Start()
	a.log.WithField("schedule", spec).Info("autosave scheduled")
	return a, nil
}

// Run writes one draft if the session changed.
func (a *Autosave) Run(ctx context.Context) {
	wrote, err := a.editor.SaveDraft(ctx)
	if err != nil {
		a.log.WithError(err).Warn("draft not saved")
		return
	}
	if wrote {
		a.log.Debug("draft saved")
	}
}

// Stop cancels the schedule and waits for a running draft to finish.
func (a *Autosave) Stop() {
	if a == nil {
		return
	}
	<-a.sched.Stop().Done()
}
