package scheduler

import (
	"context"
	"time"

	"github.com/wonny/edge10/backend/internal/pipeline"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// ScanJob runs the scoring pipeline for the current date.
type ScanJob struct {
	pipe *pipeline.Pipeline
	log  *logger.Logger
}

func NewScanJob(pipe *pipeline.Pipeline, log *logger.Logger) *ScanJob {
	return &ScanJob{pipe: pipe, log: log.WithField("job", "daily-scan")}
}

func (j *ScanJob) Name() string { return "daily-scan" }

func (j *ScanJob) Run(ctx context.Context) error {
	res, err := j.pipe.Run(ctx, pipeline.RunConfig{RequestedDate: time.Now().UTC()})
	if err != nil {
		return err
	}
	j.log.WithFields(map[string]interface{}{
		"anchor":    res.Anchor.Date.Format("2006-01-02"),
		"survivors": res.Survivors,
		"top":       len(res.Top),
	}).Info("Scheduled scan complete")
	return nil
}
