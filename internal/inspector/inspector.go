// Package inspector runs an ordered set of standards against one repository
// and collects the outcome into a Report.
package inspector

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"stdinspector/internal/standards"
)

type Inspector struct {
	standards []standards.Standard
}

func New(stds []standards.Standard) *Inspector {
	return &Inspector{standards: append([]standards.Standard(nil), stds...)}
}

// Check evaluates every standard in order. The file listing is fetched
// first so that an unreachable repository fails before any standard runs.
// A standard that errors yields a failing entry and the run continues.
func (i *Inspector) Check(ctx context.Context, repo standards.Repository) (*Report, error) {
	files, err := repo.Files(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debugf("inspecting %d files with %d standards", files.Len(), len(i.standards))

	report := &Report{}
	for _, s := range i.standards {
		d := s.Descriptor()
		start := time.Now()
		res, err := s.Check(ctx, repo)
		log := logger.WithFields(logger.Fields{"code": d.Code, "duration": time.Since(start).Round(time.Millisecond)})

		entry := Entry{Descriptor: d, Result: res}
		if err != nil {
			entry.Result = standards.Result{MeetsStandard: false}
			entry.Err = err
			log.WithError(err).Warn("standard could not be checked")
		} else {
			log.WithField("meets_standard", res.MeetsStandard).Debug("standard checked")
		}
		report.Entries = append(report.Entries, entry)
	}
	return report, nil
}
