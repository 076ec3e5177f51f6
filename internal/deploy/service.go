package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compose-network/contract-deployer/internal/deploy/artifacts"
	"github.com/compose-network/contract-deployer/internal/deploy/deployer"
	"github.com/compose-network/contract-deployer/internal/history"
	"github.com/compose-network/contract-deployer/internal/logger"
)

// Service deploys a contract and, once it is confirmed, persists the outcome.
type (
	runner interface {
		Run(ctx context.Context, descriptor artifacts.Descriptor) (deployer.Result, error)
	}
	abiSource interface {
		Resolve(d artifacts.Descriptor) (artifacts.Artifact, error)
	}
	outputGenerator interface {
		Generate(ctx context.Context, result deployer.Result, rawABI string) (string, error)
	}
	historyRecorder interface {
		Record(ctx context.Context, result deployer.Result) (history.Deployment, error)
	}
	reporter interface {
		Note(format string, a ...any)
		Warning(format string, a ...any)
	}

	Service struct {
		runner          runner
		abiSource       abiSource
		outputGenerator outputGenerator
		historyRecorder historyRecorder
		reporter        reporter
		logger          *slog.Logger
	}
)

// NewService creates a deploy service. outputGenerator and historyRecorder may
// be nil to skip the corresponding step.
func NewService(
	runner runner,
	abiSource abiSource,
	outputGenerator outputGenerator,
	historyRecorder historyRecorder,
	reporter reporter) *Service {
	return &Service{
		runner:          runner,
		abiSource:       abiSource,
		outputGenerator: outputGenerator,
		historyRecorder: historyRecorder,
		reporter:        reporter,
		logger:          logger.Named("deploy_service"),
	}
}

// Deploy runs the deployment. Failing to persist a confirmed deployment is
// reported as a warning: the contract exists on chain either way.
func (s *Service) Deploy(ctx context.Context, descriptor artifacts.Descriptor) (deployer.Result, error) {
	result, err := s.runner.Run(ctx, descriptor)
	if err != nil {
		return deployer.Result{}, err
	}

	if s.outputGenerator != nil {
		if err := s.writeRecord(ctx, result); err != nil {
			s.logger.With("err", err.Error()).Warn("deployment record was not written")
			s.reporter.Warning("%v", err)
		}
	}

	if s.historyRecorder != nil {
		if _, err := s.historyRecorder.Record(ctx, result); err != nil {
			s.logger.With("err", err.Error()).Warn("deployment was not added to history")
			s.reporter.Warning("%v", err)
		}
	}

	return result, nil
}

func (s *Service) writeRecord(ctx context.Context, result deployer.Result) error {
	var rawABI string
	if artifact, err := s.abiSource.Resolve(result.Descriptor); err != nil {
		s.logger.With("err", err.Error()).Debug("ABI unavailable for deployment record")
	} else {
		rawABI = artifact.RawABI
	}

	path, err := s.outputGenerator.Generate(ctx, result, rawABI)
	if err != nil {
		return fmt.Errorf("failed to write deployment record: %w", err)
	}
	s.reporter.Note("Deployment record written to %s", path)

	return nil
}
