// Package service assembles the classifier, discovery pipeline, safe-
// fill engine, and batch orchestrator into the request/result surface
// exposed over MCP and the CLI.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docuform/pdf-form-filler/internal/config"
	"github.com/docuform/pdf-form-filler/internal/form"
	"github.com/docuform/pdf-form-filler/internal/form/batch"
	"github.com/docuform/pdf-form-filler/internal/form/discovery"
	"github.com/docuform/pdf-form-filler/internal/form/fill"
	"github.com/docuform/pdf-form-filler/internal/form/formerr"
)

const outputFilePerm = 0o640

// Service is the engine facade. One instance is shared by all requests;
// it holds no per-request state.
type Service struct {
	cfg        *config.Config
	validator  *form.Validator
	classifier *form.DocumentClassifier
	pipeline   *discovery.Pipeline
	engine     *fill.Engine
	reporter   form.Reporter
}

// NewService wires a Service from configuration.
func NewService(cfg *config.Config, reporter form.Reporter) *Service {
	if reporter == nil {
		reporter = form.NopReporter{}
	}

	classifier := form.NewDocumentClassifier(
		form.WithScanCap(cfg.ClassifyScanCap),
	)

	return &Service{
		cfg:        cfg,
		validator:  form.NewValidator(cfg.MaxFileSize),
		classifier: classifier,
		pipeline: discovery.NewPipeline(
			discovery.WithSufficiencyThreshold(cfg.SufficiencyThreshold),
			discovery.WithReporter(reporter),
		),
		engine: fill.NewEngine(
			fill.WithClassifier(classifier),
			fill.WithPrioritySubsetSize(cfg.PrioritySubsetSize),
			fill.WithMaxTextLength(cfg.MaxTextLength),
			fill.WithEngineReporter(reporter),
		),
		reporter: reporter,
	}
}

// loadTemplate validates and reads a template file into a Template.
func (s *Service) loadTemplate(path string) (*form.Template, error) {
	if err := s.validator.ValidateFile(path); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, formerr.Wrap(formerr.KindUnreadableInput, err)
	}
	tpl := s.validator.Inspect(filepath.Base(path), raw)
	return &tpl, nil
}

// ClassifyFile returns the complexity verdict for a template file.
func (s *Service) ClassifyFile(req form.ClassifyFileRequest) (*form.ClassifyFileResult, error) {
	tpl, err := s.loadTemplate(req.Path)
	if err != nil {
		return nil, err
	}
	return &form.ClassifyFileResult{
		Path:           req.Path,
		Classification: s.classifier.Classify(tpl.Raw),
	}, nil
}

// DiscoverFields runs the discovery cascade over a template file.
func (s *Service) DiscoverFields(req form.DiscoverFieldsRequest) (*form.DiscoverFieldsResult, error) {
	tpl, err := s.loadTemplate(req.Path)
	if err != nil {
		return nil, err
	}
	cls := s.classifier.Classify(tpl.Raw)
	tpl.Fields = s.pipeline.Discover(tpl, cls)

	return &form.DiscoverFieldsResult{
		Path:           req.Path,
		PageCount:      tpl.PageCount,
		Classification: cls,
		Fields:         tpl.Fields,
	}, nil
}

// ValidateFile reports whether a file is an openable PDF template.
// Validation failures are part of the result, not processing errors.
func (s *Service) ValidateFile(req form.ValidateFileRequest) (*form.ValidateFileResult, error) {
	result := &form.ValidateFileResult{Path: req.Path}
	if err := s.validator.ValidateFile(req.Path); err != nil {
		result.Message = err.Error()
		return result, nil
	}
	result.Valid = true
	return result, nil
}

// FillFile fills one template with one record and optionally writes the
// output file.
func (s *Service) FillFile(req form.FillFileRequest) (*form.FillFileResult, error) {
	tpl, err := s.loadTemplate(req.Path)
	if err != nil {
		return nil, err
	}
	cls := s.classifier.Classify(tpl.Raw)
	tpl.Fields = s.pipeline.Discover(tpl, cls)

	fr := s.engine.FillRecord(tpl, req.Record, req.Mappings)

	result := &form.FillFileResult{
		Path:            req.Path,
		Outcome:         fr.Outcome,
		FieldsAttempted: fr.FieldsAttempted,
		FieldsFilled:    fr.FieldsFilled,
		Note:            fr.Note,
		Bytes:           fr.Bytes,
	}
	if req.OutputPath != "" && len(fr.Bytes) > 0 {
		if err := os.WriteFile(req.OutputPath, fr.Bytes, outputFilePerm); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		result.OutputPath = req.OutputPath
		result.Bytes = nil
	}
	return result, nil
}

// FillBatch fills one template once per record, assembles the archive
// when a path was requested, and reports the summary.
func (s *Service) FillBatch(ctx context.Context, req form.FillBatchRequest) (*form.FillBatchResult, error) {
	tpl, err := s.loadTemplate(req.Path)
	if err != nil {
		return nil, err
	}
	cls := s.classifier.Classify(tpl.Raw)
	tpl.Fields = s.pipeline.Discover(tpl, cls)

	jobName := req.JobName
	if jobName == "" {
		jobName = trimPDFExt(tpl.FileName)
	}

	orch := batch.NewOrchestrator(s.engine,
		batch.WithWorkers(s.cfg.WorkerCount),
		batch.WithReporter(s.reporter),
		batch.WithJobName(jobName),
	)
	batchResult := orch.Run(ctx, tpl, req.Records, req.Mappings)

	result := &form.FillBatchResult{
		Path:        req.Path,
		Total:       batchResult.Summary.Total,
		Filled:      batchResult.Summary.Filled,
		Fallback:    batchResult.Summary.Fallback,
		Failed:      batchResult.Summary.Failed,
		SuccessRate: batchResult.Summary.SuccessRate,
	}
	for _, e := range batchResult.Entries {
		result.Entries = append(result.Entries, form.BatchEntrySummary{
			RecordID:   e.RecordID,
			OutputName: e.OutputName,
			Outcome:    e.Outcome,
			Note:       e.Note,
		})
	}

	if req.ArchivePath != "" {
		archive, err := batch.BuildArchive(batchResult)
		if err != nil {
			return nil, fmt.Errorf("failed to build archive: %w", err)
		}
		if err := os.WriteFile(req.ArchivePath, archive, outputFilePerm); err != nil {
			return nil, fmt.Errorf("failed to write archive: %w", err)
		}
		result.ArchivePath = req.ArchivePath
	}
	return result, nil
}

func trimPDFExt(name string) string {
	ext := filepath.Ext(name)
	if ext != "" {
		return name[:len(name)-len(ext)]
	}
	return name
}
