package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shinoburc/drivelog-export/internal/export"
	"github.com/shinoburc/drivelog-export/internal/model"
	"github.com/shinoburc/drivelog-export/internal/repository"
)

// ExcelGenerator renders prepared header and data rows as a workbook.
type ExcelGenerator interface {
	Generate(header []string, rows [][]string, title string) ([]byte, error)
}

// HistoryReportGenerator renders the run history as a printable report.
type HistoryReportGenerator interface {
	Generate(entries []model.ExportHistoryEntry) ([]byte, error)
}

type ExportService struct {
	trips        *repository.TripRepository
	settings     *repository.SettingsRepository
	orchestrator *export.Orchestrator
	excel        ExcelGenerator
	report       HistoryReportGenerator
	archive      export.DeliverySink
	log          zerolog.Logger
}

func NewExportService(
	trips *repository.TripRepository,
	settings *repository.SettingsRepository,
	orchestrator *export.Orchestrator,
	excel ExcelGenerator,
	report HistoryReportGenerator,
	archive export.DeliverySink,
	log zerolog.Logger,
) *ExportService {
	return &ExportService{
		trips:        trips,
		settings:     settings,
		orchestrator: orchestrator,
		excel:        excel,
		report:       report,
		archive:      archive,
		log:          log,
	}
}

// ExportOutput bundles the artifact with the run outcome. Content is nil
// when the run did not reach delivery.
type ExportOutput struct {
	Filename string
	Content  []byte
	Result   model.ExportResult
}

// RunCSVExport executes one export job and hands back the artifact from
// an in-memory sink. A concurrently running job surfaces as
// ErrExportBusy; every other failure is inside Result.
func (s *ExportService) RunCSVExport(ctx context.Context, settings model.ExportSettings) (*ExportOutput, error) {
	sink := &export.BufferSink{}
	result, err := s.orchestrator.StartExport(ctx, settings, sink)
	if err != nil {
		if errors.Is(err, export.ErrExportInProgress) {
			return nil, ErrExportBusy
		}
		return nil, err
	}
	if result.Success && s.archive != nil {
		if err := s.archive.Deliver(ctx, sink.Data, sink.Filename); err != nil {
			s.log.Warn().Err(err).Str("filename", sink.Filename).Msg("failed to archive export artifact")
		}
	}
	return &ExportOutput{
		Filename: sink.Filename,
		Content:  sink.Data,
		Result:   *result,
	}, nil
}

// RunExcelExport renders the same filtered, formatted rows as an xlsx
// workbook. It reuses the pipeline's catalog and filters but bypasses
// the job state machine; the workbook path has no streaming mode.
func (s *ExportService) RunExcelExport(ctx context.Context, settings model.ExportSettings) (*ExportOutput, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	fields, err := export.ActiveFields(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	records, err := s.trips.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := export.FilterRecords(records, settings.Filters)

	formatter := export.NewFormatter(settings.Format, settings.Privacy)
	masker := export.NewMasker(settings.Privacy)
	catalog := export.NewCatalog(formatter, masker, nil)

	header := catalog.HeaderRow(fields)
	rows := make([][]string, 0, len(filtered))
	for _, rec := range filtered {
		rows = append(rows, catalog.Row(fields, rec))
	}

	content, err := s.excel.Generate(header, rows, "運転日報")
	if err != nil {
		return nil, err
	}

	filename := export.BuildFilename(settings.FilenameTemplate, settings.Filters, timeNow())
	filename = replaceExt(filename, ".xlsx")
	return &ExportOutput{
		Filename: filename,
		Content:  content,
		Result: model.ExportResult{
			Success:         true,
			Filename:        filename,
			ByteSize:        int64(len(content)),
			TotalRecords:    len(records),
			ExportedRecords: len(filtered),
			Settings:        settings,
		},
	}, nil
}

func (s *ExportService) Progress() (model.ExportProgress, bool) {
	return s.orchestrator.Progress()
}

func (s *ExportService) Cancel() {
	s.orchestrator.Cancel()
}

func (s *ExportService) IsExporting() bool {
	return s.orchestrator.IsExporting()
}

func (s *ExportService) History(ctx context.Context, limit int) ([]model.ExportHistoryEntry, error) {
	return s.settings.ListHistory(ctx, limit)
}

// HistoryReport renders the recent run history as a PDF.
func (s *ExportService) HistoryReport(ctx context.Context, limit int) ([]byte, string, error) {
	entries, err := s.settings.ListHistory(ctx, limit)
	if err != nil {
		return nil, "", err
	}
	content, err := s.report.Generate(entries)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("export-history-%s.pdf", timeNow().Format("20060102-150405"))
	return content, filename, nil
}

func replaceExt(name, ext string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i] + ext
	}
	return name + ext
}
