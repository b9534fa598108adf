package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shinoburc/drivelog-export/internal/model"
)

// RecordStore supplies a point-in-time snapshot of the trip records.
type RecordStore interface {
	FetchAll(ctx context.Context) ([]model.TripRecord, error)
}

// HistoryStore persists finished-run entries, newest first, capped.
type HistoryStore interface {
	Append(ctx context.Context, entry model.ExportHistoryEntry) error
}

// DeliverySink receives the finished artifact.
type DeliverySink interface {
	Deliver(ctx context.Context, data []byte, filename string) error
}

// SubscriberHandle identifies one registered callback for unsubscribe.
type SubscriberHandle int

// Orchestrator drives the export phase machine. At most one job runs at
// a time; starting a second while one is active fails with
// ErrExportInProgress.
type Orchestrator struct {
	records RecordStore
	history HistoryStore
	log     zerolog.Logger

	// MaxArtifactBytes caps the generated artifact size. Zero disables
	// the cap.
	MaxArtifactBytes int64

	// FieldOverrides replace the catalog defaults per field for every job
	// this orchestrator runs.
	FieldOverrides map[model.ExportField]FieldOverride

	mu       sync.Mutex
	active   bool
	token    *CancelToken
	phase    model.ExportPhase
	progress model.ExportProgress

	subMu        sync.Mutex
	nextHandle   SubscriberHandle
	progressSubs map[SubscriberHandle]func(model.ExportProgress)
	completeSubs map[SubscriberHandle]func(model.ExportResult)
	errorSubs    map[SubscriberHandle]func(model.ExportError)
}

func NewOrchestrator(records RecordStore, history HistoryStore, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		records:      records,
		history:      history,
		log:          log,
		progressSubs: make(map[SubscriberHandle]func(model.ExportProgress)),
		completeSubs: make(map[SubscriberHandle]func(model.ExportResult)),
		errorSubs:    make(map[SubscriberHandle]func(model.ExportError)),
	}
}

func (o *Orchestrator) IsExporting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Progress returns the latest progress snapshot and whether a job is
// active.
func (o *Orchestrator) Progress() (model.ExportProgress, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress, o.active
}

// Cancel requests cooperative cancellation of the active job. It is a
// no-op when nothing is running.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	token := o.token
	o.mu.Unlock()
	if token != nil {
		token.Cancel()
	}
}

func (o *Orchestrator) OnProgress(fn func(model.ExportProgress)) SubscriberHandle {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	o.nextHandle++
	o.progressSubs[o.nextHandle] = fn
	return o.nextHandle
}

func (o *Orchestrator) OnComplete(fn func(model.ExportResult)) SubscriberHandle {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	o.nextHandle++
	o.completeSubs[o.nextHandle] = fn
	return o.nextHandle
}

func (o *Orchestrator) OnError(fn func(model.ExportError)) SubscriberHandle {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	o.nextHandle++
	o.errorSubs[o.nextHandle] = fn
	return o.nextHandle
}

func (o *Orchestrator) Unsubscribe(handle SubscriberHandle) {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	delete(o.progressSubs, handle)
	delete(o.completeSubs, handle)
	delete(o.errorSubs, handle)
}

func (o *Orchestrator) notifyProgress(p model.ExportProgress) {
	o.subMu.Lock()
	subs := make([]func(model.ExportProgress), 0, len(o.progressSubs))
	for _, fn := range o.progressSubs {
		subs = append(subs, fn)
	}
	o.subMu.Unlock()
	for _, fn := range subs {
		fn(p)
	}
}

func (o *Orchestrator) notifyComplete(r model.ExportResult) {
	o.subMu.Lock()
	subs := make([]func(model.ExportResult), 0, len(o.completeSubs))
	for _, fn := range o.completeSubs {
		subs = append(subs, fn)
	}
	o.subMu.Unlock()
	for _, fn := range subs {
		fn(r)
	}
}

func (o *Orchestrator) notifyError(e model.ExportError) {
	o.subMu.Lock()
	subs := make([]func(model.ExportError), 0, len(o.errorSubs))
	for _, fn := range o.errorSubs {
		subs = append(subs, fn)
	}
	o.subMu.Unlock()
	for _, fn := range subs {
		fn(e)
	}
}

// job carries the mutable state of one run.
type job struct {
	settings  model.ExportSettings
	sink      DeliverySink
	token     *CancelToken
	startedAt time.Time
	result    model.ExportResult
}

// StartExport runs one export job to completion. Only the busy condition
// is returned as an error; every other failure is captured into the
// returned result (Success=false) and reported to error subscribers.
func (o *Orchestrator) StartExport(ctx context.Context, settings model.ExportSettings, sink DeliverySink) (*model.ExportResult, error) {
	o.mu.Lock()
	if o.active {
		o.mu.Unlock()
		return nil, ErrExportInProgress
	}
	token := NewCancelToken()
	o.active = true
	o.token = token
	o.phase = model.PhasePreparing
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.active = false
		o.token = nil
		o.mu.Unlock()
	}()

	j := &job{
		settings:  settings,
		sink:      sink,
		token:     token,
		startedAt: time.Now(),
		result:    model.ExportResult{Settings: settings},
	}

	o.emitPhase(j, model.PhasePreparing, 0, 0)

	if err := o.run(ctx, j); err != nil {
		return o.fail(j, err), nil
	}
	return &j.result, nil
}

func (o *Orchestrator) run(ctx context.Context, j *job) error {
	if err := j.settings.Validate(); err != nil {
		return NewError(model.ErrCodeFormatError, model.PhasePreparing, err.Error())
	}
	fields, err := ActiveFields(j.settings)
	if err != nil {
		return NewError(model.ErrCodeInvalidFieldConfig, model.PhasePreparing, err.Error())
	}

	if err := o.advance(j, model.PhaseFetching, 0, 0); err != nil {
		return err
	}
	records, err := o.records.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	j.result.TotalRecords = len(records)

	if err := o.advance(j, model.PhaseFiltering, 0, len(records)); err != nil {
		return err
	}
	filtered := FilterRecords(records, j.settings.Filters)
	j.result.ExportedRecords = len(filtered)
	o.collectWarnings(j, fields, filtered)

	if err := o.advance(j, model.PhaseProcessing, 0, len(filtered)); err != nil {
		return err
	}
	formatter := NewFormatter(j.settings.Format, j.settings.Privacy)
	masker := NewMasker(j.settings.Privacy)
	catalog := NewCatalog(formatter, masker, o.FieldOverrides)

	header := catalog.HeaderRow(fields)
	rows := make([][]string, 0, len(filtered))
	for i, rec := range filtered {
		if err := j.token.Err(); err != nil {
			return err
		}
		rows = append(rows, catalog.Row(fields, rec))
		if (i+1)%256 == 0 {
			o.emitPhase(j, model.PhaseProcessing, i+1, len(filtered))
		}
	}

	if err := o.advance(j, model.PhaseGenerating, 0, len(rows)); err != nil {
		return err
	}
	blob, err := o.generate(j, header, rows)
	if err != nil {
		return err
	}
	j.result.ByteSize = int64(len(blob))
	if o.MaxArtifactBytes > 0 && j.result.ByteSize > o.MaxArtifactBytes {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, j.result.ByteSize)
	}

	if err := o.advance(j, model.PhaseDownloading, len(rows), len(rows)); err != nil {
		return err
	}
	filename := BuildFilename(j.settings.FilenameTemplate, j.settings.Filters, time.Now())
	j.result.Filename = filename
	if err := j.sink.Deliver(ctx, blob, filename); err != nil {
		return fmt.Errorf("deliver artifact: %w", err)
	}

	o.finish(j)
	return nil
}

// generate renders the artifact bytes, streaming in chunks with progress
// and cancellation checks when streaming is enabled.
func (o *Orchestrator) generate(j *job, header []string, rows [][]string) ([]byte, error) {
	codec := NewCodec(j.settings.Format)
	if !j.settings.Streaming {
		return codec.GenerateCSVBlob(header, rows)
	}

	var text []byte
	err := codec.GenerateCSVStream(header, rows, j.settings.ChunkSize, func(chunk string, p StreamProgress) error {
		if err := j.token.Err(); err != nil {
			return err
		}
		text = append(text, chunk...)
		o.emitPhase(j, model.PhaseGenerating, p.Current, p.Total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codec.EncodeBytes(string(text))
}

func (o *Orchestrator) collectWarnings(j *job, fields []model.ExportField, filtered []model.TripRecord) {
	if len(filtered) == 0 {
		j.result.Warnings = append(j.result.Warnings, model.ExportWarning{
			Message:    "no records match the configured filters",
			Suggestion: "Widen the date range or clear the status filter.",
		})
	}
	for _, f := range fields {
		if f == model.FieldDriverName && !j.settings.Privacy.AnonymizeDriverName {
			j.result.Warnings = append(j.result.Warnings, model.ExportWarning{
				Message:    "driver names are exported without anonymization",
				Suggestion: "Enable driver name anonymization if the file will be shared.",
			})
		}
		if f == model.FieldVehicleNumber && !j.settings.Privacy.AnonymizeVehicleNumber {
			j.result.Warnings = append(j.result.Warnings, model.ExportWarning{
				Message:    "vehicle numbers are exported without anonymization",
				Suggestion: "Enable vehicle number anonymization if the file will be shared.",
			})
		}
	}
}

// advance moves to the next phase after a cancellation check at the
// boundary.
func (o *Orchestrator) advance(j *job, to model.ExportPhase, current, total int) error {
	if err := j.token.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	from := o.phase
	o.mu.Unlock()
	if err := checkTransition(from, to); err != nil {
		return err
	}
	o.emitPhase(j, to, current, total)
	return nil
}

func (o *Orchestrator) emitPhase(j *job, phase model.ExportPhase, current, total int) {
	progress := model.ExportProgress{
		Phase:       phase,
		Percentage:  phaseMilestones[phase],
		Current:     current,
		Total:       total,
		Message:     phaseMessage(phase),
		Cancellable: !isTerminal(phase),
		StartedAt:   j.startedAt,
	}
	if elapsed := time.Since(j.startedAt); elapsed > 0 && current > 0 {
		rate := float64(current) / elapsed.Seconds()
		progress.RecordsPerSecond = rate
		if rate > 0 && total > current {
			progress.EstimatedRemaining = time.Duration(float64(total-current)/rate) * time.Second
		}
	}

	o.mu.Lock()
	o.phase = phase
	o.progress = progress
	o.mu.Unlock()

	o.notifyProgress(progress)
}

func (o *Orchestrator) finish(j *job) {
	o.emitPhase(j, model.PhaseCompleted, j.result.ExportedRecords, j.result.ExportedRecords)
	j.result.Success = true
	j.result.Elapsed = time.Since(j.startedAt)
	if j.result.Elapsed > 0 {
		j.result.RecordsPerSecond = float64(j.result.ExportedRecords) / j.result.Elapsed.Seconds()
	}
	o.appendHistory(j, "")
	o.notifyComplete(j.result)
	o.log.Info().
		Str("filename", j.result.Filename).
		Int("records", j.result.ExportedRecords).
		Int64("bytes", j.result.ByteSize).
		Dur("elapsed", j.result.Elapsed).
		Msg("export completed")
}

// fail classifies the error, lands in the matching terminal phase and
// still produces a result so callers can inspect the outcome.
func (o *Orchestrator) fail(j *job, err error) *model.ExportResult {
	o.mu.Lock()
	phase := o.phase
	o.mu.Unlock()

	exportErr := Classify(err, phase)
	terminal := model.PhaseError
	if exportErr.Code == model.ErrCodeCancelledByUser {
		terminal = model.PhaseCancelled
	}
	o.emitPhase(j, terminal, j.result.ExportedRecords, j.result.TotalRecords)

	j.result.Success = false
	j.result.Elapsed = time.Since(j.startedAt)
	j.result.Errors = append(j.result.Errors, exportErr)
	o.appendHistory(j, string(exportErr.Code))
	o.notifyError(exportErr)
	o.log.Warn().
		Str("code", string(exportErr.Code)).
		Str("phase", string(exportErr.Phase)).
		Err(err).
		Msg("export did not complete")
	return &j.result
}

func (o *Orchestrator) appendHistory(j *job, errorCode string) {
	if o.history == nil {
		return
	}
	entry := model.ExportHistoryEntry{
		ID:              uuid.New(),
		Filename:        j.result.Filename,
		Success:         j.result.Success,
		ByteSize:        j.result.ByteSize,
		TotalRecords:    j.result.TotalRecords,
		ExportedRecords: j.result.ExportedRecords,
		Elapsed:         j.result.Elapsed,
		ErrorCode:       errorCode,
		ExportedAt:      time.Now(),
	}
	if err := o.history.Append(context.Background(), entry); err != nil {
		o.log.Error().Err(err).Msg("failed to append export history")
	}
}
