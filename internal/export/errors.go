package export

import (
	"context"
	"errors"
	"time"

	"github.com/shinoburc/drivelog-export/internal/model"
)

var (
	ErrExportInProgress    = errors.New("an export is already in progress")
	ErrCancelled           = errors.New("export cancelled by user")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrNoFieldsSelected    = errors.New("no fields selected for export")
	ErrFileTooLarge        = errors.New("export artifact exceeds the size limit")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

type errorTrait struct {
	recoverable bool
	suggestion  string
}

var errorTraits = map[model.ExportErrorCode]errorTrait{
	model.ErrCodeDataFetchFailed:     {true, "Check the record store connection and retry."},
	model.ErrCodeStorageUnavailable:  {true, "Storage is temporarily unavailable; retry later."},
	model.ErrCodeCSVGenerationFailed: {false, ""},
	model.ErrCodeInvalidFieldConfig:  {true, "Select at least one valid export field."},
	model.ErrCodeFormatError:         {true, "Fix the format options and retry."},
	model.ErrCodeDownloadFailed:      {true, "Check the destination and retry."},
	model.ErrCodeFileTooLarge:        {true, "Narrow the date range or reduce the selected fields."},
	model.ErrCodeMemoryInsufficient:  {true, "Reduce the record count or enable streaming."},
	model.ErrCodeCancelledByUser:     {true, "The export was cancelled; start it again when ready."},
	model.ErrCodeUnknown:             {false, ""},
}

// NewError builds a classified ExportError, filling the recoverability flag
// and suggestion from the taxonomy.
func NewError(code model.ExportErrorCode, phase model.ExportPhase, message string) model.ExportError {
	trait := errorTraits[code]
	return model.ExportError{
		Code:        code,
		Message:     message,
		Recoverable: trait.recoverable,
		Suggestion:  trait.suggestion,
		Timestamp:   time.Now(),
		Phase:       phase,
	}
}

// Classify maps a raised error to a taxonomy code using its signature and
// the phase it occurred in. Anything unmatched becomes UNKNOWN_ERROR.
func Classify(err error, phase model.ExportPhase) model.ExportError {
	var exportErr model.ExportError
	if errors.As(err, &exportErr) {
		return exportErr
	}

	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return NewError(model.ErrCodeCancelledByUser, phase, "export cancelled by user")
	case errors.Is(err, ErrUnsupportedEncoding):
		return NewError(model.ErrCodeFormatError, phase, err.Error())
	case errors.Is(err, ErrNoFieldsSelected):
		return NewError(model.ErrCodeInvalidFieldConfig, phase, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		return NewError(model.ErrCodeFileTooLarge, phase, err.Error())
	case errors.Is(err, ErrStorageUnavailable):
		return NewError(model.ErrCodeStorageUnavailable, phase, err.Error())
	}

	switch phase {
	case model.PhaseFetching:
		return NewError(model.ErrCodeDataFetchFailed, phase, err.Error())
	case model.PhaseGenerating:
		return NewError(model.ErrCodeCSVGenerationFailed, phase, err.Error())
	case model.PhaseDownloading:
		return NewError(model.ErrCodeDownloadFailed, phase, err.Error())
	}
	return NewError(model.ErrCodeUnknown, phase, err.Error())
}
