package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportField identifies one exportable column. Closed set.
type ExportField string

const (
	FieldID                     ExportField = "ID"
	FieldDate                   ExportField = "DATE"
	FieldDepartureTime          ExportField = "DEPARTURE_TIME"
	FieldArrivalTime            ExportField = "ARRIVAL_TIME"
	FieldStartLocationName      ExportField = "START_LOCATION_NAME"
	FieldStartLocationLatitude  ExportField = "START_LOCATION_LATITUDE"
	FieldStartLocationLongitude ExportField = "START_LOCATION_LONGITUDE"
	FieldEndLocationName        ExportField = "END_LOCATION_NAME"
	FieldEndLocationLatitude    ExportField = "END_LOCATION_LATITUDE"
	FieldEndLocationLongitude   ExportField = "END_LOCATION_LONGITUDE"
	FieldTotalDistance          ExportField = "TOTAL_DISTANCE"
	FieldDuration               ExportField = "DURATION"
	FieldDriverName             ExportField = "DRIVER_NAME"
	FieldVehicleNumber          ExportField = "VEHICLE_NUMBER"
	FieldPurpose                ExportField = "PURPOSE"
	FieldStatus                 ExportField = "STATUS"
	FieldNotes                  ExportField = "NOTES"
	FieldCreatedAt              ExportField = "CREATED_AT"
)

// AllExportFields lists every field in catalog order.
var AllExportFields = []ExportField{
	FieldID,
	FieldDate,
	FieldDepartureTime,
	FieldArrivalTime,
	FieldStartLocationName,
	FieldStartLocationLatitude,
	FieldStartLocationLongitude,
	FieldEndLocationName,
	FieldEndLocationLatitude,
	FieldEndLocationLongitude,
	FieldTotalDistance,
	FieldDuration,
	FieldDriverName,
	FieldVehicleNumber,
	FieldPurpose,
	FieldStatus,
	FieldNotes,
	FieldCreatedAt,
}

type Delimiter string

const (
	DelimiterComma     Delimiter = ","
	DelimiterSemicolon Delimiter = ";"
	DelimiterTab       Delimiter = "\t"
)

type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingUTF8BOM  Encoding = "utf-8-bom"
	EncodingShiftJIS Encoding = "shift_jis"
)

type LineEnding string

const (
	LineEndingLF   LineEnding = "\n"
	LineEndingCRLF LineEnding = "\r\n"
)

type QuotePolicy string

const (
	QuoteAll     QuotePolicy = "all"
	QuoteMinimal QuotePolicy = "minimal"
	QuoteNone    QuotePolicy = "none"
)

type DateFormat string

const (
	DateFormatISO      DateFormat = "YYYY-MM-DD"
	DateFormatSlash    DateFormat = "YYYY/MM/DD"
	DateFormatDayFirst DateFormat = "DD/MM/YYYY"
)

type TimeFormat string

const (
	TimeFormatMinute TimeFormat = "HH:mm"
	TimeFormatSecond TimeFormat = "HH:mm:ss"
)

type DistanceUnit string

const (
	DistanceKm   DistanceUnit = "km"
	DistanceM    DistanceUnit = "m"
	DistanceMile DistanceUnit = "mile"
)

type DurationUnit string

const (
	DurationMinutes DurationUnit = "minutes"
	DurationHours   DurationUnit = "hours"
	DurationSeconds DurationUnit = "seconds"
)

type NumberFormatOptions struct {
	DecimalPlaces      int          `json:"decimal_places"`
	ThousandsSeparator bool         `json:"thousands_separator"`
	DistanceUnit       DistanceUnit `json:"distance_unit"`
	DurationUnit       DurationUnit `json:"duration_unit"`
}

type FormatOptions struct {
	Delimiter    Delimiter           `json:"delimiter"`
	Encoding     Encoding            `json:"encoding"`
	LineEnding   LineEnding          `json:"line_ending"`
	QuotePolicy  QuotePolicy         `json:"quote_policy"`
	DateFormat   DateFormat          `json:"date_format"`
	TimeFormat   TimeFormat          `json:"time_format"`
	NumberFormat NumberFormatOptions `json:"number_format"`
}

func (o FormatOptions) Validate() error {
	switch o.Delimiter {
	case DelimiterComma, DelimiterSemicolon, DelimiterTab:
	default:
		return fmt.Errorf("invalid delimiter %q", string(o.Delimiter))
	}
	switch o.Encoding {
	case EncodingUTF8, EncodingUTF8BOM, EncodingShiftJIS:
	default:
		return fmt.Errorf("invalid encoding %q", string(o.Encoding))
	}
	switch o.LineEnding {
	case LineEndingLF, LineEndingCRLF:
	default:
		return fmt.Errorf("invalid line ending %q", string(o.LineEnding))
	}
	switch o.QuotePolicy {
	case QuoteAll, QuoteMinimal, QuoteNone:
	default:
		return fmt.Errorf("invalid quote policy %q", string(o.QuotePolicy))
	}
	if o.NumberFormat.DecimalPlaces < 0 {
		return fmt.Errorf("decimal places must be >= 0, got %d", o.NumberFormat.DecimalPlaces)
	}
	return nil
}

type PrivacyOptions struct {
	AnonymizeDriverName    bool `json:"anonymize_driver_name"`
	AnonymizeVehicleNumber bool `json:"anonymize_vehicle_number"`
	ExcludeGPSCoordinates  bool `json:"exclude_gps_coordinates"`
	MaskLocationNames      bool `json:"mask_location_names"`
	CoordinatePrecision    int  `json:"coordinate_precision"`
}

func (o PrivacyOptions) Validate() error {
	if o.CoordinatePrecision < 0 {
		return fmt.Errorf("coordinate precision must be >= 0, got %d", o.CoordinatePrecision)
	}
	return nil
}

type FloatRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r FloatRange) Validate() error {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("range min %v exceeds max %v", *r.Min, *r.Max)
	}
	return nil
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ExportFilters struct {
	DateRange     *DateRange   `json:"date_range,omitempty"`
	Statuses      []TripStatus `json:"statuses,omitempty"`
	DistanceRange *FloatRange  `json:"distance_range,omitempty"`
	DurationRange *FloatRange  `json:"duration_range,omitempty"`
}

func (f ExportFilters) Validate() error {
	if f.DateRange != nil && f.DateRange.Start.After(f.DateRange.End) {
		return fmt.Errorf("date range start %s after end %s",
			f.DateRange.Start.Format("2006-01-02"), f.DateRange.End.Format("2006-01-02"))
	}
	if f.DistanceRange != nil {
		if err := f.DistanceRange.Validate(); err != nil {
			return fmt.Errorf("distance %w", err)
		}
	}
	if f.DurationRange != nil {
		if err := f.DurationRange.Validate(); err != nil {
			return fmt.Errorf("duration %w", err)
		}
	}
	return nil
}

// ExportSettings is the persisted unit of export configuration and the
// payload of a preset.
type ExportSettings struct {
	SelectedFields   []ExportField  `json:"selected_fields"`
	ExcludedFields   []ExportField  `json:"excluded_fields,omitempty"`
	Filters          ExportFilters  `json:"filters"`
	Format           FormatOptions  `json:"format"`
	Privacy          PrivacyOptions `json:"privacy"`
	FilenameTemplate string         `json:"filename_template"`
	Streaming        bool           `json:"streaming"`
	ChunkSize        int            `json:"chunk_size"`
}

func (s ExportSettings) Validate() error {
	if err := s.Format.Validate(); err != nil {
		return err
	}
	if err := s.Privacy.Validate(); err != nil {
		return err
	}
	if err := s.Filters.Validate(); err != nil {
		return err
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be > 0, got %d", s.ChunkSize)
	}
	return nil
}

// DefaultExportSettings returns the settings used when nothing has been
// persisted yet. UTF-8 with BOM and CRLF keep the artifact friendly to
// spreadsheet software.
func DefaultExportSettings() ExportSettings {
	fields := make([]ExportField, len(AllExportFields))
	copy(fields, AllExportFields)
	return ExportSettings{
		SelectedFields: fields,
		Format: FormatOptions{
			Delimiter:   DelimiterComma,
			Encoding:    EncodingUTF8BOM,
			LineEnding:  LineEndingCRLF,
			QuotePolicy: QuoteMinimal,
			DateFormat:  DateFormatISO,
			TimeFormat:  TimeFormatMinute,
			NumberFormat: NumberFormatOptions{
				DecimalPlaces:      2,
				ThousandsSeparator: false,
				DistanceUnit:       DistanceKm,
				DurationUnit:       DurationMinutes,
			},
		},
		Privacy: PrivacyOptions{
			CoordinatePrecision: 6,
		},
		FilenameTemplate: "driving-log_{YYYY-MM-DD}.csv",
		Streaming:        false,
		ChunkSize:        100,
	}
}

// ExportPreset is a named, reusable settings bundle. At most one preset is
// marked default at any time.
type ExportPreset struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Settings   ExportSettings `json:"settings"`
	IsDefault  bool           `json:"is_default"`
	UseCount   int64          `json:"use_count"`
	LastUsedAt *time.Time     `json:"last_used_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type ExportPhase string

const (
	PhasePreparing   ExportPhase = "PREPARING"
	PhaseFetching    ExportPhase = "FETCHING"
	PhaseFiltering   ExportPhase = "FILTERING"
	PhaseProcessing  ExportPhase = "PROCESSING"
	PhaseGenerating  ExportPhase = "GENERATING"
	PhaseDownloading ExportPhase = "DOWNLOADING"
	PhaseCompleted   ExportPhase = "COMPLETED"
	PhaseCancelled   ExportPhase = "CANCELLED"
	PhaseError       ExportPhase = "ERROR"
)

// ExportProgress is a transient snapshot emitted while a job runs.
type ExportProgress struct {
	Phase              ExportPhase   `json:"phase"`
	Percentage         int           `json:"percentage"`
	Current            int           `json:"current"`
	Total              int           `json:"total"`
	Message            string        `json:"message"`
	Cancellable        bool          `json:"cancellable"`
	StartedAt          time.Time     `json:"started_at"`
	EstimatedRemaining time.Duration `json:"estimated_remaining,omitempty"`
	RecordsPerSecond   float64       `json:"records_per_second,omitempty"`
}

// ExportWarning is a non-fatal finding attached to a result.
type ExportWarning struct {
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ExportResult is the terminal outcome of one export run.
type ExportResult struct {
	Success          bool            `json:"success"`
	Filename         string          `json:"filename"`
	ByteSize         int64           `json:"byte_size"`
	TotalRecords     int             `json:"total_records"`
	ExportedRecords  int             `json:"exported_records"`
	Elapsed          time.Duration   `json:"elapsed"`
	RecordsPerSecond float64         `json:"records_per_second"`
	Errors           []ExportError   `json:"errors,omitempty"`
	Warnings         []ExportWarning `json:"warnings,omitempty"`
	Settings         ExportSettings  `json:"settings"`
}

// ExportErrorCode is the closed error taxonomy for export failures.
type ExportErrorCode string

const (
	ErrCodeDataFetchFailed     ExportErrorCode = "DATA_FETCH_FAILED"
	ErrCodeStorageUnavailable  ExportErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeCSVGenerationFailed ExportErrorCode = "CSV_GENERATION_FAILED"
	ErrCodeInvalidFieldConfig  ExportErrorCode = "INVALID_FIELD_CONFIGURATION"
	ErrCodeFormatError         ExportErrorCode = "FORMAT_ERROR"
	ErrCodeDownloadFailed      ExportErrorCode = "DOWNLOAD_FAILED"
	ErrCodeFileTooLarge        ExportErrorCode = "FILE_TOO_LARGE"
	ErrCodeMemoryInsufficient  ExportErrorCode = "MEMORY_INSUFFICIENT"
	ErrCodeCancelledByUser     ExportErrorCode = "CANCELLED_BY_USER"
	ErrCodeUnknown             ExportErrorCode = "UNKNOWN_ERROR"
)

// ExportError is a classified export failure.
type ExportError struct {
	Code        ExportErrorCode `json:"code"`
	Message     string          `json:"message"`
	Recoverable bool            `json:"recoverable"`
	Suggestion  string          `json:"suggestion,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Phase       ExportPhase     `json:"phase"`
}

func (e ExportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ExportHistoryEntry is the persisted trace of a finished run.
type ExportHistoryEntry struct {
	ID              uuid.UUID     `json:"id"`
	Filename        string        `json:"filename"`
	Success         bool          `json:"success"`
	ByteSize        int64         `json:"byte_size"`
	TotalRecords    int           `json:"total_records"`
	ExportedRecords int           `json:"exported_records"`
	Elapsed         time.Duration `json:"elapsed"`
	ErrorCode       string        `json:"error_code,omitempty"`
	ExportedAt      time.Time     `json:"exported_at"`
}
