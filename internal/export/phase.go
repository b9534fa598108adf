package export

import (
	"fmt"

	"github.com/shinoburc/drivelog-export/internal/model"
)

// phaseMilestones fixes the reported percentage at each phase entry.
var phaseMilestones = map[model.ExportPhase]int{
	model.PhasePreparing:   0,
	model.PhaseFetching:    10,
	model.PhaseFiltering:   30,
	model.PhaseProcessing:  50,
	model.PhaseGenerating:  80,
	model.PhaseDownloading: 90,
	model.PhaseCompleted:   100,
	model.PhaseCancelled:   100,
	model.PhaseError:       100,
}

// phaseSuccessor encodes the strict forward order of the happy path.
var phaseSuccessor = map[model.ExportPhase]model.ExportPhase{
	model.PhasePreparing:   model.PhaseFetching,
	model.PhaseFetching:    model.PhaseFiltering,
	model.PhaseFiltering:   model.PhaseProcessing,
	model.PhaseProcessing:  model.PhaseGenerating,
	model.PhaseGenerating:  model.PhaseDownloading,
	model.PhaseDownloading: model.PhaseCompleted,
}

func isTerminal(p model.ExportPhase) bool {
	switch p {
	case model.PhaseCompleted, model.PhaseCancelled, model.PhaseError:
		return true
	}
	return false
}

// validTransition allows only the next phase in order, or a jump to one
// of the absorbing terminal phases from any non-terminal phase.
func validTransition(from, to model.ExportPhase) bool {
	if isTerminal(from) {
		return false
	}
	if to == model.PhaseCancelled || to == model.PhaseError {
		return true
	}
	return phaseSuccessor[from] == to
}

func checkTransition(from, to model.ExportPhase) error {
	if !validTransition(from, to) {
		return fmt.Errorf("illegal phase transition %s -> %s", from, to)
	}
	return nil
}

func phaseMessage(p model.ExportPhase) string {
	switch p {
	case model.PhasePreparing:
		return "Preparing export"
	case model.PhaseFetching:
		return "Fetching trip records"
	case model.PhaseFiltering:
		return "Applying filters"
	case model.PhaseProcessing:
		return "Formatting records"
	case model.PhaseGenerating:
		return "Generating CSV"
	case model.PhaseDownloading:
		return "Delivering file"
	case model.PhaseCompleted:
		return "Export completed"
	case model.PhaseCancelled:
		return "Export cancelled"
	case model.PhaseError:
		return "Export failed"
	}
	return string(p)
}
