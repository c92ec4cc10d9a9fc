package confidence

import (
	"fmt"
	"sort"
)

// ActionType identifies a remediation step.
type ActionType string

const (
	ActionIdentifyExternalWalls  ActionType = "identify_external_walls"
	ActionScanGeometry           ActionType = "scan_geometry"
	ActionConfirmWallType        ActionType = "confirm_wall_type"
	ActionConfirmInsulation      ActionType = "confirm_insulation"
	ActionConfirmGlazing         ActionType = "confirm_glazing"
	ActionSetUnheatedTemperature ActionType = "set_unheated_temperature"
	ActionSetAirtightnessMethod  ActionType = "set_airtightness_method"
	ActionAttachPhotoEvidence    ActionType = "attach_photo_evidence"
)

// Priorities order actions lower-first. PhotoEvidencePriority is reserved
// for the always-present fallback action.
const (
	PriorityGeometry      = 1
	PriorityWallType      = 2
	PriorityInsulation    = 3
	PriorityGlazing       = 4
	PriorityUnheatedModel = 5
	PriorityAirtightness  = 6
	PhotoEvidencePriority = 99
)

const (
	noUrgentActionMessage     = "No urgent action needed"
	photoEvidenceReasonFormat = "Photo evidence supports every figure recorded for %s"
)

// actionOrder breaks priority ties deterministically.
var actionOrder = map[ActionType]int{
	ActionIdentifyExternalWalls:  0,
	ActionScanGeometry:           1,
	ActionConfirmWallType:        2,
	ActionConfirmInsulation:      3,
	ActionConfirmGlazing:         4,
	ActionSetUnheatedTemperature: 5,
	ActionSetAirtightnessMethod:  6,
	ActionAttachPhotoEvidence:    7,
}

// UpgradeAction is a concrete, time-estimated step that would raise a
// room's confidence.
type UpgradeAction struct {
	ID               string
	Type             ActionType
	Label            string
	Reason           string
	EstimatedSeconds int
	TargetFlags      []RiskFlag
	Priority         int
}

type actionTemplate struct {
	kind     ActionType
	label    string
	seconds  int
	priority int
}

var (
	tplIdentifyExternalWalls = actionTemplate{ActionIdentifyExternalWalls, "Scan room and identify external walls", 120, PriorityGeometry}
	tplScanGeometry          = actionTemplate{ActionScanGeometry, "Scan room geometry", 90, PriorityGeometry}
	tplConfirmWallType       = actionTemplate{ActionConfirmWallType, "Confirm wall construction type", 30, PriorityWallType}
	tplConfirmInsulation     = actionTemplate{ActionConfirmInsulation, "Confirm insulation status", 45, PriorityInsulation}
	tplConfirmGlazing        = actionTemplate{ActionConfirmGlazing, "Confirm glazing type", 30, PriorityGlazing}
	tplSetUnheatedTemp       = actionTemplate{ActionSetUnheatedTemperature, "Set unheated space temperature model", 20, PriorityUnheatedModel}
	tplSetAirtightness       = actionTemplate{ActionSetAirtightnessMethod, "Set airtightness method", 60, PriorityAirtightness}
	tplAttachPhoto           = actionTemplate{ActionAttachPhotoEvidence, "Attach photo evidence", 15, PhotoEvidencePriority}
)

// UpgradeActions maps a room's risk flags to a prioritized list of actions.
// The photo-evidence action is always present and always last.
func UpgradeActions(roomID string, flags []RiskFlag, surfaces []Surface) []UpgradeAction {
	own := SurfacesForRoom(roomID, surfaces)
	actions := make([]UpgradeAction, 0, len(flags)+2)

	for _, flag := range normalizeFlags(flags) {
		switch flag {
		case FlagMissingExternalWalls:
			actions = append(actions, build(roomID, tplIdentifyExternalWalls, flag,
				"No external walls recorded; heat loss through the envelope is unknown"))
		case FlagGeometryAssumed:
			actions = append(actions, build(roomID, tplScanGeometry, flag,
				"Room dimensions are assumed; a scan fixes floor area and volume"))
		case FlagWallConstructionAssumed:
			n := countAssumedConstruction(own)
			actions = append(actions,
				build(roomID, tplConfirmWallType, flag,
					assumedConstructionReason(n)),
				build(roomID, tplConfirmInsulation, flag,
					fmt.Sprintf("Insulation status of %s is unconfirmed", lowerWallCount(n))),
			)
		case FlagGlazingAssumed:
			actions = append(actions, build(roomID, tplConfirmGlazing, flag,
				"Glazing U-value is inferred from the wall survey"))
		case FlagUnheatedAdjacentModel:
			n := countClass(own, SurfaceUnheatedAdjacent)
			actions = append(actions, build(roomID, tplSetUnheatedTemp, flag,
				fmt.Sprintf("%d surface(s) border an unheated space at a default temperature", n)))
		case FlagACHAssumed:
			actions = append(actions, build(roomID, tplSetAirtightness, flag,
				"Air change rate is a default; ventilation loss may be off"))
		}
	}

	actions = append(actions, build(roomID, tplAttachPhoto, "",
		fmt.Sprintf(photoEvidenceReasonFormat, roomID)))

	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Priority != actions[j].Priority {
			return actions[i].Priority < actions[j].Priority
		}
		return actionOrder[actions[i].Type] < actionOrder[actions[j].Type]
	})
	return actions
}

// TopPriorityAction returns the most urgent non-photo action, falling back
// to the photo action. It returns nil only for an empty list.
func TopPriorityAction(actions []UpgradeAction) *UpgradeAction {
	var photo *UpgradeAction
	for i := range actions {
		if actions[i].Type == ActionAttachPhotoEvidence {
			if photo == nil {
				photo = &actions[i]
			}
			continue
		}
		return &actions[i]
	}
	return photo
}

// NextBestActionMessage summarizes what to do next for a room.
func NextBestActionMessage(flags []RiskFlag, actions []UpgradeAction) string {
	if len(flags) == 0 {
		return noUrgentActionMessage
	}
	top := TopPriorityAction(actions)
	if top == nil {
		return noUrgentActionMessage
	}
	return top.Reason
}

func build(roomID string, tpl actionTemplate, flag RiskFlag, reason string) UpgradeAction {
	targets := []RiskFlag{}
	if flag != "" {
		targets = append(targets, flag)
	}
	return UpgradeAction{
		ID:               roomID + ":" + string(tpl.kind),
		Type:             tpl.kind,
		Label:            tpl.label,
		Reason:           reason,
		EstimatedSeconds: tpl.seconds,
		TargetFlags:      targets,
		Priority:         tpl.priority,
	}
}

func countAssumedConstruction(surfaces []Surface) int {
	n := 0
	for _, s := range surfaces {
		switch s.Classification {
		case SurfaceExternal:
			if constructionAssumed(s) {
				n++
			}
		case SurfacePartyWall, SurfaceUnheatedAdjacent, SurfaceInternal:
		default:
			n++
		}
	}
	return n
}

func countClass(surfaces []Surface, class SurfaceClass) int {
	n := 0
	for _, s := range surfaces {
		if s.Classification == class {
			n++
		}
	}
	return n
}

func assumedConstructionReason(n int) string {
	switch n {
	case 0:
		return "External walls use an assumed construction type"
	case 1:
		return "1 external wall uses an assumed construction type"
	default:
		return fmt.Sprintf("%d external walls use an assumed construction type", n)
	}
}

func lowerWallCount(n int) string {
	switch n {
	case 0:
		return "the external walls"
	case 1:
		return "1 external wall"
	default:
		return fmt.Sprintf("%d external walls", n)
	}
}
