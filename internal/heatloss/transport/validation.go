package transport

import (
	"fmt"

	"heatsurvey_backend/internal/heatloss/confidence"
	"heatsurvey_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// Custom validation tags.
const (
	TagSourceType   = "source_type"
	TagSurfaceClass = "surface_class"
	TagFlowTemp     = "flow_temp"
)

// RegisterValidators adds the heat-loss tags to val.
func RegisterValidators(val *validator.Validator) error {
	rules := map[string]playground.Func{
		TagSourceType: func(fl playground.FieldLevel) bool {
			return confidence.ParseSourceType(fl.Field().String()).IsKnown()
		},
		TagSurfaceClass: func(fl playground.FieldLevel) bool {
			return confidence.ParseSurfaceClass(fl.Field().String()) != confidence.SurfaceUnknown
		},
		TagFlowTemp: func(fl playground.FieldLevel) bool {
			return isTrackedFlowTemp(confidence.FlowTemp(fl.Field().Int()))
		},
	}
	for tag, fn := range rules {
		if err := val.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// ValidateStrict rejects provenance and classification tokens outside the
// closed sets and adequacy at untracked flow temperatures. Without strict
// mode the engine scores unknown tokens as assumptions and drops untracked
// setpoints.
func ValidateStrict(val *validator.Validator, req EvaluateRequest) map[string]string {
	problems := make(map[string]string)
	check := func(field string, value any, tag string) {
		if err := val.Var(value, tag); err != nil {
			problems[field] = tag
		}
	}
	for i, r := range req.Rooms {
		check(fmt.Sprintf("rooms[%d].geometrySource", i), r.GeometrySource, TagSourceType)
		if r.AirChangeSource != "" {
			check(fmt.Sprintf("rooms[%d].airChangeSource", i), r.AirChangeSource, TagSourceType)
		}
	}
	for i, s := range req.Surfaces {
		check(fmt.Sprintf("surfaces[%d].source", i), s.Source, TagSourceType)
		check(fmt.Sprintf("surfaces[%d].classification", i), s.Classification, TagSurfaceClass)
	}
	for i, r := range req.Results {
		for j, a := range r.Adequacy {
			check(fmt.Sprintf("results[%d].adequacy[%d].flowTempC", i, j), a.FlowTempC, TagFlowTemp)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}
