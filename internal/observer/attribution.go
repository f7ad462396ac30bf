package observer

import (
	"strings"

	"ctxstrat/internal/events"
	"ctxstrat/internal/strategy"
)

// SessionLabels infers the (model, taskClass) bucket labels for one
// session's events.
//
// The scan runs newest-first with an independent "resolved" flag per
// label, stopping as soon as both are found: the most recent cost_update
// and skill_activated records are assumed to describe the session's
// steady state. Events without an object payload never participate.
// Unresolved labels fall back to the sentinel values.
func SessionLabels(evts []events.Event) (model, taskClass string) {
	model = strategy.UnknownModel
	taskClass = strategy.NoneTaskClass

	for i := len(evts) - 1; i >= 0; i-- {
		ev := evts[i]
		if ev.Payload == nil {
			continue
		}
		if model == strategy.UnknownModel && ev.Type == events.TypeCostUpdate {
			if label := strings.TrimSpace(ev.String("model")); label != "" {
				model = label
			}
		}
		if taskClass == strategy.NoneTaskClass && ev.Type == events.TypeSkillActivated {
			if label := strings.TrimSpace(ev.String("skillName")); label != "" {
				taskClass = label
			}
		}
		if model != strategy.UnknownModel && taskClass != strategy.NoneTaskClass {
			break
		}
	}
	return model, taskClass
}
