package strategy

// Decision thresholds. Passthrough demands excellence on every axis;
// hybrid only asks for acceptable quality and a mostly-met floor.
const (
	passthroughMinQuality   = 0.92
	passthroughMaxFloorRate = 0.01
	passthroughMaxDropRate  = 0.08
	passthroughMaxZoneRatio = 0.02

	hybridMinQuality   = 0.88
	hybridMaxFloorRate = 0.05
)

// ChooseArm classifies a bucket summary into an operating arm. The checks
// run in order and the first match wins; managed is the unconditional
// fallback, so every input maps to exactly one arm.
func ChooseArm(b BucketSummary) Arm {
	if b.QualityProxy >= passthroughMinQuality &&
		b.FloorUnmetRate <= passthroughMaxFloorRate &&
		b.InjectionDroppedRate <= passthroughMaxDropRate &&
		b.ZoneAdaptationMoveRatio <= passthroughMaxZoneRatio {
		return ArmPassthrough
	}
	if b.QualityProxy >= hybridMinQuality && b.FloorUnmetRate <= hybridMaxFloorRate {
		return ArmHybrid
	}
	return ArmManaged
}
