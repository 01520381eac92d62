package pipeline

// Stage identifies a pipeline stage. Stages run in declaration order.
type Stage int

const (
	StageNone Stage = iota
	StageParse
	StageNames
	StageTypes
	StageMembers
	StageDirectives
	StageBodies
)

var stageNames = [...]string{
	StageNone:       "none",
	StageParse:      "parse",
	StageNames:      "names",
	StageTypes:      "types",
	StageMembers:    "members",
	StageDirectives: "directives",
	StageBodies:     "bodies",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Stages lists the stages in run order.
func Stages() []Stage {
	return []Stage{StageParse, StageNames, StageTypes, StageMembers, StageDirectives, StageBodies}
}
