package usecase

import (
	pronunciationin "vocabhub/internal/modules/pronunciation/port/in"
	sessionin "vocabhub/internal/modules/session/port/in"
	sessionout "vocabhub/internal/modules/session/port/out"
)

// HostFactory builds hosts over fixed gateways and collaborators.
type HostFactory struct {
	Study      sessionout.StudyGateway
	Assessment sessionout.AssessmentGateway
	Deps       Deps
	Options    StudyOptions
	// NewPronunciation, when set, gives every host its own resolver so one
	// host's playback never blocks another's.
	NewPronunciation func() pronunciationin.Usecase
}

func (f HostFactory) NewStudy() sessionin.StudyHost {
	return NewStudyHost(f.Study, f.deps(), f.Options)
}

func (f HostFactory) NewAssessment() sessionin.AssessmentHost {
	return NewAssessmentHost(f.Assessment, f.deps())
}

func (f HostFactory) deps() Deps {
	deps := f.Deps
	if f.NewPronunciation != nil {
		deps.Pronunciation = f.NewPronunciation()
	}
	return deps
}

var _ sessionin.Hosts = HostFactory{}
