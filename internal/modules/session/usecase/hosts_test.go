package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pronunciationin "vocabhub/internal/modules/pronunciation/port/in"
	"vocabhub/internal/modules/session/dto"
	"vocabhub/internal/modules/session/usecase"
	"vocabhub/internal/platform/identity"
)

func TestHostFactoryGivesEachHostItsOwnPronunciation(t *testing.T) {
	var built []*fakePronunciation
	factory := usecase.HostFactory{
		Study:      &studyGateway{entries: studyEntries()},
		Assessment: &assessmentGateway{entries: assessmentEntries()},
		Deps: usecase.Deps{
			Identity:   identity.NewStatic("tok"),
			Membership: &fakeMembership{},
			Clock:      newManualClock(),
		},
		NewPronunciation: func() pronunciationin.Usecase {
			p := &fakePronunciation{}
			built = append(built, p)
			return p
		},
	}
	ctx := context.Background()

	study := factory.NewStudy()
	defer study.Unmount()
	assessment := factory.NewAssessment()
	defer assessment.Unmount()
	require.Len(t, built, 2)

	require.NoError(t, study.Start(ctx, dto.StudyStartInput{}))
	require.NoError(t, assessment.Start(ctx, dto.AssessmentStartInput{}))
	require.NoError(t, study.Pronounce(ctx))
	require.NoError(t, assessment.Pronounce(ctx))

	assert.Equal(t, []string{"apple"}, built[0].labels)
	assert.Equal(t, []string{"cat"}, built[1].labels)
}
