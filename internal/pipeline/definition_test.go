package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipedef/internal/refid"
)

func e2eTests(t *testing.T) *BuildDefinition {
	t.Helper()
	pr, err := NewPullRequests("KotlinLangOrg", GitHub(refid.Placeholder{Name: "github.oauth"}, RoleMemberOrCollaborator))
	require.NoError(t, err)

	def, err := NewBuildDefinition("E2ETests", "E2E tests").
		VcsRoot("KotlinLangOrg").
		Step(
			NewComposeStep("", "docker-compose-e2e-statics.yml"),
			NewScriptStep("", "docker-compose exec playwright yarn run test:visual:ci"),
			NewScriptStep("", "docker-compose down"),
		).
		Require(Exists("docker.server.version"), Contains("docker.server.osType", "linux")).
		Feature(pr).
		Build()
	require.NoError(t, err)
	return def
}

func TestBuilder_Build(t *testing.T) {
	def := e2eTests(t)

	assert.Equal(t, "E2ETests", def.ID())
	assert.Equal(t, "E2E tests", def.Name())
	assert.Equal(t, []string{"KotlinLangOrg"}, def.VcsRoots())

	steps := def.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, StepDockerCompose, steps[0].Kind())
	assert.Equal(t, StepScript, steps[1].Kind())
	assert.Equal(t, "docker-compose down", steps[2].(ScriptStep).Content())

	require.Len(t, def.Requirements(), 2)
	assert.Equal(t, RequireContains, def.Requirements()[1].Kind())

	require.Len(t, def.Features(), 1)
	assert.Equal(t, "%github.oauth%", def.Features()[0].AuthToken().String())
}

func TestBuilder_Immutability(t *testing.T) {
	b := NewBuildDefinition("Docs", "Docs").ArtifactRules("latest-version.zip")
	def, err := b.Build()
	require.NoError(t, err)

	rules := def.ArtifactRules()
	rules[0] = "mutated"
	assert.Equal(t, []string{"latest-version.zip"}, def.ArtifactRules(), "accessors must return copies")

	b.ArtifactRules("later.zip")
	assert.Equal(t, []string{"latest-version.zip"}, def.ArtifactRules(), "builder must not alias the built value")
}

func TestBuilder_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		builder *Builder
		problem string
	}{
		{
			name:    "empty id",
			builder: NewBuildDefinition("", "Nameless"),
			problem: "identifier cannot be empty",
		},
		{
			name:    "invalid id",
			builder: NewBuildDefinition("e2e-tests", "E2E"),
			problem: "invalid identifier",
		},
		{
			name:    "empty name",
			builder: NewBuildDefinition("E2ETests", " "),
			problem: "name cannot be empty",
		},
		{
			name:    "empty script",
			builder: NewBuildDefinition("E2ETests", "E2E").Step(NewScriptStep("", "")),
			problem: "step 0: script step requires non-empty content",
		},
		{
			name:    "empty compose file",
			builder: NewBuildDefinition("E2ETests", "E2E").Step(NewComposeStep("up", "")),
			problem: "docker_compose step requires a file",
		},
		{
			name:    "requirement without value",
			builder: NewBuildDefinition("E2ETests", "E2E").Require(Contains("docker.server.osType", "")),
			problem: "value cannot be empty",
		},
		{
			name:    "self dependency",
			builder: NewBuildDefinition("E2ETests", "E2E").DependsOn(NewDependency(refid.Local("E2ETests"), nil)),
			problem: "cannot depend on itself",
		},
		{
			name:    "nil feature",
			builder: NewBuildDefinition("E2ETests", "E2E").Feature(nil),
			problem: "feature 0 is nil",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			def, err := tc.builder.Build()
			require.Error(t, err)
			assert.Nil(t, def)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Error(), tc.problem)
		})
	}
}

func TestBuilder_CollectsAllProblems(t *testing.T) {
	_, err := NewBuildDefinition("", "").Step(NewScriptStep("", "")).Build()

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Problems, 3)
}

func TestDependency_CopiesArtifacts(t *testing.T) {
	art := &ArtifactDependency{CleanDestination: true, Rules: []string{"latest-version.zip"}}
	dep := NewDependency(refid.Absolute("Kotlin_KotlinRelease_1920_LibraryReferenceLatestDocs"), art)
	art.Rules[0] = "changed"

	got := dep.Artifacts()
	require.NotNil(t, got)
	assert.True(t, got.CleanDestination)
	assert.Equal(t, []string{"latest-version.zip"}, got.Rules)
	assert.True(t, dep.Target().Absolute)

	assert.Nil(t, NewDependency(refid.Local("Other"), nil).Artifacts())
}
