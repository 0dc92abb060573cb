package emit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipedef/internal/hcl"
	"github.com/vk/pipedef/internal/pipeline"
	"github.com/vk/pipedef/internal/refid"
	"gopkg.in/yaml.v3"
)

func kotlinLangRoot(t *testing.T) *pipeline.VcsRoot {
	t.Helper()
	root, err := pipeline.NewVcsRoot(pipeline.VcsRootSpec{
		ID:     "KotlinLangOrg",
		URL:    "https://github.com/JetBrains/kotlin-web-site.git",
		Branch: "refs/heads/master",
	})
	require.NoError(t, err)
	return root
}

func e2eDefinition(t *testing.T) *pipeline.BuildDefinition {
	t.Helper()
	pr, err := pipeline.NewPullRequests("KotlinLangOrg",
		pipeline.GitHub(refid.Placeholder{Name: "github.oauth"}, pipeline.RoleMemberOrCollaborator))
	require.NoError(t, err)

	def, err := pipeline.NewBuildDefinition("E2ETests", "E2E tests").
		VcsRoot("KotlinLangOrg").
		Step(
			pipeline.NewComposeStep("", "docker-compose-e2e-statics.yml"),
			pipeline.NewScriptStep("", "docker-compose exec playwright yarn run test:visual:ci"),
			pipeline.NewScriptStep("", "docker-compose down"),
		).
		Require(
			pipeline.Exists("docker.server.version"),
			pipeline.Contains("docker.server.osType", "linux"),
		).
		Feature(pr).
		Build()
	require.NoError(t, err)
	return def
}

func stdlibDefinition(t *testing.T) *pipeline.BuildDefinition {
	t.Helper()
	def, err := pipeline.NewBuildDefinition("BuildStdlibApiReference", "Stdlib Api reference").
		ArtifactRules("latest-version.zip").
		VcsRoot("KotlinLangOrg").
		DependsOn(pipeline.NewDependency(
			refid.Absolute("Kotlin_KotlinRelease_1920_LibraryReferenceLatestDocs"),
			&pipeline.ArtifactDependency{CleanDestination: true, Rules: []string{"latest-version.zip"}},
		)).
		Build()
	require.NoError(t, err)
	return def
}

func kotlinLangInput(t *testing.T) Input {
	t.Helper()
	return Input{
		Project:     pipeline.Project{ID: "KotlinLangOrg", Name: "kotlinlang.org", Version: "0.1.0"},
		VcsRoots:    []*pipeline.VcsRoot{kotlinLangRoot(t)},
		Definitions: []*pipeline.BuildDefinition{stdlibDefinition(t), e2eDefinition(t)},
	}
}

func TestNewDocument_KotlinLang(t *testing.T) {
	in := kotlinLangInput(t)

	doc, err := NewDocument(in.Project, in.VcsRoots, in.Definitions)
	require.NoError(t, err)

	want := &Document{
		Version: "0.1.0",
		Project: &ProjectDoc{ID: "KotlinLangOrg", Name: "kotlinlang.org", Version: "0.1.0"},
		VcsRoots: []VcsRootDoc{{
			ID:     "KotlinLangOrg",
			Name:   "KotlinLangOrg",
			URL:    "https://github.com/JetBrains/kotlin-web-site.git",
			Branch: "refs/heads/master",
		}},
		BuildTypes: []BuildTypeDoc{
			{
				ID:            "BuildStdlibApiReference",
				Name:          "Stdlib Api reference",
				ArtifactRules: []string{"latest-version.zip"},
				Vcs:           []string{"KotlinLangOrg"},
				Steps:         []StepDoc{},
				Dependencies: []DependencyDoc{{
					BuildType: BuildTypeRefDoc{ID: "Kotlin_KotlinRelease_1920_LibraryReferenceLatestDocs", Absolute: true},
					Artifacts: &ArtifactsDoc{CleanDestination: true, Rules: []string{"latest-version.zip"}},
				}},
			},
			{
				ID:   "E2ETests",
				Name: "E2E tests",
				Vcs:  []string{"KotlinLangOrg"},
				Steps: []StepDoc{
					{Type: "docker_compose", File: "docker-compose-e2e-statics.yml"},
					{Type: "script", ScriptContent: "docker-compose exec playwright yarn run test:visual:ci"},
					{Type: "script", ScriptContent: "docker-compose down"},
				},
				Requirements: []RequirementDoc{
					{Kind: "exists", Property: "docker.server.version"},
					{Kind: "contains", Property: "docker.server.osType", Value: "linux"},
				},
				Features: []FeatureDoc{{
					Type:             "pull_requests",
					VcsRoot:          "KotlinLangOrg",
					Provider:         "github",
					AuthToken:        "%github.oauth%",
					AuthorRoleFilter: "MEMBER_OR_COLLABORATOR",
				}},
			},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_YAMLDecodesToDocument(t *testing.T) {
	in := kotlinLangInput(t)
	want, err := NewDocument(in.Project, in.VcsRoots, in.Definitions)
	require.NoError(t, err)

	out, err := Emit(context.Background(), in, FormatYAML)
	require.NoError(t, err)

	var got Document
	require.NoError(t, yaml.Unmarshal(out, &got))
	if diff := cmp.Diff(want, &got); diff != "" {
		t.Errorf("decoded YAML mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_StepOrder(t *testing.T) {
	in := Input{Definitions: []*pipeline.BuildDefinition{e2eDefinition(t)}}

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			out, err := Emit(context.Background(), in, format)
			require.NoError(t, err)

			s := string(out)
			compose := strings.Index(s, "docker-compose-e2e-statics.yml")
			run := strings.Index(s, "test:visual:ci")
			down := strings.Index(s, "docker-compose down")
			require.True(t, compose >= 0 && run >= 0 && down >= 0, "missing step in output:\n%s", s)
			assert.Less(t, compose, run)
			assert.Less(t, run, down)
		})
	}
}

func TestEmit_Deterministic(t *testing.T) {
	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			first, err := Emit(context.Background(), kotlinLangInput(t), format)
			require.NoError(t, err)
			second, err := Emit(context.Background(), kotlinLangInput(t), format)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, Digest(first), Digest(second))
		})
	}
}

func TestEmit_EmptyDocument(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		out, err := Emit(context.Background(), Input{}, FormatJSON)
		require.NoError(t, err)
		want := "{\n  \"version\": \"0.1.0\",\n  \"vcsRoots\": [],\n  \"buildTypes\": []\n}\n"
		assert.Equal(t, want, string(out))
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := Emit(context.Background(), Input{}, FormatYAML)
		require.NoError(t, err)
		assert.Contains(t, string(out), "buildTypes: []")

		var got Document
		require.NoError(t, yaml.Unmarshal(out, &got))
		assert.Empty(t, got.BuildTypes)
		assert.Nil(t, got.Project)
	})

	t.Run("hcl", func(t *testing.T) {
		out, err := Emit(context.Background(), Input{}, FormatHCL)
		require.NoError(t, err)
		assert.Empty(t, strings.TrimSpace(string(out)))
	})

	t.Run("kotlin", func(t *testing.T) {
		out, err := Emit(context.Background(), Input{}, FormatKotlin)
		require.NoError(t, err)
		assert.Contains(t, string(out), "object BuildTypes {\n}")
	})
}

func TestEmit_HCLLoadsBack(t *testing.T) {
	in := kotlinLangInput(t)
	out, err := Emit(context.Background(), in, FormatHCL)
	require.NoError(t, err)
	assert.Contains(t, string(out), `build_type = absolute("Kotlin_KotlinRelease_1920_LibraryReferenceLatestDocs")`)

	path := filepath.Join(t.TempDir(), "emitted.hcl")
	require.NoError(t, os.WriteFile(path, out, 0o644))

	model, err := hcl.NewLoader().Load(context.Background(), path)
	require.NoError(t, err, "emitted HCL:\n%s", out)

	want, err := Emit(context.Background(), in, FormatYAML)
	require.NoError(t, err)
	got, err := Emit(context.Background(), Input{
		Project:     model.Project,
		VcsRoots:    model.VcsRoots,
		Definitions: model.BuildTypes,
	}, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestEmit_Kotlin(t *testing.T) {
	out, err := Emit(context.Background(), kotlinLangInput(t), FormatKotlin)
	require.NoError(t, err)
	s := string(out)

	for _, want := range []string{
		`version = "2024.03"`,
		`// Project KotlinLangOrg (kotlinlang.org)`,
		`    buildType(BuildTypes.E2ETests)`,
		`    object KotlinLangOrg : GitVcsRoot({`,
		`        artifactRules = "latest-version.zip"`,
		`            dependency(AbsoluteId("Kotlin_KotlinRelease_1920_LibraryReferenceLatestDocs")) {`,
		`                    cleanDestination = true`,
		`            root(VcsRoots.KotlinLangOrg)`,
		`                file = "docker-compose-e2e-statics.yml"`,
		`                scriptContent = "docker-compose down"`,
		`            exists("docker.server.version")`,
		`            contains("docker.server.osType", "linux")`,
		`                vcsRootExtId = "${VcsRoots.KotlinLangOrg.id}"`,
		`                        token = "%github.oauth%"`,
		`                    filterAuthorRole = PullRequests.GitHubRoleFilter.MEMBER_OR_COLLABORATOR`,
	} {
		assert.Contains(t, s, want)
	}
}

func TestEmit_KotlinMultiLineProjectName(t *testing.T) {
	in := Input{Project: pipeline.Project{ID: "P", Name: "x\nproject { buildType(Evil) }\r"}}

	out, err := Emit(context.Background(), in, FormatKotlin)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `// Project P (x\nproject { buildType(Evil) }\r)`)
	for _, line := range strings.Split(s, "\n") {
		assert.NotEqual(t, "project { buildType(Evil) })", line)
	}
	assert.Equal(t, 1, strings.Count(s, "\nproject {"))
}

func TestEmit_KotlinCommitStatusPublisher(t *testing.T) {
	testCases := []struct {
		provider pipeline.ProviderType
		want     string
		notWant  string
	}{
		{
			provider: pipeline.ProviderGitHub,
			want:     "                publisher = github {\n                    authType = personalToken {\n                        token = \"%vcs.token%\"",
			notWant:  "accessToken",
		},
		{
			provider: pipeline.ProviderGitLab,
			want:     "                publisher = gitlab {\n                    accessToken = \"%vcs.token%\"\n                }",
			notWant:  "personalToken",
		},
	}

	for _, tc := range testCases {
		t.Run(string(tc.provider), func(t *testing.T) {
			publisher, err := pipeline.NewCommitStatusPublisher("KotlinLangOrg", tc.provider, refid.Placeholder{Name: "vcs.token"})
			require.NoError(t, err)
			def, err := pipeline.NewBuildDefinition("Publish", "Publish").
				VcsRoot("KotlinLangOrg").
				Step(pipeline.NewScriptStep("", "make")).
				Feature(publisher).
				Build()
			require.NoError(t, err)

			out, err := Emit(context.Background(), Input{
				VcsRoots:    []*pipeline.VcsRoot{kotlinLangRoot(t)},
				Definitions: []*pipeline.BuildDefinition{def},
			}, FormatKotlin)
			require.NoError(t, err)

			assert.Contains(t, string(out), tc.want)
			assert.NotContains(t, string(out), tc.notWant)
		})
	}
}

func TestKotlinString(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "plain", want: `"plain"`},
		{in: `say "hi"`, want: `"say \"hi\""`},
		{in: `C:\path`, want: `"C:\\path"`},
		{in: "echo $HOME", want: `"echo \$HOME"`},
		{in: "a\nb", want: `"a\nb"`},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, kotlinString(tc.in))
	}
}

func TestKotlinRequirement(t *testing.T) {
	got, err := kotlinRequirement(RequirementDoc{Kind: "does-not-contain", Property: "os", Value: "win"})
	require.NoError(t, err)
	assert.Equal(t, `doesNotContain("os", "win")`, got)

	got, err = kotlinRequirement(RequirementDoc{Kind: "does-not-exist", Property: "env.CI"})
	require.NoError(t, err)
	assert.Equal(t, `doesNotExist("env.CI")`, got)
}

func TestEmit_SerializationErrors(t *testing.T) {
	badToken, err := pipeline.NewPullRequests("KotlinLangOrg", pipeline.GitHub(refid.Placeholder{Name: "not a placeholder"}, ""))
	require.NoError(t, err)
	withBadToken, err := pipeline.NewBuildDefinition("A", "A").Feature(badToken).Build()
	require.NoError(t, err)

	testCases := []struct {
		name      string
		defs      []*pipeline.BuildDefinition
		wantID    string
		wantField string
	}{
		{name: "empty id", defs: []*pipeline.BuildDefinition{{}}, wantField: "id"},
		{name: "nil definition", defs: []*pipeline.BuildDefinition{nil}, wantField: "build_type"},
		{name: "literal token", defs: []*pipeline.BuildDefinition{withBadToken}, wantID: "A", wantField: "features[0]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Emit(context.Background(), Input{Definitions: tc.defs}, FormatYAML)
			require.Error(t, err)
			assert.Nil(t, out)

			var serErr *pipeline.SerializationError
			require.True(t, errors.As(err, &serErr), "expected SerializationError, got %T: %v", err, err)
			assert.Equal(t, tc.wantID, serErr.ID)
			assert.Equal(t, tc.wantField, serErr.Field)
		})
	}
}

func TestNewStepDoc_EmptyPayload(t *testing.T) {
	for _, step := range []pipeline.Step{pipeline.ScriptStep{}, pipeline.ComposeStep{}, pipeline.DockerCommandStep{}, nil} {
		_, err := newStepDoc(step)
		assert.Error(t, err)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("KOTLIN")
	require.NoError(t, err)
	assert.Equal(t, FormatKotlin, f)

	_, err = ParseFormat("toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml, json, hcl, kotlin")
}

func TestDigest(t *testing.T) {
	d := Digest([]byte("buildTypes: []\n"))
	require.NoError(t, d.Validate())
	assert.Equal(t, "sha256", d.Algorithm().String())
}
