package emit

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/vk/pipedef/internal/pipeline"
	"github.com/vk/pipedef/internal/refid"
)

// kotlinDSLVersion is the settings version written to settings.kts.
const kotlinDSLVersion = "2024.03"

const kotlinTemplate = `import jetbrains.buildServer.configs.kotlin.*
import jetbrains.buildServer.configs.kotlin.buildFeatures.PullRequests
import jetbrains.buildServer.configs.kotlin.buildFeatures.commitStatusPublisher
import jetbrains.buildServer.configs.kotlin.buildFeatures.pullRequests
import jetbrains.buildServer.configs.kotlin.buildSteps.dockerCommand
import jetbrains.buildServer.configs.kotlin.buildSteps.dockerCompose
import jetbrains.buildServer.configs.kotlin.buildSteps.script
import jetbrains.buildServer.configs.kotlin.vcs.GitVcsRoot

version = {{kt .DSLVersion}}
{{- with .Doc.Project}}

// Project {{comment .ID}}{{if .Name}} ({{comment .Name}}){{end}}
{{- end}}

project {
{{- range .Doc.VcsRoots}}
    vcsRoot(VcsRoots.{{ident .ID}})
{{- end}}
{{- range .Doc.BuildTypes}}
    buildType(BuildTypes.{{ident .ID}})
{{- end}}
}

object VcsRoots {
{{- range .Doc.VcsRoots}}
    object {{ident .ID}} : GitVcsRoot({
        name = {{kt .Name}}
        url = {{kt .URL}}
{{- if .Branch}}
        branch = {{kt .Branch}}
{{- end}}
{{- if .BranchSpec}}
        branchSpec = {{lines .BranchSpec}}
{{- end}}
    })
{{- end}}
}

object BuildTypes {
{{- range $i, $bt := .Doc.BuildTypes}}
{{- if $i}}
{{end}}
{{template "buildType" $bt}}
{{- end}}
}
{{define "buildType" -}}
    object {{ident .ID}} : BuildType({
        name = {{kt .Name}}
{{- if .Description}}
        description = {{kt .Description}}
{{- end}}
{{- if .ArtifactRules}}
        artifactRules = {{lines .ArtifactRules}}
{{- end}}
{{- if .Vcs}}

        vcs {
{{- range .Vcs}}
            root(VcsRoots.{{ident .}})
{{- end}}
        }
{{- end}}
{{- if .Steps}}

        steps {
{{- range .Steps}}
{{- if eq .Type "script"}}
            script {
{{- if .Name}}
                name = {{kt .Name}}
{{- end}}
                scriptContent = {{kt .ScriptContent}}
            }
{{- else if eq .Type "docker_compose"}}
            dockerCompose {
{{- if .Name}}
                name = {{kt .Name}}
{{- end}}
                file = {{kt .File}}
            }
{{- else if eq .Type "docker_command"}}
            dockerCommand {
{{- if .Name}}
                name = {{kt .Name}}
{{- end}}
                commandType = other {
                    subCommand = {{kt .SubCommand}}
                }
            }
{{- end}}
{{- end}}
        }
{{- end}}
{{- if .Requirements}}

        requirements {
{{- range .Requirements}}
            {{requirement .}}
{{- end}}
        }
{{- end}}
{{- if .Features}}

        features {
{{- range .Features}}
{{- if eq .Type "pull_requests"}}
            pullRequests {
                vcsRootExtId = "${VcsRoots.{{ident .VcsRoot}}.id}"
                provider = {{provider .Provider}} {
{{- if .AuthToken}}
                    authType = token {
                        token = {{kt .AuthToken}}
                    }
{{- end}}
{{- if .AuthorRoleFilter}}
                    filterAuthorRole = PullRequests.GitHubRoleFilter.{{.AuthorRoleFilter}}
{{- end}}
                }
            }
{{- else if eq .Type "commit_status_publisher"}}
            commitStatusPublisher {
                vcsRootExtId = "${VcsRoots.{{ident .VcsRoot}}.id}"
                publisher = {{provider .Provider}} {
{{- if .AuthToken}}
{{- if eq .Provider "gitlab"}}
                    accessToken = {{kt .AuthToken}}
{{- else}}
                    authType = personalToken {
                        token = {{kt .AuthToken}}
                    }
{{- end}}
{{- end}}
                }
            }
{{- end}}
{{- end}}
        }
{{- end}}
{{- if .Dependencies}}

        dependencies {
{{- range .Dependencies}}
            dependency({{target .BuildType}}) {
{{- if .Artifacts}}
                artifacts {
                    cleanDestination = {{.Artifacts.CleanDestination}}
                    artifactRules = {{lines .Artifacts.Rules}}
                }
{{- else}}
                snapshot {
                }
{{- end}}
            }
{{- end}}
        }
{{- end}}
    })
{{- end}}`

var kotlinTmpl = template.Must(template.New("settings.kts").Funcs(template.FuncMap{
	"kt":          kotlinString,
	"comment":     kotlinComment,
	"lines":       func(v []string) string { return kotlinString(strings.Join(v, "\n")) },
	"ident":       kotlinIdent,
	"requirement": kotlinRequirement,
	"provider":    kotlinProvider,
	"target":      kotlinTarget,
}).Parse(kotlinTemplate))

func renderKotlin(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		DSLVersion string
		Doc        *Document
	}{kotlinDSLVersion, doc}
	if err := kotlinTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// kotlinString quotes s as a Kotlin string literal. `$` is escaped so that
// TeamCity parameters and shell variables are never interpolated.
func kotlinString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '$':
			sb.WriteString(`\$`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// kotlinComment escapes line breaks so that s stays inside a line comment.
func kotlinComment(s string) string {
	return commentEscaper.Replace(s)
}

var commentEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

var kotlinKeywords = map[string]struct{}{
	"as": {}, "break": {}, "class": {}, "continue": {}, "do": {}, "else": {},
	"false": {}, "for": {}, "fun": {}, "if": {}, "in": {}, "interface": {},
	"is": {}, "null": {}, "object": {}, "package": {}, "return": {}, "super": {},
	"this": {}, "throw": {}, "true": {}, "try": {}, "typealias": {}, "typeof": {},
	"val": {}, "var": {}, "when": {}, "while": {},
}

// kotlinIdent turns an id into a Kotlin identifier, quoting hard keywords.
func kotlinIdent(id string) (string, error) {
	if err := refid.ValidateID(id); err != nil {
		return "", err
	}
	if _, ok := kotlinKeywords[id]; ok {
		return "`" + id + "`", nil
	}
	return id, nil
}

// kotlinRequirement renders a requirement as a call such as
// `contains("docker.server.osType", "linux")`.
func kotlinRequirement(r RequirementDoc) (string, error) {
	kind, err := pipeline.ParseRequirementKind(r.Kind)
	if err != nil {
		return "", err
	}
	parts := strings.Split(string(kind), "-")
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	fn := strings.Join(parts, "")

	switch kind {
	case pipeline.RequireExists, pipeline.RequireDoesNotExist:
		return fmt.Sprintf("%s(%s)", fn, kotlinString(r.Property)), nil
	}
	return fmt.Sprintf("%s(%s, %s)", fn, kotlinString(r.Property), kotlinString(r.Value)), nil
}

func kotlinProvider(p string) (string, error) {
	switch pipeline.ProviderType(p) {
	case pipeline.ProviderGitHub, pipeline.ProviderGitLab:
		return p, nil
	}
	return "", fmt.Errorf("unsupported provider %q", p)
}

func kotlinTarget(ref BuildTypeRefDoc) (string, error) {
	if ref.Absolute {
		if err := refid.ValidateID(ref.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("AbsoluteId(%s)", kotlinString(ref.ID)), nil
	}
	ident, err := kotlinIdent(ref.ID)
	if err != nil {
		return "", err
	}
	return "BuildTypes." + ident, nil
}
