package pipeline

import (
	"errors"
	"strings"
)

// StepKind identifies the variant of a Step.
type StepKind string

const (
	StepScript        StepKind = "script"
	StepDockerCompose StepKind = "docker_compose"
	StepDockerCommand StepKind = "docker_command"
)

// Step is one entry of a build definition's ordered step list. The interface
// is sealed: the only implementations are ScriptStep, ComposeStep and
// DockerCommandStep.
type Step interface {
	Kind() StepKind
	// Name is the optional display name of the step.
	Name() string
	validate() error
}

// ScriptStep runs a shell script on the agent.
type ScriptStep struct {
	name    string
	content string
}

// NewScriptStep returns a script step with the given script body.
func NewScriptStep(name, content string) ScriptStep {
	return ScriptStep{name: name, content: content}
}

func (s ScriptStep) Kind() StepKind  { return StepScript }
func (s ScriptStep) Name() string    { return s.name }
func (s ScriptStep) Content() string { return s.content }

func (s ScriptStep) validate() error {
	if strings.TrimSpace(s.content) == "" {
		return errors.New("script step requires non-empty content")
	}
	return nil
}

// ComposeStep brings up the services of a docker-compose file.
type ComposeStep struct {
	name string
	file string
}

// NewComposeStep returns a docker-compose step for the given file path.
func NewComposeStep(name, file string) ComposeStep {
	return ComposeStep{name: name, file: file}
}

func (s ComposeStep) Kind() StepKind { return StepDockerCompose }
func (s ComposeStep) Name() string   { return s.name }
func (s ComposeStep) File() string   { return s.file }

func (s ComposeStep) validate() error {
	if strings.TrimSpace(s.file) == "" {
		return errors.New("docker_compose step requires a file")
	}
	return nil
}

// DockerCommandStep runs an arbitrary docker sub-command, e.g.
// `exec playwright yarn run test:visual:ci`.
type DockerCommandStep struct {
	name       string
	subCommand string
}

// NewDockerCommandStep returns a docker step running subCommand.
func NewDockerCommandStep(name, subCommand string) DockerCommandStep {
	return DockerCommandStep{name: name, subCommand: subCommand}
}

func (s DockerCommandStep) Kind() StepKind     { return StepDockerCommand }
func (s DockerCommandStep) Name() string       { return s.name }
func (s DockerCommandStep) SubCommand() string { return s.subCommand }

func (s DockerCommandStep) validate() error {
	if strings.TrimSpace(s.subCommand) == "" {
		return errors.New("docker_command step requires a sub_command")
	}
	return nil
}

// ValidateStep checks a step's payload. Emitters call it so that a value
// built outside the Builder is still rejected.
func ValidateStep(s Step) error {
	if s == nil {
		return errors.New("step is nil")
	}
	return s.validate()
}
