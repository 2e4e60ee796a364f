package app

import "github.com/AlecAivazis/survey/v2"

// Prompter asks the user for missing information.
type Prompter interface {
	// Input asks for a visible string.
	Input(message string) (string, error)

	// Password asks for a string without echoing it.
	Password(message string) (string, error)
}

// SurveyPrompter is the [Prompter] using the terminal.
type SurveyPrompter struct{}

var _ Prompter = SurveyPrompter{}

// Input implements [Prompter].
func (SurveyPrompter) Input(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message}, &answer)
	return answer, err
}

// Password implements [Prompter].
func (SurveyPrompter) Password(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Password{Message: message}, &answer)
	return answer, err
}
