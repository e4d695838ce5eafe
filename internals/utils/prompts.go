package utils

import (
	"errors"

	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt
var ErrAborted = errors.New("aborted")

// StringPrompt runs prompt and returns the entered value
func StringPrompt(prompt *promptui.Prompt) (string, error) {
	res, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return res, nil
}

// UsernamePrompt asks for a name, validating while the user types
func UsernamePrompt(validate func(string) error) (string, error) {
	return StringPrompt(&promptui.Prompt{
		Label:    "Offline player name",
		Validate: validate,
	})
}

// Confirm asks a yes/no question
func Confirm(question string, defaultYes bool) (bool, error) {
	value := confirmation.No
	if defaultYes {
		value = confirmation.Yes
	}
	ok, err := confirmation.New(question, value).RunPrompt()
	if err != nil {
		return false, ErrAborted
	}
	return ok, nil
}
