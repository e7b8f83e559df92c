package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// PromptForCompany asks for the company to research.
func PromptForCompany() (string, error) {
	var company string
	prompt := &survey.Input{
		Message: "Enter Company Name:",
		Help:    "The name is looked up as a Wikipedia page title, e.g. Tesla, Inc.",
	}

	err := survey.AskOne(prompt, &company, survey.WithValidator(func(val interface{}) error {
		if str, _ := val.(string); strings.TrimSpace(str) == "" {
			return fmt.Errorf("please enter a valid company name")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return company, nil
}
