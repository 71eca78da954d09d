package prompt

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
)

// MaxYears is the longest selectable forecast period.
const MaxYears = 4

// AskFunc matches survey.AskOne.
type AskFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

// Prompter asks the interactive questions of a run.
type Prompter struct {
	Ask AskFunc
}

// New returns a Prompter backed by the terminal.
func New() *Prompter {
	return &Prompter{Ask: survey.AskOne}
}

// Ticker asks the user to pick one of tickers.
func (p *Prompter) Ticker(tickers []string) (string, error) {
	if len(tickers) == 0 {
		return "", fmt.Errorf("no tickers configured")
	}
	var selected string
	prompt := &survey.Select{
		Message: "Select dataset for prediction:",
		Options: tickers,
		Default: tickers[0],
	}
	if err := p.Ask(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// Years asks for the forecast period, 1 to MaxYears.
func (p *Prompter) Years(def int) (int, error) {
	options := make([]string, MaxYears)
	for i := range options {
		options[i] = strconv.Itoa(i + 1)
	}
	if def < 1 || def > MaxYears {
		def = 1
	}
	var selected string
	prompt := &survey.Select{
		Message: "Years of prediction:",
		Options: options,
		Default: options[def-1],
		Help:    "The forecast horizon is this many years of calendar days past the last observation.",
	}
	if err := p.Ask(prompt, &selected); err != nil {
		return 0, err
	}
	years, err := strconv.Atoi(selected)
	if err != nil {
		return 0, fmt.Errorf("invalid years %q: %w", selected, err)
	}
	return years, nil
}
