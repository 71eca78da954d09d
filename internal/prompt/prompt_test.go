package prompt

import (
	"errors"
	"testing"

	"github.com/AlecAivazis/survey/v2"
)

func answer(value string, seen *survey.Prompt) AskFunc {
	return func(p survey.Prompt, response interface{}, _ ...survey.AskOpt) error {
		*seen = p
		*(response.(*string)) = value
		return nil
	}
}

func TestPrompter_Ticker(t *testing.T) {
	var seen survey.Prompt
	p := &Prompter{Ask: answer("GME", &seen)}
	got, err := p.Ticker([]string{"GOOG", "MSFT", "GME", "SONY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "GME" {
		t.Errorf("expected GME, got %s", got)
	}
	sel := seen.(*survey.Select)
	if len(sel.Options) != 4 || sel.Default != "GOOG" {
		t.Errorf("unexpected select %+v", sel)
	}
	if _, err := p.Ticker(nil); err == nil {
		t.Error("expected error for empty ticker list")
	}
}

func TestPrompter_Years(t *testing.T) {
	var seen survey.Prompt
	p := &Prompter{Ask: answer("3", &seen)}
	got, err := p.Years(9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	sel := seen.(*survey.Select)
	if len(sel.Options) != MaxYears || sel.Default != "1" {
		t.Errorf("unexpected select %+v", sel)
	}
}

func TestPrompter_Interrupted(t *testing.T) {
	p := &Prompter{Ask: func(survey.Prompt, interface{}, ...survey.AskOpt) error {
		return errors.New("interrupt")
	}}
	if _, err := p.Years(1); err == nil {
		t.Error("expected error to propagate")
	}
}
