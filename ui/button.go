package ui

import "html/template"

type Intent string

const (
	IntentPrimary   Intent = "primary"
	IntentSecondary Intent = "secondary"
	IntentDanger    Intent = "danger"
)

type ButtonType string

const (
	TypeButton ButtonType = "button"
	TypeSubmit ButtonType = "submit"
	TypeReset  ButtonType = "reset"
)

// ButtonConfig lists the presentation options of a Button. A Href renders a link styled as a button.
type ButtonConfig struct {
	Type       ButtonType // default: button
	Intent     Intent     // default: primary
	Href       string
	FormAction string // posts the enclosing form (or an empty one) to this URL
	Name       string
	Value      string
	Disabled   bool
}

func Button(cfg ButtonConfig, label string) (template.HTML, error) {
	if cfg.Type == "" {
		cfg.Type = TypeButton
	}
	if cfg.Intent == "" {
		cfg.Intent = IntentPrimary
	}
	return render("button", struct {
		ButtonConfig
		Label string
		Class string
	}{ButtonConfig: cfg, Label: label, Class: buttonClass(cfg.Intent)})
}

func buttonClass(intent Intent) string {
	base := "px-4 py-3 rounded my-4 inline-block w-fit"
	switch intent {
	case IntentDanger:
		return base + " bg-red-600 hover:bg-red-700 text-white"
	case IntentSecondary:
		return base + " bg-slate-700 hover:bg-slate-800 text-white"
	default:
		return base + " bg-slate-700 hover:bg-slate-800 text-white"
	}
}
