package ui

import (
	"html/template"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/profeweb/core/confirm"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastCustom  ToastKind = "custom"
)

type Toast struct {
	ID      string        `json:"id"`
	Kind    ToastKind     `json:"kind"`
	Message string        `json:"message,omitempty"`
	Content template.HTML `json:"-"`
}

// Toaster collects the notifications shown on the next rendered page.
type Toaster struct {
	mu     sync.Mutex
	toasts []Toast
}

func NewToaster(restored ...Toast) *Toaster {
	return &Toaster{toasts: append([]Toast(nil), restored...)}
}

// ToastHandle dismisses the toast it was returned for.
type ToastHandle struct {
	ID string
	t  *Toaster
}

func (h ToastHandle) Dismiss() {
	if h.t != nil {
		h.t.Dismiss(h.ID)
	}
}

func (t *Toaster) Success(msg string) ToastHandle {
	return t.add(Toast{Kind: ToastSuccess, Message: msg})
}

func (t *Toaster) Error(msg string) ToastHandle {
	return t.add(Toast{Kind: ToastError, Message: msg})
}

// Custom shows arbitrary interactive content, until dismissed.
func (t *Toaster) Custom(content template.HTML) ToastHandle {
	return t.add(Toast{Kind: ToastCustom, Content: content})
}

func (t *Toaster) add(toast Toast) ToastHandle {
	toast.ID = uuid.New().String()
	t.mu.Lock()
	t.toasts = append(t.toasts, toast)
	t.mu.Unlock()
	return ToastHandle{ID: toast.ID, t: t}
}

func (t *Toaster) Dismiss(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, toast := range t.toasts {
		if toast.ID == id {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			return
		}
	}
}

func (t *Toaster) Toasts() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.toasts...)
}

// Flash returns the toasts that can outlive the request: custom contents are page-bound.
func (t *Toaster) Flash() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	flash := make([]Toast, 0, len(t.toasts))
	for _, toast := range t.toasts {
		if toast.Kind != ToastCustom {
			flash = append(flash, toast)
		}
	}
	return flash
}

// ConfirmPrompt renders the content of a confirmation toast: the prompt's message and two buttons
// posting `choice=confirm|cancel` to action.
func ConfirmPrompt(p *confirm.Prompt, action string) (template.HTML, error) {
	confirmBtn, err := Button(ButtonConfig{Type: TypeSubmit, Intent: IntentDanger, Name: "choice", Value: "confirm"}, confirm.ConfirmLabel)
	if err != nil {
		return "", err
	}
	cancelBtn, err := Button(ButtonConfig{Type: TypeSubmit, Intent: IntentSecondary, Name: "choice", Value: "cancel"}, confirm.CancelLabel)
	if err != nil {
		return "", err
	}
	return render("confirm", struct {
		Message string
		Action  string
		Confirm template.HTML
		Cancel  template.HTML
	}{Message: p.Message, Action: action, Confirm: confirmBtn, Cancel: cancelBtn})
}
