// Package form holds the state shared by the fields of one HTML form: values, validation
// rules, errors, touched flags and submission status.
//
// A Form is created per request with the initial values of the entity being edited (or
// zero values), fields declare themselves with Register, posted values are applied with
// SetValue and HandleSubmit validates before handing the values to a callback.
package form

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

const defaultPatternMessage = "Formato inválido"

// Values maps field names to their current value.
type Values map[string]interface{}

func (v Values) String(name string) string {
	return toString(v[name])
}

func (v Values) Bool(name string) bool {
	return toBool(v[name])
}

// FieldOptions are the validation rules of one field.
type FieldOptions struct {
	Required       bool
	MinLength      int
	MaxLength      int
	Pattern        *regexp.Regexp
	PatternMessage string
}

func (o FieldOptions) tag() string {
	parts := make([]string, 0, 3)
	if o.Required {
		parts = append(parts, "required")
	} else {
		parts = append(parts, "omitempty")
	}
	if o.MinLength > 0 {
		parts = append(parts, "min="+strconv.Itoa(o.MinLength))
	}
	if o.MaxLength > 0 {
		parts = append(parts, "max="+strconv.Itoa(o.MaxLength))
	}
	return strings.Join(parts, ",")
}

// Binding holds what a field control needs to render itself.
type Binding struct {
	Name      string
	ID        string
	Value     string
	Checked   bool
	Required  bool
	MinLength int
	MaxLength int
	Pattern   string
	Error     string // visible error, empty when valid or not yet shown
	Invalid   bool
}

// FieldState is sent to the subscribers of a field whenever it changes.
type FieldState struct {
	Name    string
	Value   interface{}
	Error   string // visible error
	Touched bool
}

type Form struct {
	validate   *validator.Validate
	translator ut.Translator

	mu          sync.Mutex
	values      Values
	fields      map[string]FieldOptions
	order       []string
	errors      map[string]string
	touched     map[string]bool
	submitCount int
	submitting  bool

	subs    map[string]map[int]func(FieldState)
	nextSub int
}

// New returns a Form with the given initial values. A nil initial creates an empty form.
func New(validate *validator.Validate, translator ut.Translator, initial Values) *Form {
	values := make(Values, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Form{
		validate:   validate,
		translator: translator,
		values:     values,
		fields:     make(map[string]FieldOptions),
		errors:     make(map[string]string),
		touched:    make(map[string]bool),
		subs:       make(map[string]map[int]func(FieldState)),
	}
}

// Register declares the field `name` with its validation options and returns its binding.
// Registering a field again replaces its options.
func (f *Form) Register(name string, opts FieldOptions) Binding {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.fields[name]; !ok {
		f.order = append(f.order, name)
	}
	f.fields[name] = opts

	val := f.values[name]
	b := Binding{
		Name:      name,
		ID:        "field-" + name,
		Value:     toString(val),
		Checked:   toBool(val),
		Required:  opts.Required,
		MinLength: opts.MinLength,
		MaxLength: opts.MaxLength,
		Error:     f.visibleError(name),
	}
	if opts.Pattern != nil {
		b.Pattern = opts.Pattern.String()
	}
	b.Invalid = b.Error != ""
	return b
}

func (f *Form) Value(name string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Values returns a copy of all current values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyValues()
}

// SetValue changes the value of `name` and notifies the field's subscribers only.
// Once shown (after a submit attempt or a blur), the field's error is re-evaluated.
func (f *Form) SetValue(name string, value interface{}) {
	f.mu.Lock()
	if old, ok := f.values[name]; ok && reflect.DeepEqual(old, value) {
		f.mu.Unlock()
		return
	}
	f.values[name] = value
	if f.submitCount > 0 || f.touched[name] {
		f.validateField(name)
	}
	state := f.fieldState(name)
	subs := f.subscribers(name)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Blur marks `name` as touched, which makes its error visible.
func (f *Form) Blur(name string) {
	f.mu.Lock()
	wasTouched := f.touched[name]
	f.touched[name] = true
	f.validateField(name)
	state := f.fieldState(name)
	subs := f.subscribers(name)
	f.mu.Unlock()

	if !wasTouched || state.Error != "" {
		for _, fn := range subs {
			fn(state)
		}
	}
}

// Subscribe registers fn to be called whenever the field `name` changes.
func (f *Form) Subscribe(name string, fn func(FieldState)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	if f.subs[name] == nil {
		f.subs[name] = make(map[int]func(FieldState))
	}
	f.subs[name][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[name], id)
	}
}

// Validate runs the rules of every registered field and returns the errors keyed by field
// name. An empty map means the form is valid.
func (f *Form) Validate() map[string]string {
	f.mu.Lock()
	changed := make([]string, 0)
	for _, name := range f.order {
		before := f.errors[name]
		f.validateField(name)
		if f.errors[name] != before {
			changed = append(changed, name)
		}
	}
	errs := f.copyErrors()
	notifications := f.notifications(changed)
	f.mu.Unlock()

	notifications()
	return errs
}

// HandleSubmit returns a submit handler. The handler validates the form and calls cb once with
// all current values when there are no errors. An invalid form, or a form whose previous
// submission is still running, makes the handler a no-op returning nil.
func (f *Form) HandleSubmit(cb func(Values) error) func() error {
	return func() error {
		f.mu.Lock()
		if f.submitting {
			f.mu.Unlock()
			return nil
		}
		f.submitCount++
		f.mu.Unlock()

		if errs := f.Validate(); len(errs) > 0 {
			return nil
		}

		f.mu.Lock()
		if f.submitting {
			f.mu.Unlock()
			return nil
		}
		f.submitting = true
		values := f.copyValues()
		f.mu.Unlock()

		defer func() {
			f.mu.Lock()
			f.submitting = false
			f.mu.Unlock()
		}()
		return cb(values)
	}
}

// Errors returns a copy of the current errors, visible or not.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyErrors()
}

// HasErrors reports whether the last validation found errors.
func (f *Form) HasErrors() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) > 0
}

// FieldError returns the error of `name` if it is to be shown: after a submit attempt or a blur.
func (f *Form) FieldError(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visibleError(name)
}

func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *Form) SubmitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCount
}

// helpers below expect f.mu to be held

func (f *Form) visibleError(name string) string {
	if f.submitCount > 0 || f.touched[name] {
		return f.errors[name]
	}
	return ""
}

func (f *Form) validateField(name string) {
	opts, ok := f.fields[name]
	if !ok {
		return
	}
	if msg := f.check(f.values[name], opts); msg != "" {
		f.errors[name] = msg
	} else {
		delete(f.errors, name)
	}
}

func (f *Form) check(value interface{}, opts FieldOptions) string {
	switch v := value.(type) {
	case nil:
		value = ""
	case string:
		value = strings.TrimSpace(v)
	case bool:
		// only "required" applies to booleans: false is empty
		if opts.Required && !v {
			return f.translate(f.validate.Var(v, "required"))
		}
		return ""
	}

	if err := f.validate.Var(value, opts.tag()); err != nil {
		return f.translate(err)
	}
	if s, ok := value.(string); ok && s != "" && opts.Pattern != nil && !opts.Pattern.MatchString(s) {
		if opts.PatternMessage != "" {
			return opts.PatternMessage
		}
		return defaultPatternMessage
	}
	return ""
}

func (f *Form) translate(err error) string {
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	return capitalize(strings.TrimSpace(verrs[0].Translate(f.translator)))
}

func (f *Form) fieldState(name string) FieldState {
	return FieldState{
		Name:    name,
		Value:   f.values[name],
		Error:   f.visibleError(name),
		Touched: f.touched[name],
	}
}

func (f *Form) subscribers(name string) []func(FieldState) {
	subs := make([]func(FieldState), 0, len(f.subs[name]))
	for _, fn := range f.subs[name] {
		subs = append(subs, fn)
	}
	return subs
}

// notifications collects the subscribers of `names` so they are called once the lock is released.
func (f *Form) notifications(names []string) func() {
	type call struct {
		fn    func(FieldState)
		state FieldState
	}
	calls := make([]call, 0)
	for _, name := range names {
		state := f.fieldState(name)
		for _, fn := range f.subscribers(name) {
			calls = append(calls, call{fn: fn, state: state})
		}
	}
	return func() {
		for _, c := range calls {
			c.fn(c.state)
		}
	}
}

func (f *Form) copyValues() Values {
	values := make(Values, len(f.values))
	for k, v := range f.values {
		values[k] = v
	}
	return values
}

func (f *Form) copyErrors() map[string]string {
	errs := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		errs[k] = v
	}
	return errs
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func toBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return val == "on"
		}
		return b
	default:
		return false
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
