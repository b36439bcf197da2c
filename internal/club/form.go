package club

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so errors match what clients sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// GameForm is the add-game form as submitted by a client.
type GameForm struct {
	Date            string        `json:"date" validate:"required,datetime=2006-01-02"`
	Participants    []Participant `json:"participants" validate:"required,min=1,dive"`
	Outcome         Outcome       `json:"winner" validate:"required,oneof=mafia civilians neutral"`
	DurationMinutes int           `json:"duration" validate:"required,min=1,max=600"`
	MVP             string        `json:"mvp,omitempty"`
}

// ValidationError lists every invalid field of a form, keyed by field name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
	// Subject names what was invalid in the message. Defaults to "game".
	Subject string `json:"-"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	subject := e.Subject
	if subject == "" {
		subject = "game"
	}
	return "invalid " + subject + ": " + strings.Join(parts, "; ")
}

// Validate checks the form against the known players. It returns a
// *ValidationError describing every problem it finds.
func (f GameForm) Validate(players []Player) error {
	verr := &ValidationError{Fields: map[string]string{}}
	collectFieldErrors(verr, validate.Struct(f))

	known := make(map[string]bool, len(players))
	for _, p := range players {
		known[p.ID] = true
	}
	seen := make(map[string]bool, len(f.Participants))
	for i, p := range f.Participants {
		key := fmt.Sprintf("participants[%d]", i)
		switch {
		case p.PlayerID == "":
		case !known[p.PlayerID]:
			verr.Fields[key] = "unknown player"
		case seen[p.PlayerID]:
			verr.Fields[key] = "duplicate player"
		case p.Role != "" && !p.Role.Valid():
			verr.Fields[key] = "unknown role"
		}
		seen[p.PlayerID] = true
	}
	if f.MVP != "" && !seen[f.MVP] {
		verr.Fields["mvp"] = "must be one of the participants"
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Build turns a validated form into a game with the given id.
func (f GameForm) Build(id string) (Game, error) {
	date, err := time.Parse(DateLayout, f.Date)
	if err != nil {
		return Game{}, fmt.Errorf("parsing game date %q: %w", f.Date, err)
	}
	return Game{
		ID:              id,
		Date:            date,
		Participants:    append([]Participant(nil), f.Participants...),
		Outcome:         f.Outcome,
		DurationMinutes: f.DurationMinutes,
		MVP:             f.MVP,
	}, nil
}

// collectFieldErrors adds the validator's field errors to verr. Any other
// error is reported under the "form" key.
func collectFieldErrors(verr *ValidationError, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Fields["form"] = err.Error()
		return
	}
	for _, fe := range fieldErrs {
		verr.Fields[fieldKey(fe)] = describe(fe)
	}
}

// fieldKey strips the struct name from a validator namespace,
// e.g. "GameForm.participants[0].player_id" -> "participants[0].player_id".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag()
}
