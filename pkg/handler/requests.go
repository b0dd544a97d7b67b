package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
	"github.com/go-playground/validator/v10"
)

const maxRequestBodySize = 1 << 20

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Role     string `json:"role" validate:"max=16"`
}

type addCombatantRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Faction     string `json:"faction" validate:"required"`
	ExternalRef string `json:"externalRef" validate:"max=64"`
	Notes       string `json:"notes" validate:"max=500"`
}

type updateCombatantRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	Faction     *string `json:"faction,omitempty"`
	ExternalRef *string `json:"externalRef,omitempty" validate:"omitempty,max=64"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// patch converts the request into a store patch, resolving the faction label.
func (r updateCombatantRequest) patch() (service.CombatantPatch, error) {
	p := service.CombatantPatch{
		Name:        r.Name,
		ExternalRef: r.ExternalRef,
		Notes:       r.Notes,
	}
	if r.Faction != nil {
		f, err := parseFaction(*r.Faction)
		if err != nil {
			return p, err
		}
		p.Faction = &f
	}
	return p, nil
}

type addCooldownRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	ExternalRef string `json:"externalRef" validate:"max=64"`
	Notes       string `json:"notes" validate:"max=500"`
}

type updateCooldownRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=64"`
	ExternalRef *string `json:"externalRef,omitempty" validate:"omitempty,max=64"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r updateCooldownRequest) patch() service.CooldownPatch {
	return service.CooldownPatch{Name: r.Name, ExternalRef: r.ExternalRef, Notes: r.Notes}
}

type addTimerRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	ExternalRef string `json:"externalRef" validate:"max=64"`
}

type stateRequest struct {
	Status string `json:"status" validate:"required"`
}

// triggerRequest carries free text; an empty time clears the trigger.
type triggerRequest struct {
	Time string `json:"time" validate:"max=64"`
}

type startTimerRequest struct {
	Duration string `json:"duration" validate:"required,max=32"`
}

type webhookRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type publishRequest struct {
	URL string `json:"url" validate:"omitempty,url"`
}

func parseFaction(label string) (state.Faction, error) {
	f, ok := state.ParseFaction(label)
	if !ok {
		return "", fmt.Errorf("%w: unknown faction %q", service.ErrInvalidInput, label)
	}
	return f, nil
}

// decode reads a JSON body into dst and validates it. An empty body is
// accepted when optional is set.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst interface{}, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
		}
	}

	if err := a.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", service.ErrInvalidInput, describe(err))
	}
	return nil
}

// describe turns validator field errors into one readable line
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
