package api

import (
	"encoding/json"
	"errors"
	"testing"
)

type payload struct {
	Value string `json:"value"`
}

func intPtr(n int) *int { return &n }

func TestResolveSuccess(t *testing.T) {
	env := &Envelope[payload]{Success: true, Data: &payload{Value: "hola"}}
	got, err := Resolve(env, nil, "Error al obtener")
	if err != nil {
		t.Fatalf("Resolve() err = %v, want nil", err)
	}
	if got.Value != "hola" {
		t.Errorf("Resolve() data = %+v, want value hola", got)
	}
}

func TestResolveFailures(t *testing.T) {
	transportErr := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		env      *Envelope[payload]
		callErr  error
		wantMsg  string
		wantCode *int
		wantWrap error
	}{
		{
			name:    "server error string is surfaced verbatim",
			env:     &Envelope[payload]{Success: false, Err: "Oferta ya procesada", Code: intPtr(400)},
			wantMsg: "Oferta ya procesada",
			wantCode: intPtr(400),
		},
		{
			name:    "server failure without message falls back",
			env:     &Envelope[payload]{Success: false},
			wantMsg: "Error al obtener",
		},
		{
			name:    "success with null data is not a usable value",
			env:     &Envelope[payload]{Success: true, Data: nil},
			wantMsg: "Error al obtener",
		},
		{
			name:     "transport error gets generic message, cause preserved",
			callErr:  transportErr,
			wantMsg:  FallbackConnection,
			wantWrap: transportErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.env, tt.callErr, "Error al obtener")
			if got != nil {
				t.Fatalf("Resolve() data = %+v, want nil", got)
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("Resolve() err = %T, want *Error", err)
			}
			if apiErr.Message == "" {
				t.Error("failure message is empty")
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if tt.wantCode != nil {
				if apiErr.Code == nil || *apiErr.Code != *tt.wantCode {
					t.Errorf("code = %v, want %d", apiErr.Code, *tt.wantCode)
				}
			}
			if tt.wantWrap != nil && !errors.Is(err, tt.wantWrap) {
				t.Errorf("errors.Is(err, cause) = false, want true")
			}
		})
	}
}

func TestResolveEmpty(t *testing.T) {
	if err := ResolveEmpty(&Envelope[json.RawMessage]{Success: true}, nil, "Error al marcar mensaje"); err != nil {
		t.Errorf("ResolveEmpty() success = %v, want nil", err)
	}

	err := ResolveEmpty(&Envelope[json.RawMessage]{Success: false, Err: "No tienes permiso"}, nil, "Error al marcar mensaje")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "No tienes permiso" {
		t.Errorf("ResolveEmpty() = %v, want No tienes permiso", err)
	}

	err = ResolveEmpty(&Envelope[json.RawMessage]{Success: false}, nil, "Error al marcar mensaje")
	if !errors.As(err, &apiErr) || apiErr.Message != "Error al marcar mensaje" {
		t.Errorf("ResolveEmpty() fallback = %v", err)
	}

	err = ResolveEmpty(nil, errors.New("timeout"), "Error al marcar mensaje")
	if !errors.As(err, &apiErr) || apiErr.Message != FallbackConnection {
		t.Errorf("ResolveEmpty() transport = %v", err)
	}
}
